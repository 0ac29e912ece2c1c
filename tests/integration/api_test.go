package integration

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/dimitrije/gather-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_Integration_FriendInvitationRoundTrip(t *testing.T) {
	s := newStack(t)
	router := s.router()
	jwtSvc := testutil.NewTestJWTService()

	alice := s.fixtures.CreateUser(t, testutil.WithEmail("alice@example.com"), testutil.WithAvatar("https://img.example.com/alice.png"))
	bob := s.fixtures.CreateUser(t)
	carol := s.fixtures.CreateUser(t)
	s.fixtures.MakeFriends(t, alice, carol)

	aliceAPI := testutil.NewAPIClient(t, router, jwtSvc, alice)
	bobAPI := testutil.NewAPIClient(t, router, jwtSvc, bob)

	var me dto.UserResponse
	testutil.Decode(t, aliceAPI.Get("/api/v1/users/me"), http.StatusOK, &me)
	assert.Equal(t, "alice@example.com", me.Email)
	require.NotNil(t, me.AvatarURL)
	assert.Equal(t, "https://img.example.com/alice.png", *me.AvatarURL)

	testutil.Decode(t, aliceAPI.Post("/api/v1/friends/"+carol.ID.String(), nil), http.StatusConflict, nil)

	var sent dto.InvitationResponse
	testutil.Decode(t, aliceAPI.Post("/api/v1/friends/"+bob.ID.String(), nil), http.StatusCreated, &sent)
	assert.Equal(t, bob.ID, sent.RecipientID)

	var received []dto.InvitationResponse
	testutil.Decode(t, bobAPI.Get("/api/v1/invitations/friends?category=received"), http.StatusOK, &received)
	require.Len(t, received, 1)
	assert.Equal(t, sent.ID, received[0].ID)

	path := "/api/v1/invitations/friends/" + sent.ID.String()
	testutil.Decode(t, aliceAPI.Post(path+"/response?response=accept", nil), http.StatusForbidden, nil)

	var answered dto.InvitationResponse
	testutil.Decode(t, bobAPI.Post(path+"/response?response=accept", nil), http.StatusOK, &answered)
	assert.True(t, answered.Confirmed)
	testutil.Decode(t, bobAPI.Post(path+"/response?response=decline", nil), http.StatusConflict, nil)
	testutil.Decode(t, aliceAPI.Delete(path), http.StatusBadRequest, nil)

	var friends []dto.UserResponse
	testutil.Decode(t, aliceAPI.Get("/api/v1/friends"), http.StatusOK, &friends)
	ids := make([]uuid.UUID, len(friends))
	for i, f := range friends {
		ids[i] = f.ID
	}
	assert.ElementsMatch(t, []uuid.UUID{bob.ID, carol.ID}, ids)
}

func TestAPI_Integration_GroupBatchInviteAndEmailDecline(t *testing.T) {
	s := newStack(t)
	router := s.router()
	ctx := context.Background()

	admin := s.fixtures.CreateUser(t)
	member := s.fixtures.CreateUser(t)
	first := s.fixtures.CreateUser(t)
	second := s.fixtures.CreateUser(t)
	group := s.fixtures.CreateGroup(t, admin)
	s.fixtures.AddGroupMember(t, group, member)

	memberAPI := testutil.NewAPIClient(t, router, testutil.NewTestJWTService(), member)

	var created []dto.InvitationResponse
	testutil.Decode(t, memberAPI.Post("/api/v1/groups/"+group.ID.String()+"/members",
		dto.InviteRequest{UserIDs: []uuid.UUID{first.ID, second.ID}}), http.StatusCreated, &created)
	require.Len(t, created, 2)

	assert.Equal(t, 1, s.queue.Len(), "invitations created together are queued as one job")
	batch, err := s.queue.Pop(ctx)
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)
	var to []string
	for _, item := range batch.Items {
		to = append(to, item.To...)
	}
	assert.ElementsMatch(t, []string{first.Email, second.Email}, to)

	var token string
	require.NoError(t, s.db.DB.Pool.QueryRow(ctx,
		`SELECT email_response_token FROM group_invitations WHERE id = $1`, created[0].ID).Scan(&token))

	page := "/api/v1/invitations/groups/" + created[0].ID.String() + "/email-response?token="
	rec := testutil.Serve(router, http.MethodGet, page+strings.Repeat("0", 32)+"&response=decline", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Serve(router, http.MethodGet, page+token+"&response=decline", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invitation declined")

	inv, err := s.invitations.Get(ctx, models.KindGroup, created[0].ID, first.ID)
	require.NoError(t, err)
	assert.True(t, inv.Core().ResponseReceived)
	assert.False(t, inv.Core().Confirmed)
}

func TestAPI_Integration_EventPeopleAndAuth(t *testing.T) {
	s := newStack(t)
	router := s.router()

	organiser := s.fixtures.CreateUser(t)
	guest := s.fixtures.CreateUser(t)
	event := s.fixtures.CreateEvent(t, organiser, time.Now().Add(24*time.Hour))
	s.fixtures.AddParticipant(t, event.ID, guest.ID)

	rec := testutil.Serve(router, http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = testutil.Serve(router, http.MethodGet, "/api/v1/events", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	api := testutil.NewAPIClient(t, router, testutil.NewTestJWTService(), organiser)
	people := "/api/v1/events/" + event.ID.String() + "/participants"

	var before []dto.EventPersonResponse
	testutil.Decode(t, api.Get(people), http.StatusOK, &before)
	assert.Len(t, before, 2)

	testutil.Decode(t, api.Post("/api/v1/events/"+event.ID.String()+"/organisers/"+guest.ID.String(), nil), http.StatusOK, nil)

	var after []dto.EventPersonResponse
	testutil.Decode(t, api.Get(people), http.StatusOK, &after)
	for _, p := range after {
		assert.True(t, p.IsOrganiser, "user %s", p.UserID)
	}
}
