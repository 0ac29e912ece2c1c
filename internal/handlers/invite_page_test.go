package handlers

import (
	"net/http"
	"testing"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/dimitrije/gather-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const pageToken = "0123456789abcdef0123456789abcdef"

func setupInvitePageTest(t *testing.T) (*testutil.MockInvitationService, http.Handler) {
	t.Helper()
	mockInvitationService := new(testutil.MockInvitationService)
	handler := NewInvitePageHandler(mockInvitationService)

	app := drift.New()
	app.Get("/api/v1/invitations/:kind/:id/email-response", handler.EmailResponse)
	return mockInvitationService, app
}

func TestInvitePageHandler_ChoicePage(t *testing.T) {
	mockInvitationService, app := setupInvitePageTest(t)

	inv := groupInvitation(uuid.New(), uuid.New(), uuid.New())
	mockInvitationService.On("GetForToken", mock.Anything, models.KindGroup, inv.ID, pageToken).Return(inv, nil)

	rec := testutil.Serve(app, http.MethodGet, "/api/v1/invitations/groups/"+inv.ID.String()+"/email-response?token="+pageToken, nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invited to join a group")
	assert.Contains(t, rec.Body.String(), "response=accept")
	assert.Contains(t, rec.Body.String(), "response=decline")
	mockInvitationService.AssertExpectations(t)
}

func TestInvitePageHandler_ChoicePage_AlreadyAnswered(t *testing.T) {
	mockInvitationService, app := setupInvitePageTest(t)

	inv := groupInvitation(uuid.New(), uuid.New(), uuid.New())
	inv.ResponseReceived = true
	mockInvitationService.On("GetForToken", mock.Anything, models.KindGroup, inv.ID, pageToken).Return(inv, nil)

	rec := testutil.Serve(app, http.MethodGet, "/api/v1/invitations/groups/"+inv.ID.String()+"/email-response?token="+pageToken, nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already been declined")
}

func TestInvitePageHandler_Accept(t *testing.T) {
	mockInvitationService, app := setupInvitePageTest(t)

	inv := groupInvitation(uuid.New(), uuid.New(), uuid.New())
	inv.Confirmed = true
	inv.ResponseReceived = true
	mockInvitationService.On("RespondByToken", mock.Anything, models.KindGroup, inv.ID, pageToken, "accept").Return(inv, nil)

	rec := testutil.Serve(app, http.MethodGet, "/api/v1/invitations/groups/"+inv.ID.String()+"/email-response?token="+pageToken+"&response=accept", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have joined the group!")
	mockInvitationService.AssertExpectations(t)
}

func TestInvitePageHandler_Decline(t *testing.T) {
	mockInvitationService, app := setupInvitePageTest(t)

	id := uuid.New()
	inv := &models.EventInvitation{InvitationCore: models.InvitationCore{ID: id, ResponseReceived: true}}
	mockInvitationService.On("RespondByToken", mock.Anything, models.KindEvent, id, pageToken, "decline").Return(inv, nil)

	rec := testutil.Serve(app, http.MethodGet, "/api/v1/invitations/events/"+id.String()+"/email-response?token="+pageToken+"&response=decline", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invitation declined")
}

func TestInvitePageHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		text   string
	}{
		{"token mismatch", services.ErrInvalidToken, http.StatusForbidden, "not valid"},
		{"missing", services.ErrInvitationNotFound, http.StatusNotFound, "Invitation not found"},
		{"answered", services.ErrAlreadyResolved, http.StatusConflict, "already been answered"},
		{"bad response", services.ErrInvalidResponse, http.StatusBadRequest, "Unknown response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockInvitationService, app := setupInvitePageTest(t)

			id := uuid.New()
			mockInvitationService.On("RespondByToken", mock.Anything, models.KindGroup, id, pageToken, "accept").Return(nil, tt.err)

			rec := testutil.Serve(app, http.MethodGet, "/api/v1/invitations/groups/"+id.String()+"/email-response?token="+pageToken+"&response=accept", nil, "")

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.text)
		})
	}
}

func TestInvitePageHandler_MissingToken(t *testing.T) {
	_, app := setupInvitePageTest(t)

	rec := testutil.Serve(app, http.MethodGet, "/api/v1/invitations/groups/"+uuid.New().String()+"/email-response", nil, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing its response token")
}

func TestInvitePageHandler_InvalidLink(t *testing.T) {
	_, app := setupInvitePageTest(t)

	rec := testutil.Serve(app, http.MethodGet, "/api/v1/invitations/groups/nope/email-response?token="+pageToken, nil, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid invitation link")
}
