package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dimitrije/gather-api/internal/middleware"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/dimitrije/gather-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupMessageTest(t *testing.T) (*testutil.MockMessageService, *testutil.MockLocationService, http.Handler, *services.JWTService) {
	t.Helper()
	mockMessageService := new(testutil.MockMessageService)
	mockLocationService := new(testutil.MockLocationService)
	messages := NewMessageHandler(mockMessageService)
	locations := NewLocationHandler(mockLocationService)
	jwtSvc := testutil.NewTestJWTService()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/messages", messages.List)
	app.Post("/messages", messages.Send)
	app.Post("/messages/:id/read", messages.MarkRead)
	app.Get("/locations", locations.ListSaved)
	app.Post("/locations", locations.Create)
	app.Delete("/locations/:id", locations.Unsave)

	return mockMessageService, mockLocationService, app, jwtSvc
}

func TestMessageHandler_List_Unread(t *testing.T) {
	mockMessageService, _, app, jwtSvc := setupMessageTest(t)

	userID := uuid.New()
	msgs := []models.Message{{ID: uuid.New(), ReceiverID: userID, Title: "Friend invitation", CreatedAt: time.Now()}}
	mockMessageService.On("List", mock.Anything, userID, true).Return(msgs, nil)

	rec := testutil.Serve(app, http.MethodGet, "/messages?unread=true", nil, testutil.GenerateToken(t, jwtSvc, userID, "a@example.com"))

	assert.Equal(t, http.StatusOK, rec.Code)
	var response []dto.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Nil(t, response[0].SenderID)
	assert.False(t, response[0].ReadStatus)

	mockMessageService.AssertExpectations(t)
}

func TestMessageHandler_Send(t *testing.T) {
	mockMessageService, _, app, jwtSvc := setupMessageTest(t)

	userID := uuid.New()
	receiverID := uuid.New()
	msg := &models.Message{ID: uuid.New(), SenderID: &userID, ReceiverID: receiverID, Title: "Hi", Content: "See you"}
	mockMessageService.On("Send", mock.Anything, userID, receiverID, "Hi", "See you").Return(msg, nil)

	body := dto.SendMessageRequest{ReceiverID: receiverID, Title: "Hi", Content: "See you"}
	rec := testutil.Serve(app, http.MethodPost, "/messages", body, testutil.GenerateToken(t, jwtSvc, userID, "a@example.com"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "See you")
	mockMessageService.AssertExpectations(t)
}

func TestMessageHandler_Send_MissingReceiver(t *testing.T) {
	_, _, app, jwtSvc := setupMessageTest(t)

	rec := testutil.Serve(app, http.MethodPost, "/messages", dto.SendMessageRequest{Title: "Hi"}, testutil.GenerateToken(t, jwtSvc, uuid.New(), "a@example.com"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "receiver_id is required")
}

func TestMessageHandler_Send_UnknownReceiver(t *testing.T) {
	mockMessageService, _, app, jwtSvc := setupMessageTest(t)

	userID := uuid.New()
	receiverID := uuid.New()
	mockMessageService.On("Send", mock.Anything, userID, receiverID, "Hi", "").Return(nil, services.ErrUserNotFound)

	rec := testutil.Serve(app, http.MethodPost, "/messages", dto.SendMessageRequest{ReceiverID: receiverID, Title: "Hi"}, testutil.GenerateToken(t, jwtSvc, userID, "a@example.com"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageHandler_MarkRead_NotReceiver(t *testing.T) {
	mockMessageService, _, app, jwtSvc := setupMessageTest(t)

	userID := uuid.New()
	id := uuid.New()
	mockMessageService.On("MarkRead", mock.Anything, id, userID).Return(nil, services.ErrForbidden)

	rec := testutil.Serve(app, http.MethodPost, "/messages/"+id.String()+"/read", nil, testutil.GenerateToken(t, jwtSvc, userID, "a@example.com"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLocationHandler_Create(t *testing.T) {
	_, mockLocationService, app, jwtSvc := setupMessageTest(t)

	userID := uuid.New()
	loc := &models.Location{ID: uuid.New(), Name: "Park", Latitude: 45.25, Longitude: 19.84}
	mockLocationService.On("Create", mock.Anything, userID, "Park", "", 45.25, 19.84).Return(loc, nil)

	body := dto.CreateLocationRequest{Name: "Park", Latitude: 45.25, Longitude: 19.84}
	rec := testutil.Serve(app, http.MethodPost, "/locations", body, testutil.GenerateToken(t, jwtSvc, userID, "a@example.com"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var response dto.LocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, loc.ID, response.ID)
	mockLocationService.AssertExpectations(t)
}

func TestLocationHandler_Create_InvalidCoordinates(t *testing.T) {
	_, mockLocationService, app, jwtSvc := setupMessageTest(t)

	userID := uuid.New()
	mockLocationService.On("Create", mock.Anything, userID, "Nowhere", "", 95.0, 0.0).
		Return(nil, services.ErrValidation)

	body := dto.CreateLocationRequest{Name: "Nowhere", Latitude: 95}
	rec := testutil.Serve(app, http.MethodPost, "/locations", body, testutil.GenerateToken(t, jwtSvc, userID, "a@example.com"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocationHandler_ListAndUnsave(t *testing.T) {
	_, mockLocationService, app, jwtSvc := setupMessageTest(t)

	userID := uuid.New()
	locID := uuid.New()
	mockLocationService.On("ListSaved", mock.Anything, userID).Return([]models.Location{{ID: locID, Name: "Park"}}, nil)
	mockLocationService.On("Unsave", mock.Anything, userID, locID).Return(services.ErrLocationNotFound)

	token := testutil.GenerateToken(t, jwtSvc, userID, "a@example.com")

	rec := testutil.Serve(app, http.MethodGet, "/locations", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Park")

	rec = testutil.Serve(app, http.MethodDelete, "/locations/"+locID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
