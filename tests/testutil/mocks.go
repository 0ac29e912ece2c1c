package testutil

import (
	"context"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/dimitrije/gather-api/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*models.User, error) {
	args := m.Called(ctx, id, name, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetFriends(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockUserService) GetGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

// MockInvitationService mocks the InvitationService
type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Create(ctx context.Context, kind models.InvitationKind, senderID uuid.UUID, recipientIDs []uuid.UUID, targetID *uuid.UUID) ([]models.Invitation, error) {
	args := m.Called(ctx, kind, senderID, recipientIDs, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockInvitationService) Respond(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID, response string) (models.Invitation, error) {
	args := m.Called(ctx, kind, id, actorID, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Invitation), args.Error(1)
}

func (m *MockInvitationService) RespondByToken(ctx context.Context, kind models.InvitationKind, id uuid.UUID, token, response string) (models.Invitation, error) {
	args := m.Called(ctx, kind, id, token, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Invitation), args.Error(1)
}

func (m *MockInvitationService) GetForToken(ctx context.Context, kind models.InvitationKind, id uuid.UUID, token string) (models.Invitation, error) {
	args := m.Called(ctx, kind, id, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Invitation), args.Error(1)
}

func (m *MockInvitationService) List(ctx context.Context, kind models.InvitationKind, userID uuid.UUID, category string) ([]models.Invitation, error) {
	args := m.Called(ctx, kind, userID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockInvitationService) Get(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID) (models.Invitation, error) {
	args := m.Called(ctx, kind, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Invitation), args.Error(1)
}

func (m *MockInvitationService) Delete(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID) error {
	args := m.Called(ctx, kind, id, actorID)
	return args.Error(0)
}

// MockGroupService mocks the GroupService
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) Create(ctx context.Context, creatorID uuid.UUID, name, description string) (*models.Group, error) {
	args := m.Called(ctx, creatorID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) GetForMember(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) Update(ctx context.Context, actorID, groupID uuid.UUID, name, description *string) (*models.Group, error) {
	args := m.Called(ctx, actorID, groupID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) Delete(ctx context.Context, actorID, groupID uuid.UUID) error {
	args := m.Called(ctx, actorID, groupID)
	return args.Error(0)
}

func (m *MockGroupService) GetMembers(ctx context.Context, actorID, groupID uuid.UUID) ([]models.GroupMember, error) {
	args := m.Called(ctx, actorID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupMember), args.Error(1)
}

func (m *MockGroupService) RemoveMember(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	args := m.Called(ctx, actorID, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupService) AddAdmin(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	args := m.Called(ctx, actorID, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupService) RemoveAdmin(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	args := m.Called(ctx, actorID, groupID, userID)
	return args.Error(0)
}

// MockEventService mocks the EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) Create(ctx context.Context, creatorID uuid.UUID, in services.CreateEventInput) (*models.Event, error) {
	args := m.Called(ctx, creatorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) GetVisible(ctx context.Context, userID, eventID uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, userID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) List(ctx context.Context, userID uuid.UUID, filter services.EventFilter) ([]models.Event, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventService) Update(ctx context.Context, actorID, eventID uuid.UUID, in services.UpdateEventInput) (*models.Event, error) {
	args := m.Called(ctx, actorID, eventID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) Cancel(ctx context.Context, actorID, eventID uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, actorID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) GetPeople(ctx context.Context, actorID, eventID uuid.UUID) ([]models.EventPerson, error) {
	args := m.Called(ctx, actorID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventPerson), args.Error(1)
}

func (m *MockEventService) RemoveParticipant(ctx context.Context, actorID, eventID, userID uuid.UUID) error {
	args := m.Called(ctx, actorID, eventID, userID)
	return args.Error(0)
}

func (m *MockEventService) AddOrganiser(ctx context.Context, actorID, eventID, userID uuid.UUID) error {
	args := m.Called(ctx, actorID, eventID, userID)
	return args.Error(0)
}

func (m *MockEventService) RemoveOrganiser(ctx context.Context, actorID, eventID, userID uuid.UUID) error {
	args := m.Called(ctx, actorID, eventID, userID)
	return args.Error(0)
}

// MockScheduleService mocks the ScheduleService
type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) Create(ctx context.Context, actorID, baseEventID uuid.UUID, p services.ScheduleParams) (*services.ScheduleDetail, error) {
	args := m.Called(ctx, actorID, baseEventID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ScheduleDetail), args.Error(1)
}

func (m *MockScheduleService) GetVisible(ctx context.Context, userID, scheduleID uuid.UUID) (*services.ScheduleDetail, error) {
	args := m.Called(ctx, userID, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ScheduleDetail), args.Error(1)
}

func (m *MockScheduleService) CancelAll(ctx context.Context, actorID, scheduleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, actorID, scheduleID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMessageService mocks the MessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Message, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, title, content string) (*models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, title, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// MockLocationService mocks the LocationService
type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) Create(ctx context.Context, userID uuid.UUID, name, address string, lat, lng float64) (*models.Location, error) {
	args := m.Called(ctx, userID, name, address, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationService) ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Location, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockLocationService) Unsave(ctx context.Context, userID, locationID uuid.UUID) error {
	args := m.Called(ctx, userID, locationID)
	return args.Error(0)
}

// MockSSEHub mocks the SSE Hub
type MockSSEHub struct {
	mock.Mock
}

func (m *MockSSEHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockSSEHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockSSEHub) Publish(userID uuid.UUID, eventType string, data interface{}) {
	m.Called(userID, eventType, data)
}
