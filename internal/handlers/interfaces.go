package handlers

import (
	"context"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/dimitrije/gather-api/internal/sse"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*models.User, error)
	GetFriends(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error
	GetGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
}

// InvitationServiceInterface defines the methods used by handlers from InvitationService
type InvitationServiceInterface interface {
	Create(ctx context.Context, kind models.InvitationKind, senderID uuid.UUID, recipientIDs []uuid.UUID, targetID *uuid.UUID) ([]models.Invitation, error)
	Respond(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID, response string) (models.Invitation, error)
	RespondByToken(ctx context.Context, kind models.InvitationKind, id uuid.UUID, token, response string) (models.Invitation, error)
	GetForToken(ctx context.Context, kind models.InvitationKind, id uuid.UUID, token string) (models.Invitation, error)
	List(ctx context.Context, kind models.InvitationKind, userID uuid.UUID, category string) ([]models.Invitation, error)
	Get(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID) (models.Invitation, error)
	Delete(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID) error
}

// GroupServiceInterface defines the methods used by handlers from GroupService
type GroupServiceInterface interface {
	Create(ctx context.Context, creatorID uuid.UUID, name, description string) (*models.Group, error)
	GetForMember(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error)
	Update(ctx context.Context, actorID, groupID uuid.UUID, name, description *string) (*models.Group, error)
	Delete(ctx context.Context, actorID, groupID uuid.UUID) error
	GetMembers(ctx context.Context, actorID, groupID uuid.UUID) ([]models.GroupMember, error)
	RemoveMember(ctx context.Context, actorID, groupID, userID uuid.UUID) error
	AddAdmin(ctx context.Context, actorID, groupID, userID uuid.UUID) error
	RemoveAdmin(ctx context.Context, actorID, groupID, userID uuid.UUID) error
}

// EventServiceInterface defines the methods used by handlers from EventService
type EventServiceInterface interface {
	Create(ctx context.Context, creatorID uuid.UUID, in services.CreateEventInput) (*models.Event, error)
	GetVisible(ctx context.Context, userID, eventID uuid.UUID) (*models.Event, error)
	List(ctx context.Context, userID uuid.UUID, filter services.EventFilter) ([]models.Event, error)
	Update(ctx context.Context, actorID, eventID uuid.UUID, in services.UpdateEventInput) (*models.Event, error)
	Cancel(ctx context.Context, actorID, eventID uuid.UUID) (*models.Event, error)
	GetPeople(ctx context.Context, actorID, eventID uuid.UUID) ([]models.EventPerson, error)
	RemoveParticipant(ctx context.Context, actorID, eventID, userID uuid.UUID) error
	AddOrganiser(ctx context.Context, actorID, eventID, userID uuid.UUID) error
	RemoveOrganiser(ctx context.Context, actorID, eventID, userID uuid.UUID) error
}

// ScheduleServiceInterface defines the methods used by handlers from ScheduleService
type ScheduleServiceInterface interface {
	Create(ctx context.Context, actorID, baseEventID uuid.UUID, p services.ScheduleParams) (*services.ScheduleDetail, error)
	GetVisible(ctx context.Context, userID, scheduleID uuid.UUID) (*services.ScheduleDetail, error)
	CancelAll(ctx context.Context, actorID, scheduleID uuid.UUID) (int64, error)
}

// MessageServiceInterface defines the methods used by handlers from MessageService
type MessageServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Message, error)
	Send(ctx context.Context, senderID, receiverID uuid.UUID, title, content string) (*models.Message, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Message, error)
}

// LocationServiceInterface defines the methods used by handlers from LocationService
type LocationServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, name, address string, lat, lng float64) (*models.Location, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Location, error)
	Unsave(ctx context.Context, userID, locationID uuid.UUID) error
}

// SSEHubInterface defines the methods used by handlers from the sse Hub
type SSEHubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
}
