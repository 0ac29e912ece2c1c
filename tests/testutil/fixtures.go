package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (email, name, avatar_url)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, avatar_url, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithAvatar sets the user's avatar URL
func WithAvatar(url string) UserOption {
	return func(u *models.User) {
		u.AvatarURL = &url
	}
}

// MakeFriends stores the symmetric friendship between a and b
func (f *Fixtures) MakeFriends(t *testing.T, a, b *models.User) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2), ($2, $1)
	`, a.ID, b.ID)
	if err != nil {
		t.Fatalf("failed to create friendship: %v", err)
	}
}

// CreateGroup creates a group with admin as its only member and admin
func (f *Fixtures) CreateGroup(t *testing.T, admin *models.User) *models.Group {
	t.Helper()
	f.counter++
	ctx := context.Background()

	group := &models.Group{
		Name:        fmt.Sprintf("Test Group %d", f.counter),
		Description: "fixture group",
	}
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO user_groups (name, description) VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, group.Name, group.Description).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	f.AddGroupMember(t, group, admin)
	if _, err := f.db.Pool.Exec(ctx, `
		INSERT INTO group_admins (group_id, user_id) VALUES ($1, $2)
	`, group.ID, admin.ID); err != nil {
		t.Fatalf("failed to add group admin: %v", err)
	}

	return group
}

// AddGroupMember adds user to group
func (f *Fixtures) AddGroupMember(t *testing.T, group *models.Group, user *models.User) {
	t.Helper()
	if _, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
	`, group.ID, user.ID); err != nil {
		t.Fatalf("failed to add group member: %v", err)
	}
}

// CreateEvent creates a private event starting at start with organiser as
// its only organiser and participant
func (f *Fixtures) CreateEvent(t *testing.T, organiser *models.User, start time.Time) *models.Event {
	t.Helper()
	f.counter++
	ctx := context.Background()

	event := &models.Event{
		EventType: models.EventTypePrivate,
		Name:      fmt.Sprintf("Test Event %d", f.counter),
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Status:    models.DeriveStatus(time.Now(), start, start.Add(2*time.Hour), models.EventStatusPlanned),
	}
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO events (event_type, name, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, event.EventType, event.Name, event.StartTime, event.EndTime, event.Status).Scan(
		&event.ID, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	f.AddParticipant(t, event.ID, organiser.ID)
	if _, err := f.db.Pool.Exec(ctx, `
		INSERT INTO event_organisers (event_id, user_id) VALUES ($1, $2)
	`, event.ID, organiser.ID); err != nil {
		t.Fatalf("failed to add organiser: %v", err)
	}

	return event
}

// AddParticipant adds userID to the event's participants
func (f *Fixtures) AddParticipant(t *testing.T, eventID, userID uuid.UUID) {
	t.Helper()
	if _, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)
	`, eventID, userID); err != nil {
		t.Fatalf("failed to add participant: %v", err)
	}
}
