package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypePrivate EventType = "private"
	EventTypeGroup   EventType = "group"
)

func (t EventType) Valid() bool {
	return t == EventTypePrivate || t == EventTypeGroup
}

type EventStatus string

const (
	EventStatusPlanned    EventStatus = "planned"
	EventStatusInProgress EventStatus = "in progress"
	EventStatusEnded      EventStatus = "ended"
	EventStatusCancelled  EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPlanned, EventStatusInProgress, EventStatusEnded, EventStatusCancelled:
		return true
	}
	return false
}

type Event struct {
	ID                   uuid.UUID   `json:"id"`
	EventType            EventType   `json:"event_type"`
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	LocationID           *uuid.UUID  `json:"location_id,omitempty"`
	GroupID              *uuid.UUID  `json:"group_id,omitempty"`
	StartTime            time.Time   `json:"start_time"`
	EndTime              time.Time   `json:"end_time"`
	Status               EventStatus `json:"status"`
	RecurrenceScheduleID *uuid.UUID  `json:"recurrence_schedule_id,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// DeriveStatus returns the status an event should have at now.
// Cancelled is sticky and never derived away.
func DeriveStatus(now, start, end time.Time, current EventStatus) EventStatus {
	if current == EventStatusCancelled {
		return EventStatusCancelled
	}
	switch {
	case now.Before(start):
		return EventStatusPlanned
	case now.After(end):
		return EventStatusEnded
	default:
		return EventStatusInProgress
	}
}

type EventPerson struct {
	UserID      uuid.UUID `json:"user_id"`
	IsOrganiser bool      `json:"is_organiser"`
	User        *User     `json:"user,omitempty"`
}

// StatusCheck asks for the event's status to be recomputed at FireAt.
type StatusCheck struct {
	EventID uuid.UUID
	FireAt  time.Time
}
