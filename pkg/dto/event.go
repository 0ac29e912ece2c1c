package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	EventType   string     `json:"event_type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

type EventResponse struct {
	ID                   uuid.UUID  `json:"id"`
	EventType            string     `json:"event_type"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	LocationID           *uuid.UUID `json:"location_id,omitempty"`
	GroupID              *uuid.UUID `json:"group_id,omitempty"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              time.Time  `json:"end_time"`
	Status               string     `json:"status"`
	RecurrenceScheduleID *uuid.UUID `json:"recurrence_schedule_id,omitempty"`
}

type EventPersonResponse struct {
	UserID      uuid.UUID     `json:"user_id"`
	IsOrganiser bool          `json:"is_organiser"`
	User        *UserResponse `json:"user,omitempty"`
}

// CreateScheduleRequest sets exactly one of EndDatetime and Repeats.
type CreateScheduleRequest struct {
	Frequency   string     `json:"frequency"`
	Interval    int        `json:"interval"`
	EndDatetime *time.Time `json:"end_datetime,omitempty"`
	Repeats     *int       `json:"repeats,omitempty"`
}

type ScheduleResponse struct {
	ID          uuid.UUID       `json:"id"`
	Frequency   string          `json:"frequency"`
	Interval    int             `json:"interval"`
	EndDatetime *time.Time      `json:"end_datetime,omitempty"`
	Repeats     *int            `json:"repeats,omitempty"`
	BaseEventID uuid.UUID       `json:"base_event_id"`
	Events      []EventResponse `json:"events"`
}

type CancelScheduleResponse struct {
	Cancelled int64 `json:"cancelled"`
}
