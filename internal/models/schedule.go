package models

import (
	"time"

	"github.com/google/uuid"
)

type RecurringEventSchedule struct {
	ID          uuid.UUID  `json:"id"`
	Frequency   string     `json:"frequency"`
	Interval    int        `json:"interval"`
	EndDatetime *time.Time `json:"end_datetime,omitempty"`
	Repeats     *int       `json:"repeats,omitempty"`
	BaseEventID uuid.UUID  `json:"base_event_id"`
	CreatedAt   time.Time  `json:"created_at"`
}
