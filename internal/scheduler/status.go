// Package scheduler persists event status checks and applies them when they fall due.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/google/uuid"
)

// StatusScheduler writes status checks through the caller's querier, so
// registration commits or rolls back with the event change that caused it.
type StatusScheduler struct{}

func NewStatusScheduler() *StatusScheduler {
	return &StatusScheduler{}
}

func (s *StatusScheduler) ScheduleAt(ctx context.Context, q database.Querier, eventID uuid.UUID, at ...time.Time) error {
	checks := make([]models.StatusCheck, 0, len(at))
	for _, t := range at {
		checks = append(checks, models.StatusCheck{EventID: eventID, FireAt: t})
	}
	return s.ScheduleBatch(ctx, q, checks)
}

func (s *StatusScheduler) ScheduleBatch(ctx context.Context, q database.Querier, checks []models.StatusCheck) error {
	if len(checks) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(checks))
	times := make([]time.Time, len(checks))
	for i, c := range checks {
		ids[i] = c.EventID
		times[i] = c.FireAt
	}

	_, err := q.Exec(ctx, `
		INSERT INTO event_status_checks (event_id, fire_at)
		SELECT * FROM unnest($1::uuid[], $2::timestamptz[])
		ON CONFLICT (event_id, fire_at) DO NOTHING
	`, ids, times)
	if err != nil {
		return fmt.Errorf("failed to register status checks: %w", err)
	}
	return nil
}

// Reschedule drops the event's pending checks and registers new ones.
func (s *StatusScheduler) Reschedule(ctx context.Context, q database.Querier, eventID uuid.UUID, at ...time.Time) error {
	if err := s.Cancel(ctx, q, eventID); err != nil {
		return err
	}
	return s.ScheduleAt(ctx, q, eventID, at...)
}

func (s *StatusScheduler) Cancel(ctx context.Context, q database.Querier, eventIDs ...uuid.UUID) error {
	if len(eventIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		DELETE FROM event_status_checks WHERE event_id = ANY($1) AND fired_at IS NULL
	`, eventIDs)
	if err != nil {
		return fmt.Errorf("failed to cancel status checks: %w", err)
	}
	return nil
}
