package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/recurrence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const scheduleColumns = `id, frequency, interval, end_datetime, repeats, base_event_id, created_at`

type ScheduleParams struct {
	Frequency   recurrence.Frequency
	Interval    int
	EndDatetime *time.Time
	Repeats     *int
}

type ScheduleDetail struct {
	Schedule *models.RecurringEventSchedule `json:"schedule"`
	Events   []models.Event                 `json:"events"`
}

type ScheduleService struct {
	db        *database.DB
	scheduler StatusScheduler
	now       func() time.Time
}

func NewScheduleService(db *database.DB, scheduler StatusScheduler) *ScheduleService {
	return &ScheduleService{db: db, scheduler: scheduler, now: time.Now}
}

func scanSchedule(row pgx.Row) (*models.RecurringEventSchedule, error) {
	var s models.RecurringEventSchedule
	if err := row.Scan(&s.ID, &s.Frequency, &s.Interval, &s.EndDatetime, &s.Repeats, &s.BaseEventID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create attaches a recurrence schedule to baseEventID and materialises every
// later occurrence as its own event, all in one transaction.
func (s *ScheduleService) Create(ctx context.Context, actorID, baseEventID uuid.UUID, p ScheduleParams) (*ScheduleDetail, error) {
	rule := recurrence.Rule{Frequency: p.Frequency, Interval: p.Interval, Until: p.EndDatetime, Count: p.Repeats}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	base, err := getEvent(ctx, tx, baseEventID, true)
	if err != nil {
		return nil, err
	}
	if err := requireOrganiser(ctx, tx, baseEventID, actorID); err != nil {
		return nil, err
	}
	if base.RecurrenceScheduleID != nil {
		return nil, ErrAlreadyScheduled
	}

	rule.Start = base.StartTime
	dates, err := recurrence.Dates(rule)
	if err != nil {
		return nil, err
	}

	schedule, err := scanSchedule(tx.QueryRow(ctx, `
		INSERT INTO recurring_event_schedules (frequency, interval, end_datetime, repeats, base_event_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+scheduleColumns, string(p.Frequency), p.Interval, p.EndDatetime, p.Repeats, baseEventID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyScheduled
		}
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE events SET recurrence_schedule_id = $1, updated_at = NOW() WHERE id = $2
	`, schedule.ID, baseEventID); err != nil {
		return nil, fmt.Errorf("failed to link base event: %w", err)
	}
	base.RecurrenceScheduleID = &schedule.ID

	rows, err := tx.Query(ctx, `SELECT user_id FROM event_organisers WHERE event_id = $1`, baseEventID)
	if err != nil {
		return nil, err
	}
	organisers, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, err
	}

	// Participants who joined the base event before it became recurring join every occurrence.
	rows, err = tx.Query(ctx, `SELECT user_id FROM event_participants WHERE event_id = $1`, baseEventID)
	if err != nil {
		return nil, err
	}
	participants, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, err
	}

	events := []models.Event{*base}
	if len(dates) > 1 {
		now := s.now()
		duration := base.EndTime.Sub(base.StartTime)
		clones := make([]models.Event, 0, len(dates)-1)
		for _, start := range dates[1:] {
			end := start.Add(duration)
			clones = append(clones, models.Event{
				ID:                   uuid.New(),
				EventType:            base.EventType,
				Name:                 base.Name,
				Description:          base.Description,
				LocationID:           base.LocationID,
				GroupID:              base.GroupID,
				StartTime:            start,
				EndTime:              end,
				Status:               models.DeriveStatus(now, start, end, models.EventStatusPlanned),
				RecurrenceScheduleID: &schedule.ID,
				CreatedAt:            now,
				UpdatedAt:            now,
			})
		}

		if err := s.insertSeries(ctx, tx, clones, organisers, participants); err != nil {
			return nil, err
		}
		events = append(events, clones...)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"schedule_id": schedule.ID,
		"base_event":  baseEventID,
		"occurrences": len(events),
	}).Info("Recurring schedule created")

	return &ScheduleDetail{Schedule: schedule, Events: events}, nil
}

func (s *ScheduleService) insertSeries(ctx context.Context, tx pgx.Tx, clones []models.Event, organisers, participants []uuid.UUID) error {
	eventRows := make([][]any, 0, len(clones))
	organiserRows := make([][]any, 0, len(clones)*len(organisers))
	participantRows := make([][]any, 0, len(clones)*len(participants))
	checks := make([]models.StatusCheck, 0, len(clones)*2)
	for _, e := range clones {
		eventRows = append(eventRows, []any{
			e.ID, string(e.EventType), e.Name, e.Description, e.LocationID, e.GroupID,
			e.StartTime, e.EndTime, string(e.Status), e.RecurrenceScheduleID, e.CreatedAt, e.UpdatedAt,
		})
		for _, o := range organisers {
			organiserRows = append(organiserRows, []any{e.ID, o})
		}
		for _, p := range participants {
			participantRows = append(participantRows, []any{e.ID, p})
		}
		checks = append(checks,
			models.StatusCheck{EventID: e.ID, FireAt: e.StartTime},
			models.StatusCheck{EventID: e.ID, FireAt: e.EndTime},
		)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"events"}, eventColumnList, pgx.CopyFromRows(eventRows)); err != nil {
		return fmt.Errorf("failed to insert recurring events: %w", err)
	}
	if len(organiserRows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"event_organisers"}, []string{"event_id", "user_id"}, pgx.CopyFromRows(organiserRows)); err != nil {
			return fmt.Errorf("failed to copy organisers: %w", err)
		}
	}
	if len(participantRows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"event_participants"}, []string{"event_id", "user_id"}, pgx.CopyFromRows(participantRows)); err != nil {
			return fmt.Errorf("failed to copy participants: %w", err)
		}
	}
	return s.scheduler.ScheduleBatch(ctx, tx, checks)
}

func (s *ScheduleService) Get(ctx context.Context, scheduleID uuid.UUID) (*ScheduleDetail, error) {
	schedule, err := scanSchedule(s.db.Pool.QueryRow(ctx, `
		SELECT `+scheduleColumns+` FROM recurring_event_schedules WHERE id = $1
	`, scheduleID))
	if err != nil {
		return nil, notFound(err, ErrScheduleNotFound)
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+eventColumns+` FROM events WHERE recurrence_schedule_id = $1 ORDER BY start_time
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	return &ScheduleDetail{Schedule: schedule, Events: events}, nil
}

// GetVisible returns the schedule if userID participates in its base event.
func (s *ScheduleService) GetVisible(ctx context.Context, userID, scheduleID uuid.UUID) (*ScheduleDetail, error) {
	detail, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	ok, err := isParticipant(ctx, s.db.Pool, detail.Schedule.BaseEventID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return detail, nil
}

// CancelAll cancels every event of the schedule and drops their pending
// status checks. Events are kept. Returns how many events changed.
func (s *ScheduleService) CancelAll(ctx context.Context, actorID, scheduleID uuid.UUID) (int64, error) {
	var baseEventID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT base_event_id FROM recurring_event_schedules WHERE id = $1
	`, scheduleID).Scan(&baseEventID)
	if err != nil {
		return 0, notFound(err, ErrScheduleNotFound)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := requireOrganiser(ctx, tx, baseEventID, actorID); err != nil {
		return 0, err
	}

	rows, err := tx.Query(ctx, `
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE recurrence_schedule_id = $2 AND status <> $1
		RETURNING id
	`, models.EventStatusCancelled, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel events: %w", err)
	}
	cancelled, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return 0, err
	}

	if err := s.scheduler.Cancel(ctx, tx, cancelled...); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int64(len(cancelled)), nil
}

func IsScheduleConfigError(err error) bool {
	return errors.Is(err, recurrence.ErrScheduleConfig) || errors.Is(err, recurrence.ErrTooManyOccurrences)
}
