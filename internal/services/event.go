package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/metrics"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var eventColumnList = []string{
	"id", "event_type", "name", "description", "location_id", "group_id",
	"start_time", "end_time", "status", "recurrence_schedule_id", "created_at", "updated_at",
}

var eventColumns = strings.Join(eventColumnList, ", ")

// StatusScheduler registers status checks in the caller's transaction.
type StatusScheduler interface {
	ScheduleAt(ctx context.Context, q database.Querier, eventID uuid.UUID, at ...time.Time) error
	ScheduleBatch(ctx context.Context, q database.Querier, checks []models.StatusCheck) error
	Reschedule(ctx context.Context, q database.Querier, eventID uuid.UUID, at ...time.Time) error
	Cancel(ctx context.Context, q database.Querier, eventIDs ...uuid.UUID) error
}

type EventService struct {
	db        *database.DB
	scheduler StatusScheduler
	now       func() time.Time
}

func NewEventService(db *database.DB, scheduler StatusScheduler) *EventService {
	return &EventService{db: db, scheduler: scheduler, now: time.Now}
}

type CreateEventInput struct {
	EventType   models.EventType
	Name        string
	Description string
	LocationID  *uuid.UUID
	GroupID     *uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
}

type UpdateEventInput struct {
	Name        *string
	Description *string
	LocationID  *uuid.UUID
	StartTime   *time.Time
	EndTime     *time.Time
}

type EventFilter struct {
	Status    *models.EventStatus
	EventType *models.EventType
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	if err := row.Scan(
		&e.ID, &e.EventType, &e.Name, &e.Description, &e.LocationID, &e.GroupID,
		&e.StartTime, &e.EndTime, &e.Status, &e.RecurrenceScheduleID, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]models.Event, error) {
	defer rows.Close()
	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Create stores a new event with the creator as organiser and participant,
// and registers status checks for its start and end.
func (s *EventService) Create(ctx context.Context, creatorID uuid.UUID, in CreateEventInput) (*models.Event, error) {
	if !in.EventType.Valid() {
		return nil, ErrInvalidEventType
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	switch in.EventType {
	case models.EventTypeGroup:
		if in.GroupID == nil {
			return nil, fmt.Errorf("%w: group events need a group_id", ErrValidation)
		}
	case models.EventTypePrivate:
		in.GroupID = nil
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if in.GroupID != nil {
		member, err := isGroupMember(ctx, tx, *in.GroupID, creatorID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrForbidden
		}
	}

	status := models.DeriveStatus(s.now(), in.StartTime, in.EndTime, models.EventStatusPlanned)
	event, err := scanEvent(tx.QueryRow(ctx, `
		INSERT INTO events (event_type, name, description, location_id, group_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+eventColumns,
		in.EventType, in.Name, in.Description, in.LocationID, in.GroupID, in.StartTime, in.EndTime, status))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO event_organisers (event_id, user_id) VALUES ($1, $2)`, event.ID, creatorID); err != nil {
		return nil, fmt.Errorf("failed to add organiser: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)`, event.ID, creatorID); err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	if err := s.scheduler.ScheduleAt(ctx, tx, event.ID, event.StartTime, event.EndTime); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return event, nil
}

func (s *EventService) GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	return getEvent(ctx, s.db.Pool, eventID, false)
}

func getEvent(ctx context.Context, q database.Querier, eventID uuid.UUID, forUpdate bool) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	event, err := scanEvent(q.QueryRow(ctx, query, eventID))
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return event, nil
}

// GetVisible returns the event if userID takes part in it or belongs to its group.
func (s *EventService) GetVisible(ctx context.Context, userID, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ok, err := isParticipant(ctx, s.db.Pool, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !ok && event.GroupID != nil {
		if ok, err = isGroupMember(ctx, s.db.Pool, *event.GroupID, userID); err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, ErrForbidden
	}
	return event, nil
}

// List returns the events userID participates in, ordered by start time.
func (s *EventService) List(ctx context.Context, userID uuid.UUID, filter EventFilter) ([]models.Event, error) {
	cols := make([]string, len(eventColumnList))
	for i, c := range eventColumnList {
		cols[i] = "e." + c
	}

	qb := sq.Select(cols...).
		From("events e").
		Join("event_participants p ON p.event_id = e.id").
		Where(sq.Eq{"p.user_id": userID}).
		OrderBy("e.start_time").
		PlaceholderFormat(sq.Dollar)
	if filter.Status != nil {
		qb = qb.Where(sq.Eq{"e.status": string(*filter.Status)})
	}
	if filter.EventType != nil {
		qb = qb.Where(sq.Eq{"e.event_type": string(*filter.EventType)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (s *EventService) Update(ctx context.Context, actorID, eventID uuid.UUID, in UpdateEventInput) (*models.Event, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := getEvent(ctx, tx, eventID, true)
	if err != nil {
		return nil, err
	}
	if err := requireOrganiser(ctx, tx, eventID, actorID); err != nil {
		return nil, err
	}

	if in.Name != nil {
		event.Name = *in.Name
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.LocationID != nil {
		event.LocationID = in.LocationID
	}
	timesChanged := false
	if in.StartTime != nil && !in.StartTime.Equal(event.StartTime) {
		event.StartTime = *in.StartTime
		timesChanged = true
	}
	if in.EndTime != nil && !in.EndTime.Equal(event.EndTime) {
		event.EndTime = *in.EndTime
		timesChanged = true
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	event.Status = models.DeriveStatus(s.now(), event.StartTime, event.EndTime, event.Status)

	event, err = scanEvent(tx.QueryRow(ctx, `
		UPDATE events
		SET name = $1, description = $2, location_id = $3, start_time = $4, end_time = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+eventColumns,
		event.Name, event.Description, event.LocationID, event.StartTime, event.EndTime, event.Status, eventID))
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if timesChanged && event.Status != models.EventStatusCancelled {
		if err := s.scheduler.Reschedule(ctx, tx, eventID, event.StartTime, event.EndTime); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return event, nil
}

// Cancel marks the event cancelled. Cancelling twice is a no-op.
func (s *EventService) Cancel(ctx context.Context, actorID, eventID uuid.UUID) (*models.Event, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := getEvent(ctx, tx, eventID, true); err != nil {
		return nil, err
	}
	if err := requireOrganiser(ctx, tx, eventID, actorID); err != nil {
		return nil, err
	}

	event, err := scanEvent(tx.QueryRow(ctx, `
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+eventColumns, models.EventStatusCancelled, eventID))
	if err != nil {
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}
	if err := s.scheduler.Cancel(ctx, tx, eventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return event, nil
}

// RecomputeStatus moves the event to the status derived for now.
func (s *EventService) RecomputeStatus(ctx context.Context, eventID uuid.UUID, now time.Time) (bool, error) {
	return s.RecomputeStatusIn(ctx, s.db.Pool, eventID, now)
}

// RecomputeStatusIn writes the new status only if the row still holds the
// status that was read, so a concurrent cancellation always wins.
func (s *EventService) RecomputeStatusIn(ctx context.Context, q database.Querier, eventID uuid.UUID, now time.Time) (bool, error) {
	var start, end time.Time
	var current models.EventStatus
	err := q.QueryRow(ctx, `SELECT start_time, end_time, status FROM events WHERE id = $1`, eventID).
		Scan(&start, &end, &current)
	if err != nil {
		return false, notFound(err, ErrEventNotFound)
	}

	next := models.DeriveStatus(now, start, end, current)
	if next == current {
		return false, nil
	}

	tag, err := q.Exec(ctx, `
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND status <> 'cancelled'
	`, next, eventID, current)
	if err != nil {
		return false, fmt.Errorf("failed to update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.WithField("event_id", eventID).Debug("Event status changed concurrently, skipping")
		return false, nil
	}
	metrics.EventStatusTransitions.WithLabelValues(string(next)).Inc()
	return true, nil
}

func (s *EventService) IsOrganiser(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return isOrganiser(ctx, s.db.Pool, eventID, userID)
}

func isOrganiser(ctx context.Context, q database.Querier, eventID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM event_organisers WHERE event_id = $1 AND user_id = $2)
	`, eventID, userID).Scan(&exists)
	return exists, err
}

func isParticipant(ctx context.Context, q database.Querier, eventID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)
	`, eventID, userID).Scan(&exists)
	return exists, err
}

func requireOrganiser(ctx context.Context, q database.Querier, eventID, userID uuid.UUID) error {
	ok, err := isOrganiser(ctx, q, eventID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *EventService) GetPeople(ctx context.Context, actorID, eventID uuid.UUID) ([]models.EventPerson, error) {
	if _, err := s.GetVisible(ctx, actorID, eventID); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT p.user_id, (o.user_id IS NOT NULL),
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM event_participants p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN event_organisers o ON o.event_id = p.event_id AND o.user_id = p.user_id
		WHERE p.event_id = $1
		ORDER BY u.name
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []models.EventPerson
	for rows.Next() {
		var p models.EventPerson
		var u models.User
		if err := rows.Scan(&p.UserID, &p.IsOrganiser, &u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		p.User = &u
		people = append(people, p)
	}
	return people, rows.Err()
}

// RemoveParticipant removes userID from the event, dropping any organiser
// role as well. Organisers may remove anyone; participants may leave.
func (s *EventService) RemoveParticipant(ctx context.Context, actorID, eventID, userID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := getEvent(ctx, tx, eventID, false); err != nil {
		return err
	}
	if actorID != userID {
		if err := requireOrganiser(ctx, tx, eventID, actorID); err != nil {
			return err
		}
	}

	if err := dropOrganiser(ctx, tx, eventID, userID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotParticipant
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *EventService) AddOrganiser(ctx context.Context, actorID, eventID, userID uuid.UUID) error {
	if _, err := s.GetByID(ctx, eventID); err != nil {
		return err
	}
	if err := requireOrganiser(ctx, s.db.Pool, eventID, actorID); err != nil {
		return err
	}
	ok, err := isParticipant(ctx, s.db.Pool, eventID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO event_organisers (event_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, eventID, userID)
	return err
}

func (s *EventService) RemoveOrganiser(ctx context.Context, actorID, eventID, userID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := getEvent(ctx, tx, eventID, false); err != nil {
		return err
	}
	if err := requireOrganiser(ctx, tx, eventID, actorID); err != nil {
		return err
	}
	if err := dropOrganiser(ctx, tx, eventID, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// dropOrganiser removes the organiser role from userID if held, refusing to
// drop the last organiser.
func dropOrganiser(ctx context.Context, tx pgx.Tx, eventID, userID uuid.UUID) error {
	rows, err := tx.Query(ctx, `SELECT user_id FROM event_organisers WHERE event_id = $1 FOR UPDATE`, eventID)
	if err != nil {
		return err
	}
	organisers, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return err
	}

	held := false
	for _, id := range organisers {
		if id == userID {
			held = true
			break
		}
	}
	if !held {
		return nil
	}
	if len(organisers) == 1 {
		return ErrLastOrganiser
	}

	_, err = tx.Exec(ctx, `DELETE FROM event_organisers WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	return err
}
