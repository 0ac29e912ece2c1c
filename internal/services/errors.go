package services

import (
	"errors"
	"fmt"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvitationNotFound  = fmt.Errorf("invitation %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrGroupNotFound       = fmt.Errorf("group %w", ErrNotFound)
	ErrEventNotFound       = fmt.Errorf("event %w", ErrNotFound)
	ErrScheduleNotFound    = fmt.Errorf("schedule %w", ErrNotFound)
	ErrMessageNotFound     = fmt.Errorf("message %w", ErrNotFound)
	ErrLocationNotFound    = fmt.Errorf("location %w", ErrNotFound)
	ErrFriendshipNotFound  = fmt.Errorf("friendship %w", ErrNotFound)
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidToken        = fmt.Errorf("%w: invalid response token", ErrForbidden)
	ErrInvalidResponse     = models.ErrInvalidResponse
	ErrAlreadyResolved     = models.ErrAlreadyResolved
	ErrInvalidCategory     = errors.New("category must be sent or received")
	ErrInvalidKind         = errors.New("invitation kind must be friends, groups or events")
	ErrDuplicateInvitation = errors.New("invitation already pending or relation already exists")
	ErrSelfInvitation      = errors.New("cannot invite yourself")
	ErrNoRecipients        = errors.New("at least one recipient is required")
	ErrTokenExhausted      = errors.New("could not generate a unique response token")
	ErrAlreadyScheduled    = errors.New("event already has a recurrence schedule")
	ErrLastOrganiser       = errors.New("an event must keep at least one organiser")
	ErrLastAdmin           = errors.New("a group must keep at least one admin")
	ErrNotParticipant      = errors.New("user is not a participant of the event")
	ErrNotMember           = errors.New("user is not a member of the group")
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
	ErrInvalidEventType    = errors.New("event type must be private or group")
	ErrEventCancelled      = errors.New("event is cancelled")
	ErrValidation          = errors.New("validation failed")
)

func notFound(err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
