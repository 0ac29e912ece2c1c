package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/notify"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// inviteTarget is what an invitation points at, loaded once per batch.
type inviteTarget struct {
	id        uuid.UUID
	name      string
	start     time.Time
	recurring bool
}

// invitationKind supplies the per-kind storage, permission and confirmation rules.
type invitationKind interface {
	kind() models.InvitationKind
	table() string
	// targetColumn is empty for kinds without a target.
	targetColumn() string
	emailCapable() bool
	newInvitation() models.Invitation
	loadTarget(ctx context.Context, q database.Querier, senderID uuid.UUID, targetID *uuid.UUID) (*inviteTarget, error)
	isDuplicate(ctx context.Context, q database.Querier, senderID, recipientID uuid.UUID, target *inviteTarget) (bool, error)
	confirm(ctx context.Context, tx pgx.Tx, inv models.Invitation, newToken func() string) error
	notification(inv models.Invitation, sender, recipient *models.User, target *inviteTarget, baseURL string) notify.Job
}

func invitationColumns(k invitationKind) string {
	cols := `id, sender_id, recipient_id, confirmed, response_received, date_sent`
	if c := k.targetColumn(); c != "" {
		cols += `, ` + c
	}
	if k.emailCapable() {
		cols += `, email_response_token`
	}
	return cols
}

func scanInvitation(k invitationKind, row pgx.Row) (models.Invitation, error) {
	inv := k.newInvitation()
	core := inv.Core()
	dest := []any{&core.ID, &core.SenderID, &core.RecipientID, &core.Confirmed, &core.ResponseReceived, &core.DateSent}
	switch v := inv.(type) {
	case *models.GroupInvitation:
		dest = append(dest, &v.GroupID, &v.EmailResponseToken)
	case *models.EventInvitation:
		dest = append(dest, &v.EventID, &v.EmailResponseToken)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return inv, nil
}

func responseURL(baseURL string, inv models.Invitation, decision models.Decision) string {
	return fmt.Sprintf("%s/api/v1/invitations/%ss/%s/email-response?token=%s&response=%s",
		baseURL, inv.Kind(), inv.Core().ID, inv.Token(), decision)
}

func senderName(u *models.User) string {
	if u == nil {
		return "Someone"
	}
	return u.Name
}

type friendKind struct{}

func (friendKind) kind() models.InvitationKind      { return models.KindFriend }
func (friendKind) table() string                    { return "friend_invitations" }
func (friendKind) targetColumn() string             { return "" }
func (friendKind) emailCapable() bool               { return false }
func (friendKind) newInvitation() models.Invitation { return &models.FriendInvitation{} }

func (friendKind) loadTarget(context.Context, database.Querier, uuid.UUID, *uuid.UUID) (*inviteTarget, error) {
	return &inviteTarget{}, nil
}

// isDuplicate reports an existing friendship or a pending invitation in either direction.
func (friendKind) isDuplicate(ctx context.Context, q database.Querier, senderID, recipientID uuid.UUID, _ *inviteTarget) (bool, error) {
	var dup bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)
		    OR EXISTS(
		        SELECT 1 FROM friend_invitations
		        WHERE response_received = FALSE
		          AND ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		    )
	`, senderID, recipientID).Scan(&dup)
	return dup, err
}

func (friendKind) confirm(ctx context.Context, tx pgx.Tx, inv models.Invitation, _ func() string) error {
	core := inv.Core()
	if core.SenderID == nil {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT DO NOTHING
	`, *core.SenderID, core.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

func (friendKind) notification(inv models.Invitation, sender, recipient *models.User, _ *inviteTarget, _ string) notify.Job {
	return notify.Job{
		Kind:        string(models.KindFriend),
		Channel:     notify.ChannelMessage,
		Template:    "friend_invitation",
		Subject:     "New friend invitation",
		Data:        map[string]any{"sender_name": senderName(sender), "invitation_id": inv.Core().ID.String()},
		RecipientID: recipient.ID,
		SenderID:    inv.Core().SenderID,
	}
}

type groupKind struct{}

func (groupKind) kind() models.InvitationKind      { return models.KindGroup }
func (groupKind) table() string                    { return "group_invitations" }
func (groupKind) targetColumn() string             { return "group_id" }
func (groupKind) emailCapable() bool               { return true }
func (groupKind) newInvitation() models.Invitation { return &models.GroupInvitation{} }

// loadTarget requires the sender to be a member of the group.
func (groupKind) loadTarget(ctx context.Context, q database.Querier, senderID uuid.UUID, targetID *uuid.UUID) (*inviteTarget, error) {
	if targetID == nil {
		return nil, ErrGroupNotFound
	}
	t := &inviteTarget{id: *targetID}
	err := q.QueryRow(ctx, `SELECT name FROM user_groups WHERE id = $1 AND deleted = FALSE`, *targetID).Scan(&t.name)
	if err != nil {
		return nil, notFound(err, ErrGroupNotFound)
	}
	member, err := isGroupMember(ctx, q, *targetID, senderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrForbidden
	}
	return t, nil
}

func (groupKind) isDuplicate(ctx context.Context, q database.Querier, _, recipientID uuid.UUID, target *inviteTarget) (bool, error) {
	var dup bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
		    OR EXISTS(
		        SELECT 1 FROM group_invitations
		        WHERE group_id = $1 AND recipient_id = $2 AND response_received = FALSE
		    )
	`, target.id, recipientID).Scan(&dup)
	return dup, err
}

func (groupKind) confirm(ctx context.Context, tx pgx.Tx, inv models.Invitation, _ func() string) error {
	g := inv.(*models.GroupInvitation)
	_, err := tx.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, g.GroupID, g.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

func (groupKind) notification(inv models.Invitation, sender, recipient *models.User, target *inviteTarget, baseURL string) notify.Job {
	return notify.Job{
		Kind:     string(models.KindGroup),
		Channel:  notify.ChannelEmail,
		Template: "group_invitation",
		Subject:  fmt.Sprintf("%s invited you to join %s", senderName(sender), target.name),
		Data: map[string]any{
			"sender_name":    senderName(sender),
			"recipient_name": recipient.Name,
			"group_name":     target.name,
			"accept_url":     responseURL(baseURL, inv, models.DecisionAccept),
			"decline_url":    responseURL(baseURL, inv, models.DecisionDecline),
		},
		To:          []string{recipient.Email},
		RecipientID: recipient.ID,
		SenderID:    inv.Core().SenderID,
	}
}

type eventKind struct{}

func (eventKind) kind() models.InvitationKind      { return models.KindEvent }
func (eventKind) table() string                    { return "event_invitations" }
func (eventKind) targetColumn() string             { return "event_id" }
func (eventKind) emailCapable() bool               { return true }
func (eventKind) newInvitation() models.Invitation { return &models.EventInvitation{} }

// loadTarget requires the sender to organise the event, which must not be cancelled.
func (eventKind) loadTarget(ctx context.Context, q database.Querier, senderID uuid.UUID, targetID *uuid.UUID) (*inviteTarget, error) {
	if targetID == nil {
		return nil, ErrEventNotFound
	}
	t := &inviteTarget{id: *targetID}
	var status models.EventStatus
	var scheduleID *uuid.UUID
	err := q.QueryRow(ctx, `
		SELECT name, start_time, status, recurrence_schedule_id FROM events WHERE id = $1
	`, *targetID).Scan(&t.name, &t.start, &status, &scheduleID)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	if err := requireOrganiser(ctx, q, *targetID, senderID); err != nil {
		return nil, err
	}
	if status == models.EventStatusCancelled {
		return nil, ErrEventCancelled
	}
	t.recurring = scheduleID != nil
	return t, nil
}

func (eventKind) isDuplicate(ctx context.Context, q database.Querier, _, recipientID uuid.UUID, target *inviteTarget) (bool, error) {
	var dup bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)
		    OR EXISTS(
		        SELECT 1 FROM event_invitations
		        WHERE event_id = $1 AND recipient_id = $2 AND response_received = FALSE
		    )
	`, target.id, recipientID).Scan(&dup)
	return dup, err
}

// confirm adds the recipient to the event. For a recurring event the
// recipient joins every other occurrence too, recorded as invitations that
// are already accepted.
func (eventKind) confirm(ctx context.Context, tx pgx.Tx, inv models.Invitation, newToken func() string) error {
	e := inv.(*models.EventInvitation)
	if _, err := tx.Exec(ctx, `
		INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, e.EventID, e.RecipientID); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT s.id FROM events s
		JOIN events e ON e.recurrence_schedule_id = s.recurrence_schedule_id
		WHERE e.id = $1 AND s.id <> e.id
		  AND NOT EXISTS (SELECT 1 FROM event_participants p WHERE p.event_id = s.id AND p.user_id = $2)
		ORDER BY s.start_time
	`, e.EventID, e.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to load recurring events: %w", err)
	}
	siblings, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return err
	}
	if len(siblings) == 0 {
		return nil
	}

	tokens := make([]string, len(siblings))
	for i := range siblings {
		tokens[i] = newToken()
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO event_participants (event_id, user_id)
		SELECT unnest($1::uuid[]), $2
		ON CONFLICT DO NOTHING
	`, siblings, e.RecipientID); err != nil {
		return fmt.Errorf("failed to add participant to recurring events: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO event_invitations (sender_id, recipient_id, event_id, confirmed, response_received, email_response_token)
		SELECT $1, $2, x.event_id, TRUE, TRUE, x.token
		FROM unnest($3::uuid[], $4::text[]) AS x(event_id, token)
		ON CONFLICT (email_response_token) DO NOTHING
	`, e.SenderID, e.RecipientID, siblings, tokens)
	if err != nil {
		return fmt.Errorf("failed to record recurring invitations: %w", err)
	}
	if tag.RowsAffected() != int64(len(siblings)) {
		return ErrTokenExhausted
	}
	return nil
}

func (eventKind) notification(inv models.Invitation, sender, recipient *models.User, target *inviteTarget, baseURL string) notify.Job {
	return notify.Job{
		Kind:     string(models.KindEvent),
		Channel:  notify.ChannelEmail,
		Template: "event_invitation",
		Subject:  fmt.Sprintf("%s invited you to %s", senderName(sender), target.name),
		Data: map[string]any{
			"sender_name":    senderName(sender),
			"recipient_name": recipient.Name,
			"event_name":     target.name,
			"event_start":    target.start.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
			"recurring":      target.recurring,
			"accept_url":     responseURL(baseURL, inv, models.DecisionAccept),
			"decline_url":    responseURL(baseURL, inv, models.DecisionDecline),
		},
		To:          []string{recipient.Email},
		RecipientID: recipient.ID,
		SenderID:    inv.Core().SenderID,
	}
}
