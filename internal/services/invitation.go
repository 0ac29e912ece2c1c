package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/metrics"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/notify"
	"github.com/dimitrije/gather-api/internal/sse"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const maxTokenAttempts = 3

const (
	CategorySent     = "sent"
	CategoryReceived = "received"
)

// Publisher pushes live events to a user's open streams.
type Publisher interface {
	Publish(userID uuid.UUID, eventType string, data interface{})
}

type InvitationService struct {
	db         *database.DB
	dispatcher notify.Dispatcher
	publisher  Publisher
	baseURL    string
	kinds      map[models.InvitationKind]invitationKind
	newToken   func() string
}

func NewInvitationService(db *database.DB, dispatcher notify.Dispatcher, publisher Publisher, baseURL string) *InvitationService {
	return &InvitationService{
		db:         db,
		dispatcher: dispatcher,
		publisher:  publisher,
		baseURL:    baseURL,
		kinds: map[models.InvitationKind]invitationKind{
			models.KindFriend: friendKind{},
			models.KindGroup:  groupKind{},
			models.KindEvent:  eventKind{},
		},
		newToken: NewResponseToken,
	}
}

// NewResponseToken returns 128 random bits as 32 lowercase hex characters.
func NewResponseToken() string {
	var b [16]byte
	// crypto/rand.Read does not return an error since Go 1.24.
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *InvitationService) kind(k models.InvitationKind) (invitationKind, error) {
	ik, ok := s.kinds[k]
	if !ok {
		return nil, ErrInvalidKind
	}
	return ik, nil
}

// Create sends one invitation of the given kind to every recipient. Either
// all invitations are stored or none are. Notifications are dispatched as a
// single batch after commit and never undo the invitations.
func (s *InvitationService) Create(ctx context.Context, kind models.InvitationKind, senderID uuid.UUID, recipientIDs []uuid.UUID, targetID *uuid.UUID) ([]models.Invitation, error) {
	k, err := s.kind(kind)
	if err != nil {
		return nil, err
	}

	recipients := dedupe(recipientIDs)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	for _, id := range recipients {
		if id == senderID {
			return nil, ErrSelfInvitation
		}
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	target, err := k.loadTarget(ctx, tx, senderID, targetID)
	if err != nil {
		return nil, err
	}

	users, err := getUsers(ctx, tx, append([]uuid.UUID{senderID}, recipients...))
	if err != nil {
		return nil, err
	}

	invitations := make([]models.Invitation, 0, len(recipients))
	for _, recipientID := range recipients {
		dup, err := k.isDuplicate(ctx, tx, senderID, recipientID, target)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing invitations: %w", err)
		}
		if dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateInvitation, recipientID)
		}

		inv, err := s.insert(ctx, tx, k, senderID, recipientID, target)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.InvitationsCreated.WithLabelValues(string(kind)).Add(float64(len(invitations)))

	jobs := make([]notify.Job, 0, len(invitations))
	for _, inv := range invitations {
		jobs = append(jobs, k.notification(inv, users[senderID], users[inv.Core().RecipientID], target, s.baseURL))
		s.publish(inv.Core().RecipientID, sse.EventInvitationReceived, inv)
	}
	if err := s.dispatcher.DispatchBatch(ctx, jobs); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"kind":  kind,
			"count": len(jobs),
		}).Error("Failed to dispatch invitation notifications")
	}

	return invitations, nil
}

// insert stores one invitation, regenerating the response token if it collides.
func (s *InvitationService) insert(ctx context.Context, tx pgx.Tx, k invitationKind, senderID, recipientID uuid.UUID, target *inviteTarget) (models.Invitation, error) {
	cols := invitationColumns(k)

	if !k.emailCapable() {
		inv, err := scanInvitation(k, tx.QueryRow(ctx, `
			INSERT INTO `+k.table()+` (sender_id, recipient_id)
			VALUES ($1, $2)
			RETURNING `+cols, senderID, recipientID))
		if err != nil {
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}
		return inv, nil
	}

	// A token collision makes ON CONFLICT skip the row, which surfaces as ErrNoRows.
	query := `
		INSERT INTO ` + k.table() + ` (sender_id, recipient_id, ` + k.targetColumn() + `, email_response_token)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email_response_token) DO NOTHING
		RETURNING ` + cols
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		inv, err := scanInvitation(k, tx.QueryRow(ctx, query, senderID, recipientID, target.id, s.newToken()))
		if errors.Is(err, pgx.ErrNoRows) {
			log.WithField("kind", k.kind()).Warn("Response token collision, regenerating")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}
		return inv, nil
	}
	return nil, ErrTokenExhausted
}

// Respond applies the recipient's decision.
func (s *InvitationService) Respond(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID, response string) (models.Invitation, error) {
	k, err := s.kind(kind)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, k, id, "api", func(inv models.Invitation) error {
		if inv.Core().RecipientID != actorID {
			return ErrForbidden
		}
		return nil
	}, response)
}

// RespondByToken applies a decision carried by an email link. The token
// stands in for the recipient's identity.
func (s *InvitationService) RespondByToken(ctx context.Context, kind models.InvitationKind, id uuid.UUID, token, response string) (models.Invitation, error) {
	k, err := s.kind(kind)
	if err != nil {
		return nil, err
	}
	if !k.emailCapable() {
		return nil, ErrInvitationNotFound
	}
	return s.respond(ctx, k, id, "email", func(inv models.Invitation) error {
		if subtle.ConstantTimeCompare([]byte(token), []byte(inv.Token())) != 1 {
			return ErrInvalidToken
		}
		return nil
	}, response)
}

func (s *InvitationService) respond(ctx context.Context, k invitationKind, id uuid.UUID, via string, authorize func(models.Invitation) error, response string) (models.Invitation, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := scanInvitation(k, tx.QueryRow(ctx, `
		SELECT `+invitationColumns(k)+` FROM `+k.table()+` WHERE id = $1 FOR UPDATE
	`, id))
	if err != nil {
		return nil, notFound(err, ErrInvitationNotFound)
	}

	if err := authorize(inv); err != nil {
		return nil, err
	}

	decision, err := models.ParseDecision(response)
	if err != nil {
		return nil, err
	}

	core := inv.Core()
	if err := core.Respond(decision); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE `+k.table()+` SET confirmed = $1, response_received = TRUE
		WHERE id = $2 AND response_received = FALSE
	`, core.Confirmed, core.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAlreadyResolved
	}

	if decision == models.DecisionAccept {
		if err := k.confirm(ctx, tx, inv, s.newToken); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.InvitationResponses.WithLabelValues(string(k.kind()), string(decision), via).Inc()
	s.notifySender(ctx, inv, decision)
	return inv, nil
}

// notifySender drops a message in the sender's box once the recipient answered.
func (s *InvitationService) notifySender(ctx context.Context, inv models.Invitation, decision models.Decision) {
	core := inv.Core()
	if core.SenderID == nil {
		return
	}

	var name string
	if err := s.db.Pool.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, core.RecipientID).Scan(&name); err != nil {
		log.WithError(err).WithField("invitation_id", core.ID).Warn("Failed to load recipient for response notification")
		return
	}

	word := "accepted"
	if decision == models.DecisionDecline {
		word = "declined"
	}
	job := notify.Job{
		Kind:        string(inv.Kind()),
		Channel:     notify.ChannelMessage,
		Template:    "invitation_response",
		Subject:     fmt.Sprintf("%s %s your invitation", name, word),
		Data:        map[string]any{"recipient_name": name, "decision": word, "kind": string(inv.Kind())},
		RecipientID: *core.SenderID,
		SenderID:    &core.RecipientID,
	}
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		log.WithError(err).WithField("invitation_id", core.ID).Error("Failed to dispatch response notification")
	}
}

// List returns the invitations userID sent, or the unanswered ones they
// received, newest first. An empty category means received.
func (s *InvitationService) List(ctx context.Context, kind models.InvitationKind, userID uuid.UUID, category string) ([]models.Invitation, error) {
	k, err := s.kind(kind)
	if err != nil {
		return nil, err
	}

	qb := sq.Select(invitationColumns(k)).
		From(k.table()).
		OrderBy("date_sent DESC").
		PlaceholderFormat(sq.Dollar)
	switch category {
	case CategorySent:
		qb = qb.Where(sq.Eq{"sender_id": userID})
	case CategoryReceived, "":
		qb = qb.Where(sq.Eq{"recipient_id": userID, "response_received": false})
	default:
		return nil, ErrInvalidCategory
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(k, rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// Get returns an invitation to its sender or recipient, answered or not.
func (s *InvitationService) Get(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID) (models.Invitation, error) {
	k, err := s.kind(kind)
	if err != nil {
		return nil, err
	}
	inv, err := s.load(ctx, k, id)
	if err != nil {
		return nil, err
	}
	if !inv.Core().IsParty(actorID) {
		return nil, ErrForbidden
	}
	return inv, nil
}

// GetForToken loads an email-capable invitation and checks the token, for rendering the response page.
func (s *InvitationService) GetForToken(ctx context.Context, kind models.InvitationKind, id uuid.UUID, token string) (models.Invitation, error) {
	k, err := s.kind(kind)
	if err != nil {
		return nil, err
	}
	if !k.emailCapable() {
		return nil, ErrInvitationNotFound
	}
	inv, err := s.load(ctx, k, id)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(inv.Token())) != 1 {
		return nil, ErrInvalidToken
	}
	return inv, nil
}

func (s *InvitationService) load(ctx context.Context, k invitationKind, id uuid.UUID) (models.Invitation, error) {
	inv, err := scanInvitation(k, s.db.Pool.QueryRow(ctx, `
		SELECT `+invitationColumns(k)+` FROM `+k.table()+` WHERE id = $1
	`, id))
	if err != nil {
		return nil, notFound(err, ErrInvitationNotFound)
	}
	return inv, nil
}

// Delete withdraws or dismisses an unanswered invitation.
func (s *InvitationService) Delete(ctx context.Context, kind models.InvitationKind, id, actorID uuid.UUID) error {
	k, err := s.kind(kind)
	if err != nil {
		return err
	}
	inv, err := s.load(ctx, k, id)
	if err != nil {
		return err
	}
	if !inv.Core().IsParty(actorID) {
		return ErrForbidden
	}
	if inv.Core().ResponseReceived {
		return ErrAlreadyResolved
	}

	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM `+k.table()+` WHERE id = $1 AND response_received = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

func (s *InvitationService) publish(userID uuid.UUID, eventType string, data interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(userID, eventType, data)
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
