package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/sse"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const messageColumns = `id, sender_id, receiver_id, title, content, read_status, created_at`

type MessageService struct {
	db        *database.DB
	publisher Publisher
}

func NewMessageService(db *database.DB, publisher Publisher) *MessageService {
	return &MessageService{db: db, publisher: publisher}
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Title, &m.Content, &m.ReadStatus, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns the receiver's message box, newest first.
func (s *MessageService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE receiver_id = $1`
	if unreadOnly {
		query += ` AND read_status = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// Send stores a direct message from one user to another.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, title, content string) (*models.Message, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}
	return s.create(ctx, &senderID, receiverID, title, content)
}

// CreateNotification stores a message produced by the notification pipeline.
func (s *MessageService) CreateNotification(ctx context.Context, senderID *uuid.UUID, receiverID uuid.UUID, title, content string) error {
	_, err := s.create(ctx, senderID, receiverID, title, content)
	return err
}

func (s *MessageService) create(ctx context.Context, senderID *uuid.UUID, receiverID uuid.UUID, title, content string) (*models.Message, error) {
	m, err := scanMessage(s.db.Pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, title, content)
		SELECT $1, id, $3, $4 FROM users WHERE id = $2
		RETURNING `+messageColumns, senderID, receiverID, title, content))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	if s.publisher != nil {
		s.publisher.Publish(receiverID, sse.EventMessageCreated, m)
	}
	return m, nil
}

// MarkRead flags a message as read. Only its receiver may do so.
func (s *MessageService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Message, error) {
	m, err := scanMessage(s.db.Pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	if m.ReceiverID != userID {
		return nil, ErrForbidden
	}
	if m.ReadStatus {
		return m, nil
	}

	if _, err := s.db.Pool.Exec(ctx, `UPDATE messages SET read_status = TRUE WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}
	m.ReadStatus = true
	return m, nil
}
