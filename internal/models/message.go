package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is an entry in a user's message box. SenderID is nil for system messages.
type Message struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   *uuid.UUID `json:"sender_id,omitempty"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	ReadStatus bool       `json:"read_status"`
	CreatedAt  time.Time  `json:"created_at"`
}
