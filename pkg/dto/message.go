package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
}

type MessageResponse struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   *uuid.UUID `json:"sender_id,omitempty"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	ReadStatus bool       `json:"read_status"`
	CreatedAt  time.Time  `json:"created_at"`
}

type CreateLocationRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}
