package dto

import (
	"time"

	"github.com/google/uuid"
)

// InviteRequest carries the recipients of a batch invitation.
type InviteRequest struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

type InvitationResponse struct {
	ID               uuid.UUID  `json:"id"`
	Kind             string     `json:"kind"`
	SenderID         *uuid.UUID `json:"sender_id"`
	RecipientID      uuid.UUID  `json:"recipient_id"`
	GroupID          *uuid.UUID `json:"group_id,omitempty"`
	EventID          *uuid.UUID `json:"event_id,omitempty"`
	State            string     `json:"state"`
	Confirmed        bool       `json:"confirmed"`
	ResponseReceived bool       `json:"response_received"`
	DateSent         time.Time  `json:"date_sent"`
}
