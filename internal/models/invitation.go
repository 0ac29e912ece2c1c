package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidResponse = errors.New("response must be accept or decline")
	ErrAlreadyResolved = errors.New("invitation already resolved")
)

type InvitationKind string

const (
	KindFriend InvitationKind = "friend"
	KindGroup  InvitationKind = "group"
	KindEvent  InvitationKind = "event"
)

// ParseKind accepts both the singular and the plural route form ("friends").
func ParseKind(s string) (InvitationKind, bool) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "friend":
		return KindFriend, true
	case "group":
		return KindGroup, true
	case "event":
		return KindEvent, true
	}
	return "", false
}

type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionDecline:
		return DecisionDecline, nil
	}
	return "", ErrInvalidResponse
}

type InvitationState string

const (
	StatePending  InvitationState = "pending"
	StateAccepted InvitationState = "accepted"
	StateDeclined InvitationState = "declined"
)

// InvitationCore holds the fields and transitions shared by every invitation kind.
type InvitationCore struct {
	ID               uuid.UUID  `json:"id"`
	SenderID         *uuid.UUID `json:"sender_id"`
	RecipientID      uuid.UUID  `json:"recipient_id"`
	Confirmed        bool       `json:"confirmed"`
	ResponseReceived bool       `json:"response_received"`
	DateSent         time.Time  `json:"date_sent"`
}

func (c *InvitationCore) State() InvitationState {
	switch {
	case c.Confirmed:
		return StateAccepted
	case c.ResponseReceived:
		return StateDeclined
	default:
		return StatePending
	}
}

func (c *InvitationCore) Resolved() bool {
	return c.Confirmed || c.ResponseReceived
}

// Respond applies a decision to a pending invitation. Accepting sets both
// Confirmed and ResponseReceived.
func (c *InvitationCore) Respond(d Decision) error {
	if c.Resolved() {
		return ErrAlreadyResolved
	}
	switch d {
	case DecisionAccept:
		c.Confirmed = true
		c.ResponseReceived = true
	case DecisionDecline:
		c.ResponseReceived = true
	default:
		return ErrInvalidResponse
	}
	return nil
}

// IsParty reports whether userID sent or received the invitation.
func (c *InvitationCore) IsParty(userID uuid.UUID) bool {
	if c.RecipientID == userID {
		return true
	}
	return c.SenderID != nil && *c.SenderID == userID
}

type Invitation interface {
	Core() *InvitationCore
	Kind() InvitationKind
	// TargetID is the group or event the invitation is for, nil for friend invitations.
	TargetID() *uuid.UUID
	// Token returns the email response token, empty for kinds without email delivery.
	Token() string
}

type FriendInvitation struct {
	InvitationCore
}

func (i *FriendInvitation) Core() *InvitationCore { return &i.InvitationCore }
func (i *FriendInvitation) Kind() InvitationKind  { return KindFriend }
func (i *FriendInvitation) TargetID() *uuid.UUID  { return nil }
func (i *FriendInvitation) Token() string         { return "" }

type GroupInvitation struct {
	InvitationCore
	GroupID            uuid.UUID `json:"group_id"`
	EmailResponseToken string    `json:"-"`
}

func (i *GroupInvitation) Core() *InvitationCore { return &i.InvitationCore }
func (i *GroupInvitation) Kind() InvitationKind  { return KindGroup }
func (i *GroupInvitation) TargetID() *uuid.UUID  { return &i.GroupID }
func (i *GroupInvitation) Token() string         { return i.EmailResponseToken }

type EventInvitation struct {
	InvitationCore
	EventID            uuid.UUID `json:"event_id"`
	EmailResponseToken string    `json:"-"`
}

func (i *EventInvitation) Core() *InvitationCore { return &i.InvitationCore }
func (i *EventInvitation) Kind() InvitationKind  { return KindEvent }
func (i *EventInvitation) TargetID() *uuid.UUID  { return &i.EventID }
func (i *EventInvitation) Token() string         { return i.EmailResponseToken }
