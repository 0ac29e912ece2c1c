package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type GroupResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type GroupMemberResponse struct {
	UserID   uuid.UUID     `json:"user_id"`
	IsAdmin  bool          `json:"is_admin"`
	JoinedAt time.Time     `json:"joined_at"`
	User     *UserResponse `json:"user,omitempty"`
}
