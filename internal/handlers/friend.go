package handlers

import (
	"net/http"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type FriendHandler struct {
	userService       UserServiceInterface
	invitationService InvitationServiceInterface
}

func NewFriendHandler(userService UserServiceInterface, invitationService InvitationServiceInterface) *FriendHandler {
	return &FriendHandler{
		userService:       userService,
		invitationService: invitationService,
	}
}

func (h *FriendHandler) List(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	friends, err := h.userService.GetFriends(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to list friends")
		return
	}

	resp := make([]dto.UserResponse, len(friends))
	for i := range friends {
		resp[i] = *toUserResponse(&friends[i])
	}
	_ = c.JSON(http.StatusOK, resp)
}

// Invite sends a friend invitation to :userId.
func (h *FriendHandler) Invite(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	friendID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	invitations, err := h.invitationService.Create(c.Request.Context(), models.KindFriend, userID, []uuid.UUID{friendID}, nil)
	if err != nil {
		writeError(c, err, "failed to send friend invitation")
		return
	}

	_ = c.JSON(http.StatusCreated, toInvitationResponse(invitations[0]))
}

func (h *FriendHandler) Remove(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	friendID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.userService.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		writeError(c, err, "failed to remove friend")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "friend removed"})
}
