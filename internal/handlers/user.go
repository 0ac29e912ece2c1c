package handlers

import (
	"net/http"

	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to get user")
		return
	}

	_ = c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), userID, req.Name, req.AvatarURL)
	if err != nil {
		writeError(c, err, "failed to update user")
		return
	}

	_ = c.JSON(http.StatusOK, toUserResponse(user))
}
