package handlers

import (
	"errors"
	"net/http"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

type InvitationHandler struct {
	invitationService InvitationServiceInterface
}

func NewInvitationHandler(invitationService InvitationServiceInterface) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

func kindParam(c *drift.Context, raw string) (models.InvitationKind, bool) {
	kind, ok := models.ParseKind(raw)
	if !ok {
		c.BadRequest(services.ErrInvalidKind.Error())
		return "", false
	}
	return kind, true
}

// List serves both GET /invitations/:kind and the older GET /invitations?invite_type=.
func (h *InvitationHandler) List(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rawKind := c.Param("kind")
	if rawKind == "" {
		rawKind = c.QueryParam("invite_type")
	}
	kind, ok := kindParam(c, rawKind)
	if !ok {
		return
	}

	invitations, err := h.invitationService.List(c.Request.Context(), kind, userID, c.QueryParam("category"))
	if err != nil {
		writeError(c, err, "failed to list invitations")
		return
	}

	_ = c.JSON(http.StatusOK, toInvitationResponses(invitations))
}

func (h *InvitationHandler) Get(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c, c.Param("kind"))
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "invitation")
	if !ok {
		return
	}

	inv, err := h.invitationService.Get(c.Request.Context(), kind, id, userID)
	if err != nil {
		writeError(c, err, "failed to get invitation")
		return
	}

	_ = c.JSON(http.StatusOK, toInvitationResponse(inv))
}

func (h *InvitationHandler) Respond(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c, c.Param("kind"))
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "invitation")
	if !ok {
		return
	}

	inv, err := h.invitationService.Respond(c.Request.Context(), kind, id, userID, c.QueryParam("response"))
	if err != nil {
		if errors.Is(err, services.ErrAlreadyResolved) {
			conflict(c, err)
			return
		}
		writeError(c, err, "failed to respond to invitation")
		return
	}

	_ = c.JSON(http.StatusOK, toInvitationResponse(inv))
}

func (h *InvitationHandler) Delete(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c, c.Param("kind"))
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "invitation")
	if !ok {
		return
	}

	if err := h.invitationService.Delete(c.Request.Context(), kind, id, userID); err != nil {
		writeError(c, err, "failed to delete invitation")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "invitation deleted"})
}
