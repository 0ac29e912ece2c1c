package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	log "github.com/sirupsen/logrus"
)

// InvitePageHandler serves the public pages linked from invitation emails.
// The response token in the link stands in for authentication.
type InvitePageHandler struct {
	invitationService InvitationServiceInterface
}

func NewInvitePageHandler(invitationService InvitationServiceInterface) *InvitePageHandler {
	return &InvitePageHandler{invitationService: invitationService}
}

func (h *InvitePageHandler) EmailResponse(c *drift.Context) {
	kind, ok := models.ParseKind(c.Param("kind"))
	if !ok {
		h.renderError(c, http.StatusBadRequest, "Invalid invitation link")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid invitation link")
		return
	}
	token := c.QueryParam("token")
	if token == "" {
		h.renderError(c, http.StatusForbidden, "This link is missing its response token")
		return
	}

	response := c.QueryParam("response")
	if response == "" {
		inv, err := h.invitationService.GetForToken(c.Request.Context(), kind, id, token)
		if err != nil {
			h.renderFailure(c, err)
			return
		}
		if inv.Core().Resolved() {
			h.renderMessage(c, fmt.Sprintf("This invitation has already been %s", inv.Core().State()))
			return
		}
		h.renderChoicePage(c, kind, id, token)
		return
	}

	inv, err := h.invitationService.RespondByToken(c.Request.Context(), kind, id, token, response)
	if err != nil {
		h.renderFailure(c, err)
		return
	}

	if inv.Core().Confirmed {
		h.renderMessage(c, fmt.Sprintf("You have joined the %s!", kind))
		return
	}
	h.renderMessage(c, "Invitation declined")
}

func (h *InvitePageHandler) renderFailure(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		h.renderError(c, http.StatusNotFound, "Invitation not found")
	case errors.Is(err, services.ErrForbidden):
		h.renderError(c, http.StatusForbidden, "This invitation link is not valid")
	case errors.Is(err, services.ErrAlreadyResolved):
		h.renderError(c, http.StatusConflict, "This invitation has already been answered")
	case errors.Is(err, services.ErrInvalidResponse):
		h.renderError(c, http.StatusBadRequest, "Unknown response, use accept or decline")
	default:
		log.WithError(err).Error("email invitation response failed")
		h.renderError(c, http.StatusInternalServerError, "Failed to process invitation")
	}
}

func (h *InvitePageHandler) renderChoicePage(c *drift.Context, kind models.InvitationKind, id uuid.UUID, token string) {
	base := fmt.Sprintf("/api/v1/invitations/%ss/%s/email-response?token=%s", kind, id, url.QueryEscape(token))
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Invitation</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 400px; margin: 50px auto; padding: 20px; text-align: center; }
        h1 { color: #333; }
        p { color: #666; margin: 20px 0; }
        .buttons { display: flex; gap: 10px; justify-content: center; margin-top: 30px; }
        a { padding: 12px 24px; font-size: 16px; border-radius: 6px; text-decoration: none; }
        .accept { background: #22c55e; color: white; }
        .decline { background: #e5e7eb; color: #333; }
    </style>
</head>
<body>
    <h1>You're invited</h1>
    <p>You have been invited to join a %s.</p>
    <div class="buttons">
        <a class="accept" href="%s&response=accept">Accept</a>
        <a class="decline" href="%s&response=decline">Decline</a>
    </div>
</body>
</html>`, kind, html.EscapeString(base), html.EscapeString(base))

	_ = c.HTML(http.StatusOK, page)
}

func (h *InvitePageHandler) renderMessage(c *drift.Context, message string) {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Invitation</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 400px; margin: 50px auto; padding: 20px; text-align: center; }
        h1 { color: #22c55e; }
    </style>
</head>
<body>
    <h1>%s</h1>
</body>
</html>`, html.EscapeString(message))

	_ = c.HTML(http.StatusOK, page)
}

func (h *InvitePageHandler) renderError(c *drift.Context, status int, message string) {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Error</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 400px; margin: 50px auto; padding: 20px; text-align: center; }
        h1 { color: #ef4444; }
        p { color: #666; }
    </style>
</head>
<body>
    <h1>Error</h1>
    <p>%s</p>
</body>
</html>`, html.EscapeString(message))

	_ = c.HTML(status, page)
}
