package handlers

import (
	"errors"
	"net/http"

	"github.com/dimitrije/gather-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	log "github.com/sirupsen/logrus"
)

// writeError maps service errors onto HTTP responses. Unknown errors are
// logged and reported as fallback with a 500.
func writeError(c *drift.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrDuplicateInvitation),
		errors.Is(err, services.ErrAlreadyScheduled):
		conflict(c, err)
	case errors.Is(err, services.ErrInvalidResponse),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidKind),
		errors.Is(err, services.ErrAlreadyResolved),
		errors.Is(err, services.ErrSelfInvitation),
		errors.Is(err, services.ErrNoRecipients),
		errors.Is(err, services.ErrLastOrganiser),
		errors.Is(err, services.ErrLastAdmin),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrInvalidTimeRange),
		errors.Is(err, services.ErrInvalidEventType),
		errors.Is(err, services.ErrEventCancelled),
		errors.Is(err, services.ErrValidation),
		services.IsScheduleConfigError(err):
		c.BadRequest(err.Error())
	default:
		log.WithError(err).WithField("path", c.Request.URL.Path).Error(fallback)
		c.InternalServerError(fallback)
	}
}

func conflict(c *drift.Context, err error) {
	_ = c.JSON(http.StatusConflict, map[string]string{
		"error":   "conflict",
		"message": err.Error(),
	})
}
