package handlers

import (
	"net/http"

	"github.com/dimitrije/gather-api/internal/recurrence"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type ScheduleHandler struct {
	scheduleService ScheduleServiceInterface
}

func NewScheduleHandler(scheduleService ScheduleServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// Create turns the event at :id into the base of a recurring series.
func (h *ScheduleHandler) Create(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	detail, err := h.scheduleService.Create(c.Request.Context(), userID, eventID, services.ScheduleParams{
		Frequency:   recurrence.Frequency(req.Frequency),
		Interval:    req.Interval,
		EndDatetime: req.EndDatetime,
		Repeats:     req.Repeats,
	})
	if err != nil {
		writeError(c, err, "failed to create schedule")
		return
	}

	_ = c.JSON(http.StatusCreated, toScheduleResponse(detail))
}

func (h *ScheduleHandler) Get(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	scheduleID, ok := uuidParam(c, "id", "schedule")
	if !ok {
		return
	}

	detail, err := h.scheduleService.GetVisible(c.Request.Context(), userID, scheduleID)
	if err != nil {
		writeError(c, err, "failed to get schedule")
		return
	}

	_ = c.JSON(http.StatusOK, toScheduleResponse(detail))
}

// Cancel marks every event of the series cancelled.
func (h *ScheduleHandler) Cancel(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	scheduleID, ok := uuidParam(c, "id", "schedule")
	if !ok {
		return
	}

	n, err := h.scheduleService.CancelAll(c.Request.Context(), userID, scheduleID)
	if err != nil {
		writeError(c, err, "failed to cancel schedule")
		return
	}

	_ = c.JSON(http.StatusOK, dto.CancelScheduleResponse{Cancelled: n})
}
