package handlers

import (
	"net/http"

	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type EventHandler struct {
	eventService      EventServiceInterface
	invitationService InvitationServiceInterface
}

func NewEventHandler(eventService EventServiceInterface, invitationService InvitationServiceInterface) *EventHandler {
	return &EventHandler{
		eventService:      eventService,
		invitationService: invitationService,
	}
}

// List returns the caller's events, optionally filtered by ?status= and ?event_type=.
func (h *EventHandler) List(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var filter services.EventFilter
	if raw := c.QueryParam("status"); raw != "" {
		status := models.EventStatus(raw)
		if !status.Valid() {
			c.BadRequest("invalid status filter")
			return
		}
		filter.Status = &status
	}
	if raw := c.QueryParam("event_type"); raw != "" {
		eventType := models.EventType(raw)
		if !eventType.Valid() {
			c.BadRequest(services.ErrInvalidEventType.Error())
			return
		}
		filter.EventType = &eventType
	}

	events, err := h.eventService.List(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err, "failed to list events")
		return
	}

	_ = c.JSON(http.StatusOK, toEventResponses(events))
}

func (h *EventHandler) Create(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), userID, services.CreateEventInput{
		EventType:   models.EventType(req.EventType),
		Name:        req.Name,
		Description: req.Description,
		LocationID:  req.LocationID,
		GroupID:     req.GroupID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(c, err, "failed to create event")
		return
	}

	_ = c.JSON(http.StatusCreated, toEventResponse(event))
}

func (h *EventHandler) Get(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}

	event, err := h.eventService.GetVisible(c.Request.Context(), userID, eventID)
	if err != nil {
		writeError(c, err, "failed to get event")
		return
	}

	_ = c.JSON(http.StatusOK, toEventResponse(event))
}

func (h *EventHandler) Update(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name != nil && *req.Name == "" {
		c.BadRequest("name cannot be empty")
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), userID, eventID, services.UpdateEventInput{
		Name:        req.Name,
		Description: req.Description,
		LocationID:  req.LocationID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(c, err, "failed to update event")
		return
	}

	_ = c.JSON(http.StatusOK, toEventResponse(event))
}

func (h *EventHandler) Cancel(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}

	event, err := h.eventService.Cancel(c.Request.Context(), userID, eventID)
	if err != nil {
		writeError(c, err, "failed to cancel event")
		return
	}

	_ = c.JSON(http.StatusOK, toEventResponse(event))
}

func (h *EventHandler) People(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}

	people, err := h.eventService.GetPeople(c.Request.Context(), userID, eventID)
	if err != nil {
		writeError(c, err, "failed to list participants")
		return
	}

	resp := make([]dto.EventPersonResponse, len(people))
	for i, p := range people {
		resp[i] = dto.EventPersonResponse{
			UserID:      p.UserID,
			IsOrganiser: p.IsOrganiser,
			User:        toUserResponse(p.User),
		}
	}
	_ = c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) InviteParticipants(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}

	var req dto.InviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	invitations, err := h.invitationService.Create(c.Request.Context(), models.KindEvent, userID, req.UserIDs, &eventID)
	if err != nil {
		writeError(c, err, "failed to invite participants")
		return
	}

	_ = c.JSON(http.StatusCreated, toInvitationResponses(invitations))
}

func (h *EventHandler) RemoveParticipant(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}
	participantID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.eventService.RemoveParticipant(c.Request.Context(), userID, eventID, participantID); err != nil {
		writeError(c, err, "failed to remove participant")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "participant removed"})
}

func (h *EventHandler) AddOrganiser(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}
	participantID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.eventService.AddOrganiser(c.Request.Context(), userID, eventID, participantID); err != nil {
		writeError(c, err, "failed to add organiser")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "organiser added"})
}

func (h *EventHandler) RemoveOrganiser(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id", "event")
	if !ok {
		return
	}
	participantID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.eventService.RemoveOrganiser(c.Request.Context(), userID, eventID, participantID); err != nil {
		writeError(c, err, "failed to remove organiser")
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "organiser removed"})
}
