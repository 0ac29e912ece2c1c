package handlers

import (
	"github.com/dimitrije/gather-api/internal/middleware"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// currentUser returns the authenticated user id, answering 401 when missing.
func currentUser(c *drift.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func uuidParam(c *drift.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.BadRequest("invalid " + label + " id")
		return uuid.Nil, false
	}
	return id, true
}

func toUserResponse(u *models.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, AvatarURL: u.AvatarURL}
}

func toInvitationResponse(inv models.Invitation) dto.InvitationResponse {
	core := inv.Core()
	resp := dto.InvitationResponse{
		ID:               core.ID,
		Kind:             string(inv.Kind()),
		SenderID:         core.SenderID,
		RecipientID:      core.RecipientID,
		State:            string(core.State()),
		Confirmed:        core.Confirmed,
		ResponseReceived: core.ResponseReceived,
		DateSent:         core.DateSent,
	}
	switch inv.Kind() {
	case models.KindGroup:
		resp.GroupID = inv.TargetID()
	case models.KindEvent:
		resp.EventID = inv.TargetID()
	}
	return resp
}

func toInvitationResponses(invs []models.Invitation) []dto.InvitationResponse {
	resp := make([]dto.InvitationResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toInvitationResponse(inv)
	}
	return resp
}

func toGroupResponse(g *models.Group) dto.GroupResponse {
	return dto.GroupResponse{ID: g.ID, Name: g.Name, Description: g.Description, CreatedAt: g.CreatedAt}
}

func toEventResponse(e *models.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:                   e.ID,
		EventType:            string(e.EventType),
		Name:                 e.Name,
		Description:          e.Description,
		LocationID:           e.LocationID,
		GroupID:              e.GroupID,
		StartTime:            e.StartTime,
		EndTime:              e.EndTime,
		Status:               string(e.Status),
		RecurrenceScheduleID: e.RecurrenceScheduleID,
	}
}

func toEventResponses(events []models.Event) []dto.EventResponse {
	resp := make([]dto.EventResponse, len(events))
	for i := range events {
		resp[i] = toEventResponse(&events[i])
	}
	return resp
}

func toScheduleResponse(d *services.ScheduleDetail) dto.ScheduleResponse {
	s := d.Schedule
	return dto.ScheduleResponse{
		ID:          s.ID,
		Frequency:   string(s.Frequency),
		Interval:    s.Interval,
		EndDatetime: s.EndDatetime,
		Repeats:     s.Repeats,
		BaseEventID: s.BaseEventID,
		Events:      toEventResponses(d.Events),
	}
}

func toMessageResponse(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Title:      m.Title,
		Content:    m.Content,
		ReadStatus: m.ReadStatus,
		CreatedAt:  m.CreatedAt,
	}
}

func toLocationResponse(l *models.Location) dto.LocationResponse {
	return dto.LocationResponse{ID: l.ID, Name: l.Name, Address: l.Address, Latitude: l.Latitude, Longitude: l.Longitude}
}
