package handlers

import (
	"net/http"

	"github.com/dimitrije/gather-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type MessageHandler struct {
	messageService MessageServiceInterface
}

func NewMessageHandler(messageService MessageServiceInterface) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) List(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), userID, c.QueryParam("unread") == "true")
	if err != nil {
		writeError(c, err, "failed to list messages")
		return
	}

	resp := make([]dto.MessageResponse, len(messages))
	for i := range messages {
		resp[i] = toMessageResponse(&messages[i])
	}
	_ = c.JSON(http.StatusOK, resp)
}

func (h *MessageHandler) Send(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.ReceiverID == uuid.Nil {
		c.BadRequest("receiver_id is required")
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), userID, req.ReceiverID, req.Title, req.Content)
	if err != nil {
		writeError(c, err, "failed to send message")
		return
	}

	_ = c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (h *MessageHandler) MarkRead(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := uuidParam(c, "id", "message")
	if !ok {
		return
	}

	msg, err := h.messageService.MarkRead(c.Request.Context(), messageID, userID)
	if err != nil {
		writeError(c, err, "failed to mark message read")
		return
	}

	_ = c.JSON(http.StatusOK, toMessageResponse(msg))
}
