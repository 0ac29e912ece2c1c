package handlers

import (
	"github.com/dimitrije/gather-api/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type SSEHandler struct {
	hub SSEHubInterface
}

func NewSSEHandler(hub SSEHubInterface) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream pushes the caller's new messages and invitations until the client disconnects.
func (h *SSEHandler) Stream(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:     clientID,
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
