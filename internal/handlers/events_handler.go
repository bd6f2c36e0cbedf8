package handlers

import (
	"io"

	"canteen_preorder/internal/auth"
	"canteen_preorder/internal/notifier"

	"github.com/gin-gonic/gin"
)

// EventsHandler streams order events to the client over SSE. The stream is
// best-effort: a client that reconnects re-queries the order API for
// authoritative state and only uses events as a refresh signal.
type EventsHandler struct {
	hub *notifier.Hub
}

func NewEventsHandler(hub *notifier.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

func (h *EventsHandler) Stream(c *gin.Context) {
	identity := auth.IdentityFrom(c)

	conn := notifier.NewConn()
	h.hub.Subscribe(identity.UserID, conn)
	if identity.IsAdmin() {
		h.hub.SubscribeAdmin(conn)
	}
	defer h.hub.Unsubscribe(conn)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-conn.Events():
			c.SSEvent(event.Name, event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
