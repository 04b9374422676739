package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collabhub-dev/collab-backend/internal/auth"
	"github.com/collabhub-dev/collab-backend/internal/notifications/dispatcher"
)

// stream delivers the user's notifications over Server-Sent Events:
// an initial snapshot of unread rows from the store, then live pushes
// from the per-user redis channel. The dispatcher persists before it
// pushes, so reconnecting and replaying the snapshot never loses a
// notification.
func (h *Handler) stream(c *gin.Context) {
	user := auth.CurrentUser(c)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()

	sub := h.redis.Subscribe(ctx, dispatcher.UserChannel(user.ID))
	defer sub.Close()

	// Initial snapshot: everything currently unread.
	unread, err := h.repo.ListByUser(ctx, user.ID, 100)
	if err == nil {
		initialData, _ := json.Marshal(gin.H{"notifications": unread})
		fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", string(initialData))
		flusher.Flush()
	}

	// Keep-alive pings so proxies don't cut the connection.
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: notification\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
