// Package sse streams inventory change events to clients.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/lootgrid/cache"
	"github.com/kasuganosora/lootgrid/game/holder"
	"go.uber.org/zap"
)

const defaultKeepalive = 30 * time.Second

// Handler serves the event stream endpoint.
type Handler struct {
	pubsub    cache.PubSub
	holders   *holder.Manager
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates an SSE Handler.
func NewHandler(pubsub cache.PubSub, holders *holder.Manager, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, holders: holders, keepalive: defaultKeepalive, logger: logger}
}

// ServeSSE handles GET /api/inventories/:owner/events.
// It sends the current layout as a "snapshot" event, then one event per
// inventory notification, named after the notification.
func (h *Handler) ServeSSE(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Param("owner"), 10, 64)
	if err != nil || ownerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
		return
	}
	snap, err := h.holders.Snapshot(c.Request.Context(), ownerID)
	if errors.Is(err, holder.ErrNotOpen) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, holder.ChannelFor(ownerID))
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	data, _ := json.Marshal(snap)
	fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", data)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			var ev holder.Event
			name := "message"
			if json.Unmarshal([]byte(msg.Payload), &ev) == nil && ev.Event != "" {
				name = ev.Event
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
