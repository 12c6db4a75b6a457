package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
	"github.com/gin-gonic/gin"
)

const (
	streamBuffer    = 64
	streamKeepAlive = 25 * time.Second
)

// EventStreamHandler pushes bus events to a connected admin over server-sent events.
type EventStreamHandler struct {
	bus       *events.Bus
	keepAlive time.Duration
}

func NewEventStreamHandler(bus *events.Bus) *EventStreamHandler {
	return &EventStreamHandler{bus: bus, keepAlive: streamKeepAlive}
}

func (h *EventStreamHandler) Stream(c *gin.Context) {
	ch := make(chan domain.Event, streamBuffer)
	subs := make([]*events.Subscription, 0, len(domain.EventKinds))
	for _, kind := range domain.EventKinds {
		subs = append(subs, h.bus.Subscribe(kind, "sse", func(_ context.Context, event domain.Event) error {
			select {
			case ch <- event:
			default:
				// slow client, drop
				slog.Warn("event stream buffer full, dropping event", "kind", event.Kind)
			}
			return nil
		}))
	}
	defer func() {
		for _, sub := range subs {
			h.bus.Unsubscribe(sub)
		}
	}()

	// the server write timeout would cut the stream
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			c.SSEvent(string(event.Kind), event)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}
