package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/solar-storefront/internal/pkg/events"
)

// EventsHandler streams change signals as server-sent events
type EventsHandler struct {
	bus       *events.Bus
	heartbeat time.Duration
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus *events.Bus, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &EventsHandler{bus: bus, heartbeat: heartbeat}
}

// ProductEvents handles GET /products/events
func (h *EventsHandler) ProductEvents(c *gin.Context) {
	h.stream(c, events.ProductsChanged)
}

// AdminEvents handles GET /admin/events, every topic
func (h *EventsHandler) AdminEvents(c *gin.Context) {
	h.stream(c)
}

func (h *EventsHandler) stream(c *gin.Context, topics ...events.Topic) {
	wanted := make(map[events.Topic]bool, len(topics))
	for _, t := range topics {
		wanted[t] = true
	}

	ch, cancel := h.bus.Subscribe()
	defer cancel()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"at": time.Now().UTC()})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			if len(wanted) == 0 || wanted[evt.Topic] {
				c.SSEvent(string(evt.Topic), evt)
			}
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
