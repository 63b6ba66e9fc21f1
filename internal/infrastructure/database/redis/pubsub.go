package redis

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/pkg/events"
)

// RelayEvents forwards locally published events to a Redis channel
func (c *Client) RelayEvents(bus *events.Bus, channel string, log *logrus.Logger) {
	bus.SetRelay(func(ctx context.Context, evt events.Event) {
		payload, err := json.Marshal(evt)
		if err != nil {
			return
		}
		if err := c.Redis.Publish(ctx, channel, payload).Err(); err != nil {
			log.WithError(err).WithField("topic", evt.Topic).Warn("Failed to relay event to Redis")
		}
	})
}

// BridgeEvents relays local events to a Redis channel and delivers events
// published by other processes to the local bus. It blocks until ctx is
// cancelled.
func (c *Client) BridgeEvents(ctx context.Context, bus *events.Bus, channel string, log *logrus.Logger) {
	c.RelayEvents(bus, channel, log)

	sub := c.Redis.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.WithError(err).Warn("Dropping malformed event from Redis")
				continue
			}
			// Our own events were already delivered locally
			if evt.Origin == bus.Origin() {
				continue
			}
			bus.Deliver(evt)
		}
	}
}
