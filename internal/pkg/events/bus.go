// Package events carries the process-wide "something changed" signals that
// let independently rendered views know they must re-fetch.
package events

import (
	"context"
	"sync"
	"time"
)

// Topic names a change signal
type Topic string

const (
	ProductsChanged Topic = "products_changed"
	OrdersChanged   Topic = "orders_changed"
	SettingsChanged Topic = "settings_changed"
)

// Event is a change notification; it carries no payload beyond the topic,
// subscribers re-read the collection themselves.
type Event struct {
	Topic  Topic     `json:"topic"`
	At     time.Time `json:"at"`
	Origin string    `json:"origin,omitempty"`
}

// Publisher broadcasts change events
type Publisher interface {
	Publish(ctx context.Context, topic Topic)
}

// Bus is an in-process fan-out of events to subscribers. Slow subscribers
// miss events instead of blocking publishers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	origin string
	relay  func(ctx context.Context, evt Event)
}

// NewBus creates an empty bus. origin tags events published from this process.
func NewBus(origin string) *Bus {
	return &Bus{
		subs:   make(map[int]chan Event),
		origin: origin,
	}
}

// SetRelay installs a hook called for every locally published event, used to
// forward events to other processes.
func (b *Bus) SetRelay(relay func(ctx context.Context, evt Event)) {
	b.mu.Lock()
	b.relay = relay
	b.mu.Unlock()
}

// Publish delivers topic to every local subscriber and to the relay
func (b *Bus) Publish(ctx context.Context, topic Topic) {
	evt := Event{Topic: topic, At: time.Now().UTC(), Origin: b.origin}
	b.Deliver(evt)

	b.mu.RLock()
	relay := b.relay
	b.mu.RUnlock()
	if relay != nil {
		relay(ctx, evt)
	}
}

// Deliver hands evt to local subscribers only
func (b *Bus) Deliver(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe returns a channel of events and a function that cancels the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Origin returns the origin tag of this bus
func (b *Bus) Origin() string {
	return b.origin
}
