package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus("node-a")
	first, cancelFirst := bus.Subscribe()
	second, cancelSecond := bus.Subscribe()
	defer cancelSecond()

	var relayed []Event
	bus.SetRelay(func(_ context.Context, evt Event) { relayed = append(relayed, evt) })

	bus.Publish(context.Background(), ProductsChanged)

	for _, ch := range []<-chan Event{first, second} {
		select {
		case evt := <-ch:
			assert.Equal(t, ProductsChanged, evt.Topic)
			assert.Equal(t, "node-a", evt.Origin)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
	require.Len(t, relayed, 1)

	cancelFirst()
	cancelFirst() // idempotent
	_, open := <-first
	assert.False(t, open)
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus("node-a")
	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(context.Background(), OrdersChanged)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
}
