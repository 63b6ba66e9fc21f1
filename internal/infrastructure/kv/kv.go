// Package kv defines the durable key-value abstraction the local state
// store, guest carts and checkout flows are persisted in.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist or has expired
var ErrNotFound = errors.New("kv: key not found")

// Store is a flat key-value store holding opaque byte values.
// A zero ttl means the value never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
