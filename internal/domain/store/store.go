// Package store is the local state store: products, orders, settings,
// sessions and the ban list, each kept as one JSON document under a fixed
// key of a kv.Store.
//
// There are no transactions and no locking. Two writers doing
// read-modify-write on the same collection race and the last writer wins.
// This is accepted at storefront scale; do not rely on the store for
// anything that needs stronger guarantees.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/infrastructure/kv"
	"github.com/your-org/solar-storefront/internal/pkg/events"
)

// Collection keys
const (
	KeyProducts = "solar_products"
	KeyOrders   = "solar_orders"
	KeySettings = "solar_settings"
	KeySessions = "solar_sessions"
	KeyBans     = "solar_banned_ips"
)

// DefaultSessionTTL is how long a session survives without a heartbeat
const DefaultSessionTTL = 24 * time.Hour

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// Store is the local state store facade
type Store struct {
	kv         kv.Store
	bus        events.Publisher
	log        *logrus.Logger
	now        func() time.Time
	sessionTTL time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSessionTTL overrides the session inactivity window
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// New creates a store over kvStore publishing change signals on bus
func New(kvStore kv.Store, bus events.Publisher, log *logrus.Logger, opts ...Option) *Store {
	s := &Store{
		kv:         kvStore,
		bus:        bus,
		log:        log,
		now:        time.Now,
		sessionTTL: DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time in UTC
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// load decodes the collection stored under key into dest. A missing key
// leaves dest untouched and reports found=false.
func (s *Store) load(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw, 0); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) publish(ctx context.Context, topic events.Topic) {
	if s.bus != nil {
		s.bus.Publish(ctx, topic)
	}
}
