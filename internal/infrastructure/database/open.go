// Package database opens the key-value backend selected by configuration.
package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/infrastructure/database/bolt"
	"github.com/your-org/solar-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/solar-storefront/internal/infrastructure/kv"
)

// Backend is an opened key-value store. Redis is set only for the redis
// driver and is shared by the rate limiter and the event bridge.
type Backend struct {
	KV    kv.Store
	Redis *redis.Client

	close func() error
}

// OpenStore opens the backend named by cfg.Store.Driver
func OpenStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case "redis":
		client, err := redis.NewConnection(cfg, log)
		if err != nil {
			return nil, err
		}
		return &Backend{KV: client, Redis: client, close: client.Close}, nil

	case "bolt":
		client := bolt.NewClient(cfg.Store.BoltPath)
		if err := client.Open(ctx); err != nil {
			return nil, err
		}
		log.WithField("path", cfg.Store.BoltPath).Info("Bolt store opened")
		return &Backend{KV: client, close: client.Close}, nil

	case "memory":
		log.Warn("Using in-memory store, state is lost on restart")
		return &Backend{KV: kv.NewMemory(), close: func() error { return nil }}, nil
	}
	return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
}

// Health pings the backend when it has a remote connection
func (b *Backend) Health(ctx context.Context) error {
	if b.Redis == nil {
		return nil
	}
	return b.Redis.Redis.Ping(ctx).Err()
}

// Close releases the backend
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}
