// Command storectl inspects and administers the local storefront state
// without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/store"
	"github.com/your-org/solar-storefront/internal/infrastructure/database"
	"github.com/your-org/solar-storefront/internal/pkg/events"
	"github.com/your-org/solar-storefront/internal/pkg/logger"
)

func main() {
	cmd := newRootCommand(openStore)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the configured backend. Events published by the CLI are
// relayed to Redis so that running servers refresh their clients.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Logging)
	log.SetLevel(logrus.WarnLevel)

	backend, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	bus := events.NewBus("storectl-" + uuid.NewString())
	if backend.Redis != nil {
		backend.Redis.RelayEvents(bus, cfg.Store.EventsChannel, log)
	}

	st := store.New(backend.KV, bus, log, store.WithSessionTTL(cfg.Store.SessionTTL))
	return st, func() { _ = backend.Close() }, nil
}
