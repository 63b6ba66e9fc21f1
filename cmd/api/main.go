// cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/analytics"
	"github.com/your-org/solar-storefront/internal/domain/assistant"
	"github.com/your-org/solar-storefront/internal/domain/cart"
	"github.com/your-org/solar-storefront/internal/domain/checkout"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/domain/store"
	"github.com/your-org/solar-storefront/internal/domain/upload"
	"github.com/your-org/solar-storefront/internal/domain/user"
	"github.com/your-org/solar-storefront/internal/infrastructure/database"
	"github.com/your-org/solar-storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/solar-storefront/internal/interfaces/http"
	"github.com/your-org/solar-storefront/internal/interfaces/http/routes"
	"github.com/your-org/solar-storefront/internal/pkg/auth"
	"github.com/your-org/solar-storefront/internal/pkg/events"
	"github.com/your-org/solar-storefront/internal/pkg/logger"
	"github.com/your-org/solar-storefront/internal/pkg/metrics"
	"github.com/your-org/solar-storefront/internal/pkg/notify"
	"github.com/your-org/solar-storefront/internal/pkg/pdf"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg.Logging)
	logr.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"store":       cfg.Store.Driver,
	}).Infof("Starting %s", cfg.App.Name)

	if err := run(cfg, logr); err != nil {
		logr.WithError(err).Fatal("Server stopped with error")
	}
	logr.Info("Server shutdown completed")
}

func run(cfg *config.Config, logr *logrus.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local state store
	backend, err := database.OpenStore(ctx, cfg, logr)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer backend.Close()

	checks := map[string]http.HealthCheck{}

	// Relational backend is optional; without it the storefront runs on the
	// local store and the fallback catalog.
	var db *gorm.DB
	if cfg.HasBackend() {
		conn, err := postgres.NewConnection(cfg, logr)
		if err != nil {
			logr.WithError(err).Warn("Backend unavailable, continuing with local store only")
		} else {
			defer conn.Close()
			db = conn.GetDB()
			checks["database"] = func(context.Context) error { return conn.Health() }
			migrate(cfg, db, logr)
		}
	}

	bus := events.NewBus(uuid.NewString())
	redisClient := backend.Redis
	if redisClient != nil {
		checks["redis"] = backend.Health
		go redisClient.BridgeEvents(ctx, bus, cfg.Store.EventsChannel, logr)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st := store.New(backend.KV, bus, logr, store.WithSessionTTL(cfg.Store.SessionTTL))
	catalog := product.NewCatalog(db, st, logr, m)
	uploads := upload.NewService(cfg)
	fanout := notify.NewFanout(cfg.Telegram, logr, m)
	users := user.NewService(db, cfg, logr)
	carts := cart.NewService(backend.KV, catalog, cfg)
	limiter := assistant.NewLimiter(cfg.Security.AssistantRatePerMin, cfg.Security.AssistantBurst)

	deps := &routes.Dependencies{
		Config:    cfg,
		Log:       logr,
		JWT:       auth.NewJWTManager(cfg),
		Store:     st,
		Bus:       bus,
		Catalog:   catalog,
		Reviews:   product.NewReviewService(db, catalog, users, uploads, fanout, logr, m),
		Users:     users,
		UserAdmin: user.NewAdminService(db),
		Carts:     carts,
		Checkout:  checkout.NewService(backend.KV, carts, st, uploads, fanout, m, logr, cfg),
		Uploads:   uploads,
		Analytics: analytics.NewService(st),
		Assistant: assistant.NewService(catalog, limiter, cfg.Invoice.Currency, logr),
		PDF:       pdf.NewService(cfg.Invoice),
	}

	opts := http.Options{Metrics: m, Gatherer: reg, Checks: checks}
	if redisClient != nil {
		opts.Redis = redisClient.GetClient()
	}
	server := http.NewServer(deps, opts)

	go janitor(ctx, cfg.Store.JanitorEvery, st, limiter, m, logr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-quit:
		logr.WithField("signal", sig.String()).Info("Shutting down gracefully")
	}

	// Stop background work before draining requests
	cancel()

	// Give server 30 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logr.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	// Let in-flight notifications finish
	fanout.Wait()
	return nil
}

func migrate(cfg *config.Config, db *gorm.DB, logr *logrus.Logger) {
	migration := postgres.NewMigration(db, logr)

	if err := migration.RunAutoMigrations(); err != nil {
		logr.WithError(err).Error("Database migration failed")
		return
	}

	created, failed := migration.CreateIndexes()
	logr.WithFields(logrus.Fields{"created": created, "failed": failed}).Info("Database indexes checked")

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			logr.WithError(err).Warn("Data seeding failed")
		}
	}
}

// janitor prunes expired visitor sessions and idle assistant limiters until
// ctx is cancelled.
func janitor(ctx context.Context, every time.Duration, st *store.Store, limiter *assistant.Limiter, m *metrics.Metrics, logr *logrus.Logger) {
	if every <= 0 {
		every = 10 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := st.PruneSessions(ctx)
			if err != nil {
				logr.WithError(err).Warn("Session prune failed")
				continue
			}
			if sessions, err := st.ListSessions(ctx); err == nil {
				m.SetLiveSessions(len(sessions))
			}
			forgotten := limiter.Prune(time.Hour)
			if removed > 0 || forgotten > 0 {
				logr.WithFields(logrus.Fields{
					"sessions": removed,
					"limiters": forgotten,
				}).Debug("Janitor pruned idle state")
			}
		}
	}
}
