// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/solar-storefront/internal/interfaces/http/routes"
	"github.com/your-org/solar-storefront/internal/pkg/metrics"
)

// HealthCheck reports the health of one dependency
type HealthCheck func(ctx context.Context) error

// Options carry the optional pieces of the server
type Options struct {
	Redis    *redis.Client // rate limiting; nil disables it
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // served on /metrics; nil disables it
	Checks   map[string]HealthCheck
}

// Server represents the HTTP server
type Server struct {
	deps       *routes.Dependencies
	opts       Options
	log        *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates a new HTTP server instance with all routes registered
func NewServer(deps *routes.Dependencies, opts Options) *Server {
	s := &Server{
		deps:      deps,
		opts:      opts,
		log:       deps.Log,
		startedAt: time.Now(),
	}

	// Set Gin mode based on environment
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(deps.Config.Security.TrustedProxies); err != nil {
		s.log.WithError(err).Warn("Invalid trusted proxies, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + deps.Config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}
	return s
}

// Handler returns the router, for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.WithFields(logrus.Fields{
		"port":   s.deps.Config.Server.Port,
		"health": "/health",
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	cfg := s.deps.Config

	s.gin.Use(middleware.Recovery(s.log))
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.Metrics(s.opts.Metrics))
	s.gin.Use(middleware.CORS(cfg))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.BanCheck(s.deps.Store, s.log))
	s.gin.Use(middleware.RateLimit(cfg.Security.RateLimitPerMinute, s.opts.Redis, s.log))
	s.gin.Use(middleware.RequestSizeLimit(cfg.Security.RequestSizeLimitByte))
	s.gin.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	if s.opts.Gatherer != nil {
		s.gin.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	cfg := s.deps.Config
	s.gin.Static(cfg.Storage.PublicPath, cfg.Storage.LocalPath)

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, s.deps)

	s.gin.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     cfg.App.Name,
			"version":     cfg.App.Version,
			"environment": cfg.App.Environment,
			"health":      "/health",
			"endpoints": gin.H{
				"auth":     "/api/v1/auth",
				"products": "/api/v1/products",
				"cart":     "/api/v1/cart",
				"checkout": "/api/v1/checkout",
				"admin":    "/api/v1/admin",
			},
		})
	})
}

// healthCheck handles health check requests. Only the local store is
// required; an unhealthy optional backend degrades the status.
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if _, err := s.deps.Store.GetSettings(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "local store unavailable",
		})
		return
	}

	status := "healthy"
	components := gin.H{"store": "ok"}
	for name, check := range s.opts.Checks {
		if err := check(ctx); err != nil {
			components[name] = err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"components":  components,
		"timestamp":   time.Now().UTC(),
		"version":     s.deps.Config.App.Version,
		"environment": s.deps.Config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
