// Package metrics holds the Prometheus collectors of the storefront.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Metrics groups the storefront collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	orders        *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	reviews       prometheus.Counter
	liveSessions  prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),

		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request latencies",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 8),
		}, []string{"method", "route"}),

		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sends_total",
			Help:      "Number of notification sends per recipient attempt",
		}, []string{"kind", "result"}),

		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_total",
			Help:      "Number of completed checkouts by payment method",
		}, []string{"payment_method"}),

		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "fallbacks_total",
			Help:      "Number of backend reads served from a local fallback",
		}, []string{"source"}),

		reviews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reviews",
			Name:      "created_total",
			Help:      "Number of reviews created",
		}),

		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "live",
			Help:      "Number of live visitor sessions at the last heartbeat or prune",
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDurations,
		m.notifications,
		m.orders,
		m.fallbacks,
		m.reviews,
		m.liveSessions,
	)
	return m
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, code int, took time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDurations.WithLabelValues(method, route).Observe(took.Seconds())
}

// NotificationSent records the outcome of one recipient send
func (m *Metrics) NotificationSent(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

// OrderPlaced counts a completed checkout
func (m *Metrics) OrderPlaced(paymentMethod string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(paymentMethod).Inc()
}

// Fallback counts a read served from the local store or an empty default
func (m *Metrics) Fallback(source string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(source).Inc()
}

// ReviewCreated counts a created review
func (m *Metrics) ReviewCreated() {
	if m == nil {
		return
	}
	m.reviews.Inc()
}

// SetLiveSessions sets the live session gauge
func (m *Metrics) SetLiveSessions(n int) {
	if m == nil {
		return
	}
	m.liveSessions.Set(float64(n))
}
