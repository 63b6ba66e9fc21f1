package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("GET", "/api/v1/products", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)
	m.NotificationSent("text", nil)
	m.NotificationSent("photo", errors.New("boom"))
	m.OrderPlaced("bank")
	m.Fallback("products")
	m.ReviewCreated()
	m.SetLiveSessions(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("photo", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orders.WithLabelValues("bank")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.liveSessions))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.NotificationSent("text", nil)
		m.OrderPlaced("crypto")
		m.Fallback("reviews")
		m.ReviewCreated()
		m.SetLiveSessions(1)
	})
}
