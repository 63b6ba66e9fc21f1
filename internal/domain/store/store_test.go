package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/infrastructure/kv"
	"github.com/your-org/solar-storefront/internal/pkg/events"
	"github.com/your-org/solar-storefront/internal/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []events.Topic
}

func (r *recordingPublisher) Publish(_ context.Context, topic events.Topic) {
	r.mu.Lock()
	r.topics = append(r.topics, topic)
	r.mu.Unlock()
}

func (r *recordingPublisher) count(topic events.Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.topics {
		if t == topic {
			n++
		}
	}
	return n
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *kv.Memory, *recordingPublisher, *clock) {
	t.Helper()
	mem := kv.NewMemory()
	pub := &recordingPublisher{}
	clk := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return New(mem, pub, logger.Discard(), WithClock(clk.now)), mem, pub, clk
}

func TestListProducts_SeedsFallbackOnFirstRead(t *testing.T) {
	ctx := context.Background()
	s, mem, _, _ := newTestStore(t)

	_, err := mem.Get(ctx, KeyProducts)
	require.ErrorIs(t, err, kv.ErrNotFound)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(product.FallbackCatalog()))

	// the read persisted the seed
	_, err = mem.Get(ctx, KeyProducts)
	require.NoError(t, err)
}

func TestListProducts_EmptyStoredListIsNotReseeded(t *testing.T) {
	ctx := context.Background()
	s, mem, _, _ := newTestStore(t)
	require.NoError(t, mem.Set(ctx, KeyProducts, []byte("[]"), 0))

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSaveAndDeleteProduct_PublishesChange(t *testing.T) {
	ctx := context.Background()
	s, _, pub, clk := newTestStore(t)

	saved, err := s.SaveProduct(ctx, product.Product{ID: "new-panel", Name: "Panel 300W", Price: 9900, Status: product.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, clk.t, saved.CreatedAt)
	assert.Equal(t, 1, pub.count(events.ProductsChanged))

	clk.advance(time.Minute)
	updated, err := s.SaveProduct(ctx, product.Product{ID: "new-panel", Name: "Panel 310W", Price: 9900})
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clk.t, updated.UpdatedAt)

	got, err := s.GetProduct(ctx, "new-panel")
	require.NoError(t, err)
	assert.Equal(t, "Panel 310W", got.Name)

	require.NoError(t, s.DeleteProduct(ctx, "new-panel"))
	assert.Equal(t, 3, pub.count(events.ProductsChanged))

	_, err = s.GetProduct(ctx, "new-panel")
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, "new-panel"), product.ErrProductNotFound)
}

func TestOrders_NewestFirstAndStatusUpdate(t *testing.T) {
	ctx := context.Background()
	s, _, pub, clk := newTestStore(t)

	older := order.Order{ID: "ORD-1", Date: clk.t.Add(-time.Hour), Total: 100, Status: order.StatusPending}
	newer := order.Order{ID: "ORD-2", Date: clk.t, Total: 200, Status: order.StatusPending}
	require.NoError(t, s.AddOrder(ctx, older))
	require.NoError(t, s.AddOrder(ctx, newer))
	assert.Equal(t, 2, pub.count(events.OrdersChanged))

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-2", orders[0].ID)

	updated, err := s.UpdateOrderStatus(ctx, "ORD-1", order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, updated.Status)

	_, err = s.UpdateOrderStatus(ctx, "ORD-1", order.Status("lost"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = s.UpdateOrderStatus(ctx, "ORD-404", order.StatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHeartbeat_OneEntryPerIP(t *testing.T) {
	ctx := context.Background()
	s, _, _, clk := newTestStore(t)

	_, err := s.Heartbeat(ctx, "10.0.0.1", "", "", "mobile")
	require.NoError(t, err)
	clk.advance(time.Minute)
	_, err = s.Heartbeat(ctx, "10.0.0.2", "a@b.com", "Ann", "desktop")
	require.NoError(t, err)
	clk.advance(time.Minute)
	last, err := s.Heartbeat(ctx, "10.0.0.1", "z@b.com", "Zed", "mobile")
	require.NoError(t, err)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "10.0.0.1", sessions[0].IP)
	assert.Equal(t, last.LastSeen, sessions[0].LastSeen)
	assert.Equal(t, "z@b.com", sessions[0].Email)
}

func TestHeartbeat_PrunesStaleSessions(t *testing.T) {
	ctx := context.Background()
	s, _, _, clk := newTestStore(t)

	_, err := s.Heartbeat(ctx, "10.0.0.1", "", "", "")
	require.NoError(t, err)
	clk.advance(25 * time.Hour)
	_, err = s.Heartbeat(ctx, "10.0.0.2", "", "", "")
	require.NoError(t, err)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "10.0.0.2", sessions[0].IP)
}

func TestPruneSessions(t *testing.T) {
	ctx := context.Background()
	s, _, _, clk := newTestStore(t)

	removed, err := s.PruneSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = s.Heartbeat(ctx, "10.0.0.1", "", "", "")
	require.NoError(t, err)
	clk.advance(24*time.Hour + time.Second)

	removed, err = s.PruneSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestBan_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, _, _, _ := newTestStore(t)

	require.NoError(t, s.Ban(ctx, "1.2.3.4"))
	require.NoError(t, s.Ban(ctx, " 1.2.3.4 "))

	bans, err := s.ListBanned(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.3.4"}, bans)

	banned, err := s.IsBanned(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, banned)

	banned, err = s.IsBanned(ctx, "\t1.2.3.4 ")
	require.NoError(t, err)
	assert.True(t, banned)

	require.NoError(t, s.Unban(ctx, " 1.2.3.4"))
	banned, err = s.IsBanned(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestSettings_DefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	s, _, pub, _ := newTestStore(t)

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)

	settings.WhatsAppNumber = "+15550100"
	require.NoError(t, s.SaveSettings(ctx, settings))
	assert.Equal(t, 1, pub.count(events.SettingsChanged))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "+15550100", got.WhatsAppNumber)
}

func TestHeartbeat_KeepsRecentDropsExpired(t *testing.T) {
	ctx := context.Background()
	s, _, _, clk := newTestStore(t)

	start := clk.t
	_, err := s.Heartbeat(ctx, "10.0.0.25", "", "", "")
	require.NoError(t, err)
	clk.advance(2 * time.Hour)
	_, err = s.Heartbeat(ctx, "10.0.0.23", "", "", "")
	require.NoError(t, err)

	// 25h after the first entry and 23h after the second
	clk.t = start.Add(25 * time.Hour)
	_, err = s.Heartbeat(ctx, "10.0.0.99", "", "", "")
	require.NoError(t, err)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	ips := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ips = append(ips, sess.IP)
	}
	assert.ElementsMatch(t, []string{"10.0.0.23", "10.0.0.99"}, ips)
}
