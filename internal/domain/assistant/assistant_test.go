package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/pkg/logger"
)

type staticCatalog []product.Product

func (c staticCatalog) List(_ context.Context, _ *product.ProductListRequest) []product.Product {
	return c
}

func newTestService(limiter *Limiter) *Service {
	return NewService(staticCatalog(product.FallbackCatalog()), limiter, "USD", logger.Discard())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"Hello there", IntentGreeting},
		{"Is this inverter compatible with my 12V battery?", IntentCompatibility},
		{"Which lithium battery should I buy", IntentBatteries},
		{"I need a 450w panel", IntentPanels},
		{"hybrid or off-grid?", IntentInverters},
		{"what mppt do you sell", IntentControllers},
		{"Can I pay with USDT", IntentPayment},
		{"How long is delivery", IntentShipping},
		{"how much is the cheapest kit", IntentPrice},
		{"this is something else", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

func TestClassify_MatchesWholeWords(t *testing.T) {
	// "this" contains "hi" but is not a greeting
	assert.Equal(t, IntentUnknown, Classify("this"))
}

func TestReply_CategorySuggestionsAreCapped(t *testing.T) {
	svc := newTestService(nil)

	resp, err := svc.Reply(context.Background(), "1.1.1.1", &ChatRequest{Message: "show me batteries"})
	require.NoError(t, err)
	assert.Equal(t, IntentBatteries, resp.Intent)
	require.Len(t, resp.Suggestions, 2)
	for _, p := range resp.Suggestions {
		assert.Equal(t, "batteries", p.Category)
	}

	resp, err = svc.Reply(context.Background(), "1.1.1.1", &ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Len(t, resp.Suggestions, MaxSuggestions)
	assert.Equal(t, "panel-mono-450", resp.Suggestions[0].ID, "discounted products come first")
}

func TestReply_CompatibilitySuggestsMatchingVoltage(t *testing.T) {
	resp, err := newTestService(nil).Reply(context.Background(), "1.1.1.1",
		&ChatRequest{Message: "what works with a 24V system?"})
	require.NoError(t, err)
	assert.Equal(t, IntentCompatibility, resp.Intent)
	require.NotEmpty(t, resp.Suggestions)

	ids := make([]string, 0, len(resp.Suggestions))
	for _, p := range resp.Suggestions {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "inverter-offgrid-2k")
	assert.NotContains(t, ids, "battery-lifepo4-12-100")
}

func TestReply_PriceMentionsCheapest(t *testing.T) {
	resp, err := newTestService(nil).Reply(context.Background(), "1.1.1.1", &ChatRequest{Message: "cheapest?"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "cable-kit-pv", resp.Suggestions[0].ID)
	assert.Contains(t, resp.Reply, "USD 39.00")
}

func TestReply_EmptyMessage(t *testing.T) {
	_, err := newTestService(nil).Reply(context.Background(), "1.1.1.1", &ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestReply_RateLimitedPerIP(t *testing.T) {
	limiter := NewLimiter(1, 2)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }
	svc := newTestService(limiter)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Reply(ctx, "1.1.1.1", &ChatRequest{Message: "hi"})
		require.NoError(t, err)
	}
	_, err := svc.Reply(ctx, "1.1.1.1", &ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrRateLimited)

	// another client has its own bucket
	_, err = svc.Reply(ctx, "2.2.2.2", &ChatRequest{Message: "hi"})
	assert.NoError(t, err)
}

func TestLimiter_Prune(t *testing.T) {
	limiter := NewLimiter(10, 1)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.Allow("a")
	current = current.Add(2 * time.Minute)
	limiter.Allow("b")
	current = current.Add(2 * time.Minute)

	assert.Equal(t, 1, limiter.Prune(3*time.Minute))
	assert.Len(t, limiter.visitors, 1)
}
