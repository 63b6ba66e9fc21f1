package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/infrastructure/kv"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func item(id string, price int64, description string) product.Product {
	return product.Product{ID: id, Name: id, Price: price, Description: description, Status: product.StatusActive}
}

func TestCart_TotalAndCount(t *testing.T) {
	var c Cart
	c.Add(item("a", 1000, ""), 2, now)
	c.Add(item("b", 250, ""), 1, now)
	c.Add(item("a", 1000, ""), 1, now)

	require.Len(t, c.Items, 2)
	assert.Equal(t, int64(3*1000+250), c.Total())
	assert.Equal(t, 4, c.Count())
}

func TestCart_IncrementNeverDecreasesTotal(t *testing.T) {
	var c Cart
	c.Add(item("a", 1000, ""), 1, now)
	c.Add(item("free", 0, ""), 1, now)

	for _, id := range []string{"a", "free"} {
		before := c.Total()
		require.NoError(t, c.Increment(id))
		assert.GreaterOrEqual(t, c.Total(), before)
	}
	assert.ErrorIs(t, c.Increment("missing"), ErrItemNotFound)
}

func TestCart_DecrementFloorsAtOne(t *testing.T) {
	var c Cart
	c.Add(item("a", 1000, ""), 2, now)

	require.NoError(t, c.Decrement("a"))
	require.NoError(t, c.Decrement("a"))
	require.NoError(t, c.Decrement("a"))
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestCart_RemoveExactlyOneID(t *testing.T) {
	var c Cart
	c.Add(item("a", 1, ""), 1, now)
	c.Add(item("b", 1, ""), 1, now)
	c.Add(item("c", 1, ""), 1, now)

	require.NoError(t, c.Remove("b"))
	ids := []string{}
	for _, line := range c.Items {
		ids = append(ids, line.Product.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
	assert.ErrorIs(t, c.Remove("b"), ErrItemNotFound)
}

func TestVoltages(t *testing.T) {
	items := []Line{
		{Product: product.Product{Name: "Battery 12V 100Ah", Description: "for 12v systems"}, Quantity: 1},
		{Product: product.Product{Name: "Inverter", Description: "48V input, 230 VAC out"}, Quantity: 1},
	}
	assert.Equal(t, []int{12, 48}, Voltages(items))
}

func TestCompatibilityWarning(t *testing.T) {
	tests := []struct {
		name         string
		descriptions []string
		want         string
	}{
		{"12 and 24", []string{"12V battery", "24V inverter"}, "12V and 24V"},
		{"only 24", []string{"24V battery", "24V inverter"}, ""},
		{"12 and 48", []string{"12V battery", "48V inverter"}, "12V and 48V"},
		{"first pair wins", []string{"12V", "24V", "48V"}, "12V and 24V"},
		{"24 and 48", []string{"24V", "48V"}, "24V and 48V"},
		{"no voltages", []string{"cable kit"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []Line
			for i, d := range tt.descriptions {
				lines = append(lines, Line{Product: item(string(rune('a'+i)), 1, d), Quantity: 1})
			}
			warning, ok := CompatibilityWarning(lines)
			if tt.want == "" {
				assert.False(t, ok)
				assert.Empty(t, warning)
				return
			}
			assert.True(t, ok)
			assert.Contains(t, warning, tt.want)
		})
	}
}

type lookup map[string]product.Product

func (l lookup) GetProduct(_ context.Context, id string) (*product.Product, error) {
	p, ok := l[id]
	if !ok {
		return nil, ErrProductUnavailable
	}
	return &p, nil
}

func TestService_GuestCartRoundTrip(t *testing.T) {
	ctx := context.Background()
	products := lookup{
		"battery":  item("battery", 32900, "12V LiFePO4"),
		"inverter": item("inverter", 34900, "24V pure sine"),
		"hidden":   {ID: "hidden", Price: 1, Status: product.StatusHidden},
	}
	svc := NewService(kv.NewMemory(), products, nil)

	_, err := svc.AddItem(ctx, "s1", &AddToCartRequest{ProductID: "hidden"})
	assert.ErrorIs(t, err, ErrProductUnavailable)
	_, err = svc.AddItem(ctx, "s1", &AddToCartRequest{ProductID: "battery", Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, "s1", &AddToCartRequest{ProductID: "battery"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "s1", &AddToCartRequest{ProductID: "inverter", Quantity: 2})
	require.NoError(t, err)
	c, err := svc.DecrementItem(ctx, "s1", "battery")
	require.NoError(t, err)

	resp := NewResponse(c)
	assert.Equal(t, int64(32900+2*34900), resp.Totals.TotalAmount)
	assert.Equal(t, 3, resp.Totals.TotalQuantity)
	assert.Contains(t, resp.CompatibilityWarning, "12V and 24V")

	// other sessions are isolated
	other, err := svc.GetCart(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())

	require.NoError(t, svc.ClearCart(ctx, "s1"))
	c, err = svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
