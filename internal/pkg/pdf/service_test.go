package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/order"
)

func TestRenderHTML(t *testing.T) {
	svc := NewService(config.InvoiceConfig{
		CompanyName:  "Sunrise Solar",
		CompanyEmail: "sales@example.com",
		Currency:     "USD",
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }

	o := &order.Order{
		ID:            "ORD-20260301-ABC123",
		Date:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Status:        order.StatusPending,
		PaymentMethod: order.PaymentBank,
		Total:         124900 + 2*3900,
		Items: []order.Item{
			{ProductID: "battery-lifepo4-48-100", Name: "LiFePO4 Rack Battery 48V 100Ah", Price: 124900, Quantity: 1},
			{ProductID: "cable-kit-pv", Name: "PV Cable <Kit>", Price: 3900, Quantity: 2},
		},
		Shipping: order.ShippingInfo{FullName: "Ada Obi", Phone: "+234 800", Address: "1 Sun St", City: "Lagos"},
		CompatibilityWarning: "Your cart mixes 12V and 48V equipment.",
	}

	html, err := svc.RenderHTML(o)
	require.NoError(t, err)

	assert.Contains(t, html, "INV-20260301-ABC123")
	assert.Contains(t, html, "March 2, 2026")
	assert.Contains(t, html, "Sunrise Solar")
	assert.Contains(t, html, "USD 1,249.00")
	assert.Contains(t, html, "USD 78.00")
	assert.Contains(t, html, "USD 1,327.00")
	assert.Contains(t, html, "3 item(s)")
	assert.Contains(t, html, "Bank")
	assert.Contains(t, html, "Your cart mixes 12V and 48V equipment.")
	assert.Contains(t, html, "PV Cable &lt;Kit&gt;", "item names are escaped")
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-20260301-ABC123", InvoiceNumber(&order.Order{ID: "ORD-20260301-ABC123"}))
	assert.Equal(t, "INV-legacy", InvoiceNumber(&order.Order{ID: "legacy"}))
}
