package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/cart"
	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/store"
	"github.com/your-org/solar-storefront/internal/domain/upload"
	"github.com/your-org/solar-storefront/internal/infrastructure/kv"
	"github.com/your-org/solar-storefront/internal/pkg/logger"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
}

type recordingNotifier struct {
	mu     sync.Mutex
	texts  []string
	photos []string
}

func (r *recordingNotifier) SendText(_ context.Context, text string) {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
}

func (r *recordingNotifier) SendPhoto(_ context.Context, _ string, caption string) {
	r.mu.Lock()
	r.photos = append(r.photos, caption)
	r.mu.Unlock()
}

// flakyOrders fails the first AddOrder call
type flakyOrders struct {
	*store.Store
	failed bool
}

func (o *flakyOrders) AddOrder(ctx context.Context, placed order.Order) error {
	if !o.failed {
		o.failed = true
		return errors.New("kv write failed")
	}
	return o.Store.AddOrder(ctx, placed)
}

type fixture struct {
	svc      *Service
	store    *store.Store
	carts    *cart.Service
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := kv.NewMemory()
	log := logger.Discard()
	cfg := &config.Config{
		App:     config.AppConfig{PublicURL: "http://localhost:8080"},
		Storage: config.StorageConfig{LocalPath: t.TempDir(), PublicPath: "/uploads"},
		Upload:  config.UploadConfig{MaxSize: 1 << 20, AllowedMIMETypes: []string{"image/png"}},
		Invoice: config.InvoiceConfig{Currency: "USD"},
	}

	st := store.New(mem, nil, log)
	carts := cart.NewService(mem, st, cfg)
	notifier := &recordingNotifier{}
	svc := NewService(mem, carts, st, upload.NewService(cfg), notifier, nil, log, cfg)
	return &fixture{svc: svc, store: st, carts: carts, notifier: notifier}
}

var shipping = order.ShippingInfo{
	FullName: "Ada Obi",
	Phone:    "+234 800 000 0000",
	Address:  "1 Sun Street",
	City:     "Lagos",
}

func (f *fixture) startWithCart(t *testing.T, ctx context.Context) *Flow {
	t.Helper()
	_, err := f.carts.AddItem(ctx, "sess-1", &cart.AddToCartRequest{ProductID: "battery-lifepo4-12-100", Quantity: 2})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "sess-1", &cart.AddToCartRequest{ProductID: "inverter-offgrid-2k"})
	require.NoError(t, err)

	flow, err := f.svc.Start(ctx, StartRequest{SessionID: "sess-1", UserID: "user-1", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, StateShipping, flow.State)
	return flow
}

func TestStart_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), StartRequest{SessionID: "nobody"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitShipping_ValidationLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	flow := f.startWithCart(t, ctx)

	_, err := f.svc.SubmitShipping(ctx, flow.ID, order.ShippingInfo{FullName: "Ada"})
	var verr *order.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "city")

	got, err := f.svc.Get(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, StateShipping, got.State)
	assert.Nil(t, got.Shipping)
}

func TestBankFlow_ProofRequiredBeforeOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	flow := f.startWithCart(t, ctx)

	_, err := f.svc.SubmitShipping(ctx, flow.ID, shipping)
	require.NoError(t, err)

	selected, instructions, err := f.svc.SelectPayment(ctx, flow.ID, order.PaymentBank)
	require.NoError(t, err)
	assert.Equal(t, StateProcessingBank, selected.State)
	require.NotNil(t, instructions)
	assert.Equal(t, int64(2*32900+34900), instructions.Amount)

	_, err = f.svc.Confirm(ctx, flow.ID)
	assert.ErrorIs(t, err, ErrProofRequired)

	orders, err := f.store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.notifier.photos)

	_, err = f.svc.AttachProof(ctx, flow.ID, upload.EncodeDataURI("image/png", pngBytes))
	require.NoError(t, err)

	result, err := f.svc.Confirm(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, result.Flow.State)
	assert.Equal(t, result.Order.ID, result.Flow.OrderID)
	assert.Equal(t, order.StatusPending, result.Order.Status)
	assert.Equal(t, "user-1", result.Order.UserID)
	assert.Contains(t, result.Order.CompatibilityWarning, "12V and 24V")
	assert.True(t, strings.HasPrefix(result.Order.ProofURL, "http://localhost:8080/uploads/proofs/"))

	orders, err = f.store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(2*32900+34900), orders[0].Total)

	require.Len(t, f.notifier.photos, 1)
	assert.Contains(t, f.notifier.photos[0], result.Order.ID)

	c, err := f.carts.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCryptoFlow_CannotSkipSteps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	flow := f.startWithCart(t, ctx)

	_, _, err := f.svc.SelectPayment(ctx, flow.ID, order.PaymentCrypto)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.AttachProof(ctx, flow.ID, upload.EncodeDataURI("image/png", pngBytes))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.Confirm(ctx, flow.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.SubmitShipping(ctx, flow.ID, shipping)
	require.NoError(t, err)
	_, _, err = f.svc.SelectPayment(ctx, flow.ID, order.PaymentMethod("cash"))
	assert.ErrorIs(t, err, ErrInvalidPayment)

	selected, _, err := f.svc.SelectPayment(ctx, flow.ID, order.PaymentCrypto)
	require.NoError(t, err)
	assert.Equal(t, StateProcessingCrypto, selected.State)

	_, err = f.svc.AttachProof(ctx, flow.ID, "data:text/plain;base64,aGVsbG8=")
	assert.ErrorIs(t, err, upload.ErrUnsupportedType)
	_, err = f.svc.Confirm(ctx, flow.ID)
	assert.ErrorIs(t, err, ErrProofRequired)
}

func TestWhatsAppHandoff_WritesNoOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	flow := f.startWithCart(t, ctx)

	_, err := f.svc.SubmitShipping(ctx, flow.ID, shipping)
	require.NoError(t, err)

	_, err = f.svc.WhatsAppHandoff(ctx, flow.ID)
	assert.ErrorIs(t, err, ErrWhatsAppDisabled)

	settings := store.DefaultSettings()
	settings.WhatsAppNumber = "+1 (555) 010-0200"
	require.NoError(t, f.store.SaveSettings(ctx, settings))

	_, instructions, err := f.svc.SelectPayment(ctx, flow.ID, order.PaymentWhatsApp)
	require.NoError(t, err)
	assert.Nil(t, instructions)

	done, err := f.svc.WhatsAppHandoff(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, done.State)

	u, err := url.Parse(done.WhatsAppURL)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/15550100200", u.Path)
	assert.Contains(t, u.Query().Get("text"), "LiFePO4 Battery 12V 100Ah x2")

	orders, err := f.store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	c, err := f.carts.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = f.svc.WhatsAppHandoff(ctx, flow.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirm_OrderWriteFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.orders = &flakyOrders{Store: f.store}
	flow := f.startWithCart(t, ctx)

	_, err := f.svc.SubmitShipping(ctx, flow.ID, shipping)
	require.NoError(t, err)
	_, _, err = f.svc.SelectPayment(ctx, flow.ID, order.PaymentCrypto)
	require.NoError(t, err)
	_, err = f.svc.AttachProof(ctx, flow.ID, upload.EncodeDataURI("image/png", pngBytes))
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, flow.ID)
	require.Error(t, err)

	got, err := f.svc.Get(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, StateProcessingCrypto, got.State)
	orders, err := f.store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	c, err := f.carts.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())

	result, err := f.svc.Confirm(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, result.Flow.State)
	orders, err = f.store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestGet_UnknownFlow(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFlowNotFound)
}
