// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/cart"
	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/store"
	"github.com/your-org/solar-storefront/internal/domain/upload"
	"github.com/your-org/solar-storefront/internal/infrastructure/kv"
	"github.com/your-org/solar-storefront/internal/pkg/metrics"
	"github.com/your-org/solar-storefront/internal/pkg/notify"
)

// CartSource gives checkout access to the session cart
type CartSource interface {
	GetCart(ctx context.Context, sessionID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// OrderStore persists orders and reads storefront settings
type OrderStore interface {
	AddOrder(ctx context.Context, o order.Order) error
	GetSettings(ctx context.Context) (store.Settings, error)
}

// ProofStore saves payment proof images
type ProofStore interface {
	SaveDataURI(ctx context.Context, category, uri string) (*upload.StoredFile, error)
}

// Service drives the checkout state machine
type Service struct {
	kv       kv.Store
	carts    CartSource
	orders   OrderStore
	proofs   ProofStore
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *logrus.Logger
	ttl      time.Duration
	currency string
	now      func() time.Time
}

// NewService creates a new checkout service
func NewService(
	kvStore kv.Store,
	carts CartSource,
	orders OrderStore,
	proofs ProofStore,
	notifier notify.Notifier,
	m *metrics.Metrics,
	log *logrus.Logger,
	cfg *config.Config,
) *Service {
	ttl := 2 * time.Hour
	currency := "USD"
	if cfg != nil {
		if cfg.Store.CheckoutTTL > 0 {
			ttl = cfg.Store.CheckoutTTL
		}
		if cfg.Invoice.Currency != "" {
			currency = cfg.Invoice.Currency
		}
	}
	return &Service{
		kv:       kvStore,
		carts:    carts,
		orders:   orders,
		proofs:   proofs,
		notifier: notifier,
		metrics:  m,
		log:      log,
		ttl:      ttl,
		currency: currency,
		now:      time.Now,
	}
}

// StartRequest identifies who is checking out
type StartRequest struct {
	SessionID string
	UserID    string
	Email     string
}

// ConfirmResult is returned by a successful Confirm
type ConfirmResult struct {
	Flow  *Flow        `json:"checkout"`
	Order *order.Order `json:"order"`
}

// Start opens a checkout for the session's cart
func (s *Service) Start(ctx context.Context, req StartRequest) (*Flow, error) {
	c, err := s.carts.GetCart(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := s.now().UTC()
	flow := &storedFlow{Flow: Flow{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Email:     req.Email,
		State:     StateShipping,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	if err := s.save(ctx, flow); err != nil {
		return nil, err
	}
	return &flow.Flow, nil
}

// Get returns a checkout flow
func (s *Service) Get(ctx context.Context, id string) (*Flow, error) {
	flow, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &flow.Flow, nil
}

// SubmitShipping validates and records the delivery details. A validation
// failure leaves the flow unchanged.
func (s *Service) SubmitShipping(ctx context.Context, id string, info order.ShippingInfo) (*Flow, error) {
	flow, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if flow.State != StateShipping && flow.State != StatePaymentSelection {
		return nil, ErrInvalidTransition
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	info.FullName = strings.TrimSpace(info.FullName)
	info.Phone = strings.TrimSpace(info.Phone)
	flow.Shipping = &info
	flow.State = StatePaymentSelection
	if err := s.save(ctx, flow); err != nil {
		return nil, err
	}
	return &flow.Flow, nil
}

// SelectPayment picks the payment method. Bank and crypto move the flow to
// their processing step; WhatsApp stays at payment selection until the
// handoff is invoked.
func (s *Service) SelectPayment(ctx context.Context, id string, method order.PaymentMethod) (*Flow, *PaymentInstructions, error) {
	flow, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if flow.State != StatePaymentSelection && !flow.IsProcessingPayment() {
		return nil, nil, ErrInvalidTransition
	}

	switch method {
	case order.PaymentBank:
		flow.State = StateProcessingBank
	case order.PaymentCrypto:
		flow.State = StateProcessingCrypto
	case order.PaymentWhatsApp:
		flow.State = StatePaymentSelection
	default:
		return nil, nil, ErrInvalidPayment
	}
	flow.PaymentMethod = method

	if err := s.save(ctx, flow); err != nil {
		return nil, nil, err
	}

	instructions, err := s.instructions(ctx, flow)
	if err != nil {
		return nil, nil, err
	}
	return &flow.Flow, instructions, nil
}

// AttachProof stores the payment proof image given as a data URI
func (s *Service) AttachProof(ctx context.Context, id, dataURI string) (*Flow, error) {
	flow, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !flow.IsProcessingPayment() {
		return nil, ErrInvalidTransition
	}

	file, err := s.proofs.SaveDataURI(ctx, "proofs", dataURI)
	if err != nil {
		return nil, err
	}

	flow.ProofURL = file.URL
	flow.ProofFile = file.Path
	flow.ProofMIME = file.MimeType
	if err := s.save(ctx, flow); err != nil {
		return nil, err
	}
	return &flow.Flow, nil
}

// Confirm places the order. It is the only step that writes to the order
// list, and it refuses to do so until a proof is attached.
func (s *Service) Confirm(ctx context.Context, id string) (*ConfirmResult, error) {
	flow, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !flow.IsProcessingPayment() {
		return nil, ErrInvalidTransition
	}
	if !flow.HasProof() {
		return nil, ErrProofRequired
	}

	c, err := s.carts.GetCart(ctx, flow.SessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	paymentState := flow.State
	flow.State = StateProcessing
	if err := s.save(ctx, flow); err != nil {
		return nil, err
	}

	o := s.buildOrder(flow, c)
	if err := s.orders.AddOrder(ctx, *o); err != nil {
		// back to the payment step so the customer can confirm again
		flow.State = paymentState
		if saveErr := s.save(ctx, flow); saveErr != nil {
			s.log.WithError(saveErr).WithField("checkout_id", flow.ID).Error("Failed to restore checkout state")
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	s.metrics.OrderPlaced(string(o.PaymentMethod))

	s.notifyOrder(ctx, flow, o)

	if err := s.carts.ClearCart(ctx, flow.SessionID); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("Failed to clear cart after checkout")
	}

	flow.State = StateSuccess
	flow.OrderID = o.ID
	if err := s.save(ctx, flow); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":       o.ID,
		"payment_method": o.PaymentMethod,
		"total":          o.Total,
	}).Info("Order placed")

	return &ConfirmResult{Flow: &flow.Flow, Order: o}, nil
}

// WhatsAppHandoff finishes the flow by handing the order over to a WhatsApp
// conversation. It returns a wa.me compose link and writes no order.
func (s *Service) WhatsAppHandoff(ctx context.Context, id string) (*Flow, error) {
	flow, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if flow.State != StatePaymentSelection || flow.Shipping == nil {
		return nil, ErrInvalidTransition
	}

	settings, err := s.orders.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	phone := digitsOnly(settings.WhatsAppNumber)
	if phone == "" {
		return nil, ErrWhatsAppDisabled
	}

	c, err := s.carts.GetCart(ctx, flow.SessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	flow.PaymentMethod = order.PaymentWhatsApp
	flow.WhatsAppURL = "https://wa.me/" + phone + "?text=" + url.QueryEscape(s.whatsAppMessage(flow, c))
	flow.State = StateSuccess

	if err := s.carts.ClearCart(ctx, flow.SessionID); err != nil {
		s.log.WithError(err).WithField("checkout_id", flow.ID).Warn("Failed to clear cart after WhatsApp handoff")
	}
	if err := s.save(ctx, flow); err != nil {
		return nil, err
	}
	s.metrics.OrderPlaced(string(order.PaymentWhatsApp))
	return &flow.Flow, nil
}

func (s *Service) buildOrder(flow *storedFlow, c *cart.Cart) *order.Order {
	now := s.now().UTC()

	items := make([]order.Item, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, order.Item{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			Quantity:  line.Quantity,
		})
	}

	email := flow.Email
	if email == "" && flow.Shipping != nil {
		email = flow.Shipping.Email
	}

	o := &order.Order{
		ID:            order.GenerateID(now),
		UserID:        flow.UserID,
		Email:         email,
		Date:          now,
		Total:         c.Total(),
		Status:        order.StatusPending,
		Items:         items,
		PaymentMethod: flow.PaymentMethod,
		ProofURL:      flow.ProofURL,
		UpdatedAt:     now,
	}
	if flow.Shipping != nil {
		o.Shipping = *flow.Shipping
	}
	if warning, ok := cart.CompatibilityWarning(c.Items); ok {
		o.CompatibilityWarning = warning
	}
	return o
}

// notifyOrder sends the proof photo with the order summary as caption. If
// the proof file cannot be read back the summary goes out as text.
func (s *Service) notifyOrder(ctx context.Context, flow *storedFlow, o *order.Order) {
	if s.notifier == nil {
		return
	}
	message := notify.FormatOrderMessage(o, s.currency)

	data, err := os.ReadFile(flow.ProofFile)
	if err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("Failed to read payment proof for notification")
		s.notifier.SendText(ctx, message+"\n\nProof: "+o.ProofURL)
		return
	}
	s.notifier.SendPhoto(ctx, upload.EncodeDataURI(flow.ProofMIME, data), message)
}

func (s *Service) instructions(ctx context.Context, flow *storedFlow) (*PaymentInstructions, error) {
	if flow.PaymentMethod == order.PaymentWhatsApp {
		return nil, nil
	}

	settings, err := s.orders.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.carts.GetCart(ctx, flow.SessionID)
	if err != nil {
		return nil, err
	}

	currency := settings.Currency
	if currency == "" {
		currency = s.currency
	}
	in := &PaymentInstructions{
		Method:    flow.PaymentMethod,
		Amount:    c.Total(),
		Currency:  currency,
		Reference: strings.ToUpper(flow.ID[:8]),
	}
	switch flow.PaymentMethod {
	case order.PaymentBank:
		in.BankName = settings.Bank.BankName
		in.AccountName = settings.Bank.AccountName
		in.AccountNumber = settings.Bank.AccountNumber
		in.IBAN = settings.Bank.IBAN
	case order.PaymentCrypto:
		in.Wallets = settings.CryptoWallets
	}
	return in, nil
}

func (s *Service) whatsAppMessage(flow *storedFlow, c *cart.Cart) string {
	var b strings.Builder
	b.WriteString("Hello, I would like to order:\n")
	for _, line := range c.Items {
		fmt.Fprintf(&b, "- %s x%d\n", line.Product.Name, line.Quantity)
	}
	fmt.Fprintf(&b, "Total: %s\n", order.FormatAmount(c.Total(), s.currency))
	if sh := flow.Shipping; sh != nil {
		fmt.Fprintf(&b, "Name: %s\nPhone: %s\nAddress: %s, %s", sh.FullName, sh.Phone, sh.Address, sh.City)
	}
	return b.String()
}

func (s *Service) load(ctx context.Context, id string) (*storedFlow, error) {
	raw, err := s.kv.Get(ctx, flowKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout: %w", err)
	}

	var flow storedFlow
	if err := json.Unmarshal(raw, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout: %w", err)
	}
	return &flow, nil
}

func (s *Service) save(ctx context.Context, flow *storedFlow) error {
	flow.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout: %w", err)
	}
	if err := s.kv.Set(ctx, flowKey(flow.ID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save checkout: %w", err)
	}
	return nil
}

func flowKey(id string) string {
	return "checkout:" + id
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
