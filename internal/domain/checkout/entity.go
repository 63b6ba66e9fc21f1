// internal/domain/checkout/entity.go
package checkout

import (
	"errors"
	"time"

	"github.com/your-org/solar-storefront/internal/domain/order"
)

// State is a step of the checkout flow.
//
//	shipping -> payment_selection -> processing_bank   -> processing -> success
//	                              -> processing_crypto -> processing -> success
//	                              -> success (WhatsApp handoff, no order written)
type State string

const (
	StateShipping         State = "shipping"
	StatePaymentSelection State = "payment_selection"
	StateProcessingBank   State = "processing_bank"
	StateProcessingCrypto State = "processing_crypto"
	StateProcessing       State = "processing"
	StateSuccess          State = "success"
)

var (
	ErrFlowNotFound      = errors.New("checkout not found or expired")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("action not allowed at this checkout step")
	ErrInvalidPayment    = errors.New("unsupported payment method")
	ErrProofRequired     = errors.New("please attach your payment proof before confirming")
	ErrWhatsAppDisabled  = errors.New("whatsapp ordering is not configured")
)

// Flow is one customer's pass through checkout. Nothing is committed to the
// order list before Confirm, so an abandoned flow just expires.
type Flow struct {
	ID            string              `json:"id"`
	SessionID     string              `json:"session_id"`
	UserID        string              `json:"user_id,omitempty"`
	Email         string              `json:"email,omitempty"`
	State         State               `json:"state"`
	Shipping      *order.ShippingInfo `json:"shipping,omitempty"`
	PaymentMethod order.PaymentMethod `json:"payment_method,omitempty"`
	ProofURL      string              `json:"proof_url,omitempty"`
	OrderID       string              `json:"order_id,omitempty"`
	WhatsAppURL   string              `json:"whatsapp_url,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// HasProof reports whether a payment proof is attached
func (f *Flow) HasProof() bool {
	return f.ProofURL != ""
}

// IsProcessingPayment reports whether the flow waits for a bank or crypto proof
func (f *Flow) IsProcessingPayment() bool {
	return f.State == StateProcessingBank || f.State == StateProcessingCrypto
}

// IsTerminal reports whether the flow is finished
func (f *Flow) IsTerminal() bool {
	return f.State == StateSuccess
}

// storedFlow adds the fields that stay server side
type storedFlow struct {
	Flow
	ProofFile string `json:"proof_file,omitempty"`
	ProofMIME string `json:"proof_mime,omitempty"`
}

// PaymentInstructions tell the customer where to send money
type PaymentInstructions struct {
	Method        order.PaymentMethod `json:"method"`
	Amount        int64               `json:"amount"`
	Currency      string              `json:"currency"`
	BankName      string              `json:"bank_name,omitempty"`
	AccountName   string              `json:"account_name,omitempty"`
	AccountNumber string              `json:"account_number,omitempty"`
	IBAN          string              `json:"iban,omitempty"`
	Wallets       map[string]string   `json:"wallets,omitempty"`
	Reference     string              `json:"reference"`
}
