// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every order status in display order
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// PaymentMethod represents how the customer pays
type PaymentMethod string

const (
	PaymentBank     PaymentMethod = "bank"
	PaymentCrypto   PaymentMethod = "crypto"
	PaymentWhatsApp PaymentMethod = "whatsapp"
)

// Order represents a placed order
type Order struct {
	ID                   string        `gorm:"primaryKey;size:40" json:"id"`
	UserID               string        `gorm:"size:36;index" json:"user_id,omitempty"`
	Email                string        `gorm:"size:255" json:"email,omitempty"`
	Date                 time.Time     `gorm:"index" json:"date"`
	Total                int64         `gorm:"not null" json:"total"`
	Status               Status        `gorm:"size:20;index" json:"status"`
	Items                []Item        `gorm:"serializer:json;type:jsonb" json:"items"`
	Shipping             ShippingInfo  `gorm:"serializer:json;type:jsonb" json:"shipping"`
	PaymentMethod        PaymentMethod `gorm:"size:20" json:"payment_method"`
	ProofURL             string        `gorm:"size:500" json:"proof_url,omitempty"`
	CompatibilityWarning string        `gorm:"type:text" json:"compatibility_warning,omitempty"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// Item is an order line, a snapshot of the product at checkout time
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// ShippingInfo is the delivery information entered at checkout
type ShippingInfo struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Region   string `json:"region,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// TableName overrides
func (Order) TableName() string { return "orders" }

// ValidationError lists the fields a customer must fix
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Validate checks the required shipping fields
func (s ShippingInfo) Validate() error {
	var missing []string
	if strings.TrimSpace(s.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(s.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(s.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(s.City) == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// ParseStatus converts s to a Status, rejecting unknown values
func ParseStatus(s string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// ParsePaymentMethod converts s to a PaymentMethod
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentBank, PaymentCrypto, PaymentWhatsApp:
		return m, true
	}
	return "", false
}

// GenerateID generates an order id
func GenerateID(now time.Time) string {
	// Format: ORD-YYYYMMDD-XXXXXX
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// ItemCount returns the number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// CountsAsRevenue reports whether the order contributes to revenue
func (o *Order) CountsAsRevenue() bool {
	return o.Status != StatusCancelled
}
