// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/your-org/solar-storefront/internal/domain/user"
)

// Status represents the catalog status of a product
type Status string

const (
	StatusActive     Status = "active"
	StatusOutOfStock Status = "out_of_stock"
	StatusHidden     Status = "hidden"
)

// Product represents a catalog entry. Prices are in minor currency units.
type Product struct {
	ID          string            `gorm:"primaryKey;size:64" json:"id"`
	Name        string            `gorm:"not null;size:255" json:"name"`
	Price       int64             `gorm:"not null" json:"price"`
	OldPrice    int64             `json:"old_price,omitempty"` // Original price for offers
	Category    string            `gorm:"size:100;index" json:"category"`
	Description string            `gorm:"type:text" json:"description"`
	Specs       map[string]string `gorm:"serializer:json;type:jsonb" json:"specs,omitempty"`
	Image       string            `gorm:"size:500" json:"image,omitempty"`
	Status      Status            `gorm:"size:20;index" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Review represents a customer review. ProductID is empty for store-wide reviews.
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"not null;size:36;index" json:"user_id"`
	UserName  string    `gorm:"size:255" json:"user_name"`
	ProductID string    `gorm:"size:64;index" json:"product_id,omitempty"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	ImageURL  string    `gorm:"size:500" json:"image_url,omitempty"`
	CreatedAt time.Time `json:"date"`

	// Relationships
	Author *user.Profile `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName overrides
func (Product) TableName() string { return "products" }
func (Review) TableName() string  { return "reviews" }

// IsVisible reports whether the product is shown in the public catalog
func (p *Product) IsVisible() bool {
	return p.Status != StatusHidden
}

// IsInStock reports whether the product can be added to a cart
func (p *Product) IsInStock() bool {
	return p.Status == StatusActive || p.Status == ""
}

// GetDiscountPercentage returns the offer discount relative to OldPrice
func (p *Product) GetDiscountPercentage() int {
	if p.OldPrice > 0 && p.Price < p.OldPrice {
		return int(((p.OldPrice - p.Price) * 100) / p.OldPrice)
	}
	return 0
}

// ValidStatus reports whether s is a known product status
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusOutOfStock, StatusHidden:
		return true
	}
	return false
}
