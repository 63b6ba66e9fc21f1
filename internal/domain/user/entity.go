// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"
)

// Role represents the role of a profile
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Provider names how the user signed in
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// Profile represents a storefront user. ID is derived from the email or the
// federated subject, never generated randomly.
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Avatar    string    `gorm:"size:500" json:"avatar,omitempty"`
	Provider  string    `gorm:"size:50" json:"provider"`
	Role      Role      `gorm:"size:20" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin reports whether the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// GetDisplayName returns display name (name or email)
func (p *Profile) GetDisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if p.Email != "" {
		return p.Email
	}
	return "Customer"
}
