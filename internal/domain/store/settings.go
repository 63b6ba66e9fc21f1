package store

import (
	"context"

	"github.com/your-org/solar-storefront/internal/pkg/events"
)

// Settings are the admin-editable storefront settings
type Settings struct {
	StoreName      string            `json:"store_name"`
	Announcement   string            `json:"announcement,omitempty"`
	WhatsAppNumber string            `json:"whatsapp_number"`
	Currency       string            `json:"currency"`
	Bank           BankDetails       `json:"bank"`
	CryptoWallets  map[string]string `json:"crypto_wallets,omitempty"` // network -> address
}

// BankDetails are shown to customers paying by bank transfer
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IBAN          string `json:"iban,omitempty"`
}

// DefaultSettings is returned until an admin saves settings
func DefaultSettings() Settings {
	return Settings{
		StoreName: "Solar Storefront",
		Currency:  "USD",
	}
}

// GetSettings returns the stored settings or the defaults
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()
	if _, err := s.load(ctx, KeySettings, &settings); err != nil {
		return DefaultSettings(), err
	}
	return settings, nil
}

// SaveSettings replaces the settings document
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	if err := s.save(ctx, KeySettings, settings); err != nil {
		return err
	}
	s.publish(ctx, events.SettingsChanged)
	return nil
}
