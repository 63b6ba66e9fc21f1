package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/solar-storefront/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Solar Storefront"},
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())

	token, err := m.GenerateAccessToken(Identity{UserID: "abc", Email: "a@b.com", Role: "admin"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.UserID)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, int64(3600), m.ExpiresIn())
}

func TestAccessToken_Expired(t *testing.T) {
	m := NewJWTManager(testConfig())
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken(Identity{UserID: "abc"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	token, err := NewJWTManager(testConfig()).GenerateAccessToken(Identity{UserID: "abc"})
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	_, err = NewJWTManager(other).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "tok", ExtractTokenFromHeader("Bearer tok"))
	assert.Empty(t, ExtractTokenFromHeader("Basic tok"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}

func TestPasswordManager(t *testing.T) {
	p := NewPasswordManager(4)

	_, err := p.HashPassword("short")
	assert.Error(t, err)
	_, err = p.HashPassword("alllowercase123")
	assert.Error(t, err)

	hash, err := p.HashPassword("SolarAdmin2026")
	require.NoError(t, err)
	assert.NoError(t, p.VerifyPassword("SolarAdmin2026", hash))
	assert.Error(t, p.VerifyPassword("solaradmin2026", hash))
}
