package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Deterministic(t *testing.T) {
	first := FromEmail("buyer@example.com")
	second := FromEmail("buyer@example.com")

	assert.Equal(t, first, second)
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, FromEmail("other@example.com"))
}

func TestDerive_MatchesDigestPrefix(t *testing.T) {
	sum := sha256.Sum256([]byte("buyer@example.com"))
	hexDigest := hex.EncodeToString(sum[:])[:32]

	id := Derive("buyer@example.com")
	parts := strings.Split(id, "-")
	require.Len(t, parts, 5)
	assert.Equal(t, []int{8, 4, 4, 4, 12}, []int{len(parts[0]), len(parts[1]), len(parts[2]), len(parts[3]), len(parts[4])})
	assert.Equal(t, hexDigest, strings.ReplaceAll(id, "-", ""))
}

func TestFromEmail_NormalizesInput(t *testing.T) {
	assert.Equal(t, FromEmail("buyer@example.com"), FromEmail("  Buyer@Example.COM "))
	// Raw Derive does not normalize
	assert.NotEqual(t, Derive("buyer@example.com"), Derive("Buyer@example.com"))
}

func TestIsAdminEmail(t *testing.T) {
	admins := []string{"owner@solar.test"}

	assert.True(t, IsAdminEmail(" Owner@Solar.test", admins))
	assert.False(t, IsAdminEmail("guest@solar.test", admins))
	assert.False(t, IsAdminEmail("", admins))
}

func TestDecodeFederatedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "1098765",
		"name":    "Ada Buyer",
		"email":   "ada@example.com",
		"picture": "https://example.com/ada.png",
		"iss":     "https://accounts.google.com",
	})
	signed, err := token.SignedString([]byte("any-key-signature-is-not-checked"))
	require.NoError(t, err)

	fid, err := DecodeFederatedToken(signed)
	require.NoError(t, err)

	assert.Equal(t, "1098765", fid.Subject)
	assert.Equal(t, "Ada Buyer", fid.Name)
	assert.Equal(t, "ada@example.com", fid.Email)
	assert.Equal(t, "google", fid.Provider)
	assert.Equal(t, FromSubject("1098765"), fid.UserID())
}

func TestDecodeFederatedToken_Malformed(t *testing.T) {
	_, err := DecodeFederatedToken("not-a-token")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = DecodeFederatedToken("")
	assert.ErrorIs(t, err, ErrMalformedToken)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x@example.com"})
	signed, err := noSub.SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = DecodeFederatedToken(signed)
	assert.ErrorIs(t, err, ErrMalformedToken)
}
