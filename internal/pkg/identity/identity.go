// Package identity derives stable local user identifiers from external
// identities (an email address or a federated login subject).
package identity

import (
	"crypto/sha256"
	"strings"

	"github.com/google/uuid"
)

// Normalize trims and lower-cases an email address. Every call site that
// derives an identifier from an email must go through it, otherwise two
// logins of the same person produce different identifiers.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Derive hashes input with SHA-256 and formats the first 32 hex characters
// of the digest as 8-4-4-4-12 groups. The result is always 36 characters.
func Derive(input string) string {
	sum := sha256.Sum256([]byte(input))

	// uuid.UUID.String renders its 16 bytes as dashed hex; no version or
	// variant bits are touched by FromBytes.
	id, _ := uuid.FromBytes(sum[:16])
	return id.String()
}

// FromEmail derives the user identifier for an email login
func FromEmail(email string) string {
	return Derive(Normalize(email))
}

// FromSubject derives the user identifier for a federated subject id
func FromSubject(subject string) string {
	return Derive(subject)
}

// IsAdminEmail reports whether email matches one of the admin addresses.
// Both sides are normalized; the comparison itself is exact.
func IsAdminEmail(email string, admins []string) bool {
	normalized := Normalize(email)
	if normalized == "" {
		return false
	}
	for _, admin := range admins {
		if Normalize(admin) == normalized {
			return true
		}
	}
	return false
}
