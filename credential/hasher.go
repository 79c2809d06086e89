package credential

import (
	"crypto/subtle"
	"errors"

	"github.com/hrkit/credauth/internal/entropy"
	"github.com/hrkit/credauth/kdf"
)

// ErrNotConfigured is returned when a Hasher is used before construction.
var ErrNotConfigured = errors.New("credential: hasher not configured")

// Hasher produces and verifies encoded credentials. Safe for concurrent use.
type Hasher struct {
	deriver kdf.Deriver
	source  *entropy.Source
}

// NewHasher returns a Hasher over the given derivation backend and entropy
// source. Nil arguments select the defaults (probing KDF engine, strict
// CSPRNG source).
func NewHasher(deriver kdf.Deriver, source *entropy.Source) *Hasher {
	if deriver == nil {
		deriver = kdf.NewEngine()
	}
	if source == nil {
		source = entropy.New()
	}
	return &Hasher{deriver: deriver, source: source}
}

// Hash derives a fresh encoded credential for password. Every call draws a
// new salt, so two calls with the same password produce different strings
// that both verify; outputs must never be cached by password alone.
func (h *Hasher) Hash(password string) (string, error) {
	if h == nil || h.deriver == nil {
		return "", ErrNotConfigured
	}

	salt, err := h.source.Bytes(kdf.SaltLength)
	if err != nil {
		return "", err
	}

	key, err := h.deriver.Derive([]byte(password), salt)
	if err != nil {
		return "", err
	}

	return Encode(salt, key), nil
}

// Verify reports whether candidate matches stored. Malformed stored values
// verify as false without error; the error return is reserved for derivation
// failures.
func (h *Hasher) Verify(candidate, stored string) (bool, error) {
	if h == nil || h.deriver == nil {
		return false, ErrNotConfigured
	}

	decoded, err := Decode(stored)
	if err != nil {
		return false, nil
	}

	if decoded.Kind == KindLegacy {
		return candidate == decoded.Plain, nil
	}

	// The stored key length is a property of the format, not of the
	// candidate, so rejecting early here is not an input-dependent branch.
	if len(decoded.Key) != kdf.KeyLength {
		return false, nil
	}

	derived, err := h.deriver.Derive([]byte(candidate), decoded.Salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(derived, decoded.Key) == 1, nil
}
