package kdf

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// Derivation parameters shared by hashing and verification. These are fixed
// constants, not per-call options: both backends must agree on them, and any
// change invalidates all existing encoded credentials.
const (
	// Iterations is the PBKDF2 iteration count.
	Iterations = 100_000
	// KeyLength is the derived key length in bytes.
	KeyLength = 32
	// SaltLength is the required salt length in bytes.
	SaltLength = 16
)

// ErrSaltLength is returned when a salt of the wrong size is supplied.
var ErrSaltLength = errors.New("kdf: salt must be 16 bytes")

// Deriver turns a password and salt into a fixed-length derived key.
//
// Implementations are safe for concurrent use; concurrent derivations share no
// state. A Derive call is not cancellable and runs to completion.
type Deriver interface {
	Derive(password, salt []byte) ([]byte, error)
}

// Platform derives keys through the platform PBKDF2 implementation
// (golang.org/x/crypto).
type Platform struct{}

// Derive implements [Deriver].
func (Platform) Derive(password, salt []byte) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, ErrSaltLength
	}
	return pbkdf2.Key(password, salt, Iterations, KeyLength, sha256.New), nil
}

// Software derives keys with a self-contained PBKDF2 over HMAC-SHA256. It is
// the fallback when the platform backend is unavailable and must match
// [Platform] byte-for-byte on every input.
type Software struct{}

// Derive implements [Deriver].
func (Software) Derive(password, salt []byte) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, ErrSaltLength
	}
	return derivePBKDF2(password, salt, Iterations, KeyLength), nil
}

// derivePBKDF2 is PBKDF2 per RFC 8018 §5.2 with HMAC-SHA256 as the PRF.
func derivePBKDF2(password, salt []byte, iterations, keyLen int) []byte {
	prf := hmac.New(sha256.New, password)
	hashLen := prf.Size()
	blocks := (keyLen + hashLen - 1) / hashLen

	var blockIndex [4]byte
	key := make([]byte, 0, blocks*hashLen)

	for i := 1; i <= blocks; i++ {
		// U1 = PRF(password, salt || INT_32_BE(i))
		prf.Reset()
		prf.Write(salt)
		binary.BigEndian.PutUint32(blockIndex[:], uint32(i))
		prf.Write(blockIndex[:])
		u := prf.Sum(nil)

		t := make([]byte, hashLen)
		copy(t, u)

		// T_i = U1 xor U2 xor ... xor Uc
		for n := 1; n < iterations; n++ {
			prf.Reset()
			prf.Write(u)
			u = prf.Sum(u[:0])
			for x := range t {
				t[x] ^= u[x]
			}
		}

		key = append(key, t...)
	}

	return key[:keyLen]
}

// Engine is a Deriver that selects a backend by capability probing.
//
// The probe runs on every Derive call and the choice is never cached: host
// capabilities can differ between calls in embedded or polyfilled
// environments, and a stale choice would break backend equivalence.
type Engine struct {
	probe    func() bool
	platform Deriver
	software Deriver
}

// Option configures an [Engine].
type Option func(*Engine)

// WithProbe overrides the platform-availability probe. The probe must be
// cheap; it runs once per Derive call.
func WithProbe(probe func() bool) Option {
	return func(e *Engine) {
		e.probe = probe
	}
}

// NewEngine returns an Engine that prefers the platform backend and falls
// back to the software backend when the probe reports it unavailable.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		probe:    func() bool { return true },
		platform: Platform{},
		software: Software{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Derive implements [Deriver], re-probing backend availability on each call.
func (e *Engine) Derive(password, salt []byte) ([]byte, error) {
	if e.probe() {
		return e.platform.Derive(password, salt)
	}
	return e.software.Derive(password, salt)
}
