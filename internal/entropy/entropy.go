// Package entropy produces the random bytes consumed as salt material.
//
// The primary path reads the platform CSPRNG. A degraded math/rand fallback
// exists for constrained execution contexts, but it is opt-in and observable:
// silently weakening future salts is worse than failing loudly, so by default
// a CSPRNG failure is returned to the caller instead.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mathrand "math/rand"
)

// Source produces random bytes for salt generation. The zero value is not
// usable; construct with [New].
type Source struct {
	reader        io.Reader
	allowFallback bool
	onFallback    func()
}

// Option configures a [Source].
type Option func(*Source)

// WithReader overrides the primary random reader. Tests use this to simulate
// CSPRNG failure.
func WithReader(r io.Reader) Option {
	return func(s *Source) {
		s.reader = r
	}
}

// WithInsecureFallback enables the degraded non-cryptographic fallback when
// the primary reader fails. onUse fires once per fallback-generated buffer so
// the caller can record that lower-entropy salt material was emitted.
// Credentials already derived are unaffected; entropy only enters as new salt
// at hash time.
func WithInsecureFallback(onUse func()) Option {
	return func(s *Source) {
		s.allowFallback = true
		s.onFallback = onUse
	}
}

// New returns a Source reading from the platform CSPRNG.
func New(opts ...Option) *Source {
	s := &Source{reader: rand.Reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bytes returns n random bytes. With the fallback disabled (the default), a
// primary-reader failure is returned as an error. With the fallback enabled,
// Bytes never fails: it fills the buffer from math/rand and fires the
// fallback hook.
func (s *Source) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)

	if _, err := io.ReadFull(s.reader, buf); err == nil {
		return buf, nil
	} else if !s.allowFallback {
		return nil, err
	}

	fillInsecure(buf)
	if s.onFallback != nil {
		s.onFallback()
	}
	return buf, nil
}

// fillInsecure fills buf from math/rand. Not cryptographically secure.
func fillInsecure(buf []byte) {
	var word [8]byte
	for i := 0; i < len(buf); i += 8 {
		binary.LittleEndian.PutUint64(word[:], mathrand.Uint64())
		copy(buf[i:], word[:])
	}
}
