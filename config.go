package credauth

import (
	"errors"
	"strings"
	"time"

	"github.com/hrkit/credauth/credential"
)

// Config wires the engine. Configure during initialization and treat as
// immutable afterwards; Build validates and clones it.
type Config struct {
	Policy  PolicyConfig
	Entropy EntropyConfig
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
POLICY CONFIG
====================================
*/

// PolicyConfig carries the organizational credential policy.
type PolicyConfig struct {
	// DefaultCredential is the organization's default password, either as
	// plaintext or as a pre-hashed current-format credential. Loaded once at
	// startup; identities whose stored credential still matches it are forced
	// into rotation on every successful login. Empty disables the check.
	DefaultCredential string

	// MinPasswordLength applies to the password-set flow. Zero selects the
	// default of 6.
	MinPasswordLength int
}

/*
====================================
ENTROPY CONFIG
====================================
*/

// EntropyConfig controls salt generation.
type EntropyConfig struct {
	// AllowInsecureFallback permits salt generation from a non-cryptographic
	// generator when the platform CSPRNG fails. Every fallback use is counted
	// and audited. Leave false unless the deployment genuinely runs in a
	// context without a CSPRNG.
	AllowInsecureFallback bool
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls session-token issuance on successful login.
type TokenConfig struct {
	Enabled    bool
	SigningKey []byte
	Issuer     string
	TTL        time.Duration
	Leeway     time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the engine counters.
type MetricsConfig struct {
	Enabled bool
}

const defaultMinPasswordLength = 6

func defaultConfig() Config {
	return Config{
		Policy: PolicyConfig{
			MinPasswordLength: defaultMinPasswordLength,
		},
		Token: TokenConfig{
			TTL:    15 * time.Minute,
			Leeway: 30 * time.Second,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	clone := cfg
	if cfg.Token.SigningKey != nil {
		clone.Token.SigningKey = make([]byte, len(cfg.Token.SigningKey))
		copy(clone.Token.SigningKey, cfg.Token.SigningKey)
	}
	return clone
}

func validateConfig(cfg Config) error {
	if cfg.Policy.MinPasswordLength < 0 {
		return errors.New("policy min password length must not be negative")
	}
	if def := cfg.Policy.DefaultCredential; strings.HasPrefix(def, credential.Tag) {
		// A pre-hashed default must itself be decodable, or it can never match.
		if _, err := credential.Decode(def); err != nil {
			return errors.New("policy default credential is tagged but malformed")
		}
	}
	if cfg.Token.Enabled {
		if len(cfg.Token.SigningKey) == 0 {
			return errors.New("token issuance requires a signing key")
		}
		if cfg.Token.TTL <= 0 {
			return errors.New("token TTL must be positive")
		}
		if cfg.Token.Leeway < 0 || cfg.Token.Leeway > 2*time.Minute {
			return errors.New("token leeway out of range")
		}
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}
