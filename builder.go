package credauth

import (
	"context"
	"errors"

	"github.com/hrkit/credauth/credential"
	"github.com/hrkit/credauth/internal/entropy"
	"github.com/hrkit/credauth/internal/flows"
	"github.com/hrkit/credauth/kdf"
	"github.com/hrkit/credauth/token"
)

// Builder assembles an [Engine]. Construction is allocation-only until Build,
// which validates the configuration and wires the collaborators.
type Builder struct {
	config    Config
	store     CredentialStore
	auditSink AuditSink
	kdfProbe  func() bool

	built bool
}

// New returns a Builder seeded with defaults.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the external credential store the engine consults.
func (b *Builder) WithStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithAuditSink sets the sink receiving audit events. Ignored unless auditing
// is enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithDefaultCredential sets the organizational default-password policy value
// (plaintext or pre-hashed current-format).
func (b *Builder) WithDefaultCredential(value string) *Builder {
	b.config.Policy.DefaultCredential = value
	return b
}

// WithMetricsEnabled toggles the engine counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithKDFProbe overrides the per-call platform-backend availability probe.
// Intended for embedded hosts and tests.
func (b *Builder) WithKDFProbe(probe func() bool) *Builder {
	b.kdfProbe = probe
	return b
}

// Build validates the configuration and returns a ready Engine. A Builder
// builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already built")
	}
	if b.store == nil {
		return nil, errors.New("credential store is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  b.config,
		store:   b.store,
		metrics: NewMetrics(b.config.Metrics),
		audit:   newAuditDispatcher(b.config.Audit, b.auditSink),
	}

	var entropyOpts []entropy.Option
	if b.config.Entropy.AllowInsecureFallback {
		entropyOpts = append(entropyOpts, entropy.WithInsecureFallback(func() {
			engine.metricInc(MetricEntropyFallback)
			engine.emitAudit(context.Background(), auditEventEntropyFallback, false, "", nil, nil)
		}))
	}

	var kdfOpts []kdf.Option
	if probe := b.kdfProbe; probe != nil {
		kdfOpts = append(kdfOpts, kdf.WithProbe(func() bool {
			ok := probe()
			if !ok {
				engine.metricInc(MetricKDFSoftware)
			}
			return ok
		}))
	}

	engine.hasher = credential.NewHasher(kdf.NewEngine(kdfOpts...), entropy.New(entropyOpts...))

	if b.config.Token.Enabled {
		manager, err := token.NewManager(token.Config{
			TTL:        b.config.Token.TTL,
			SigningKey: b.config.Token.SigningKey,
			Issuer:     b.config.Token.Issuer,
			Leeway:     b.config.Token.Leeway,
		})
		if err != nil {
			return nil, err
		}
		engine.tokens = manager
	}

	engine.flows = flows.New(engine.buildFlowDeps())

	b.built = true
	return engine, nil
}
