package credauth

import (
	"context"

	"github.com/hrkit/credauth/credential"
	"github.com/hrkit/credauth/internal/flows"
	"github.com/hrkit/credauth/token"
)

// Engine is the credential verification and login-policy engine. Build it
// through [Builder]; it is immutable and safe for concurrent use afterwards.
//
// The engine holds no per-identity state: concurrent login attempts are
// independent, a pending derivation always runs to completion, and the
// external store remains the sole source of truth for credentials.
type Engine struct {
	config  Config
	store   CredentialStore
	hasher  *credential.Hasher
	tokens  *token.Manager
	audit   *auditDispatcher
	metrics *Metrics
	flows   flows.Service
}

// Login evaluates a login attempt against the stored credential and returns
// the state reached. State transitions are evaluated in fixed order:
//
//  1. No stored credential → [StateNoPassword]; the identity must complete
//     [Engine.SetPassword] before any login succeeds.
//  2. Stored credential matches the configured default policy: a verifying
//     candidate → [StateDefaultPassword] (forced rotation); a failing one →
//     [StateInvalid], indistinguishable from any other bad password.
//  3. Verification failure → [StateInvalid].
//  4. Missing authorization flag → [StateUnauthorized].
//  5. Otherwise [StateAuthenticated], with a session token when issuance is
//     configured.
//
// The error return carries store faults ([ErrIdentityNotFound],
// [ErrStoreUnconfigured], [ErrStoreUnavailable]) and internal failures only;
// authentication outcomes never surface as errors.
func (e *Engine) Login(ctx context.Context, identity, candidate string) (*LoginResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result, err := e.flows.Login(ctx, identity, candidate)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		State:        LoginState(result.State),
		SessionToken: result.SessionToken,
	}, nil
}

// SetPassword runs the mandatory-rotation flow: the new password must reach
// the configured minimum length and equal confirm exactly. On success the
// freshly encoded credential is handed to the store and the identity must log
// in again; no session is issued.
func (e *Engine) SetPassword(ctx context.Context, identity, newPassword, confirm string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return e.flows.SetPassword(ctx, identity, newPassword, confirm)
}

// HashCredential derives a fresh encoded credential for callers that persist
// through their own channel. Each call produces a different encoding for the
// same password.
func (e *Engine) HashCredential(password string) (string, error) {
	if e == nil || e.hasher == nil {
		return "", ErrEngineNotReady
	}
	return e.hasher.Hash(password)
}

// VerifyCredential reports whether candidate matches stored, accepting both
// current-format and legacy-plaintext values. Malformed stored values verify
// as false without error.
func (e *Engine) VerifyCredential(candidate, stored string) (bool, error) {
	if e == nil || e.hasher == nil {
		return false, ErrEngineNotReady
	}
	return e.hasher.Verify(candidate, stored)
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events the dispatcher discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close drains and stops the audit dispatcher. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) issueSessionToken(_ context.Context, identity string) (string, error) {
	if e.tokens == nil {
		return "", nil
	}
	return e.tokens.Issue(identity)
}

// buildFlowDeps wires the flow runners to the engine's collaborators. Called
// once from Build.
func (e *Engine) buildFlowDeps() flows.Deps {
	return flows.Deps{
		Login: flows.LoginDeps{
			DefaultCredential: e.config.Policy.DefaultCredential,
			FetchCredential: func(ctx context.Context, identity string) (*flows.CredentialRecord, error) {
				record, err := e.store.FetchCredential(ctx, identity)
				if err != nil {
					return nil, err
				}
				if record == nil {
					return nil, nil
				}
				return &flows.CredentialRecord{
					Credential: record.Credential,
					Authorized: record.Authorized,
				}, nil
			},
			Verify:            e.hasher.Verify,
			IssueSessionToken: e.issueSessionToken,
			MetricInc:         func(id int) { e.metricInc(MetricID(id)) },
			EmitAudit:         e.emitAudit,
			Metrics: flows.LoginMetrics{
				Authenticated:   int(MetricLoginAuthenticated),
				Invalid:         int(MetricLoginInvalid),
				NoPassword:      int(MetricLoginNoPassword),
				DefaultPassword: int(MetricLoginDefaultPassword),
				Unauthorized:    int(MetricLoginUnauthorized),
				StoreFailure:    int(MetricLoginStoreFailure),
			},
			Events: flows.LoginEvents{
				Authenticated:   auditEventLoginAuthenticated,
				Invalid:         auditEventLoginInvalid,
				NoPassword:      auditEventLoginNoPassword,
				DefaultPassword: auditEventLoginDefaultPassword,
				Unauthorized:    auditEventLoginUnauthorized,
				StoreFailure:    auditEventLoginStoreFailure,
			},
			Errors: flows.LoginErrors{
				EngineNotReady: ErrEngineNotReady,
			},
		},
		SetPassword: flows.SetPasswordDeps{
			MinLength:         e.config.Policy.MinPasswordLength,
			Hash:              e.hasher.Hash,
			PersistCredential: e.store.PersistCredential,
			MetricInc:         func(id int) { e.metricInc(MetricID(id)) },
			EmitAudit:         e.emitAudit,
			Metrics: flows.SetPasswordMetrics{
				Set:      int(MetricPasswordSet),
				Rejected: int(MetricPasswordSetRejected),
			},
			Events: flows.SetPasswordEvents{
				Set:      auditEventPasswordSet,
				Rejected: auditEventPasswordSetRejected,
			},
			Errors: flows.SetPasswordErrors{
				EngineNotReady:   ErrEngineNotReady,
				PasswordTooShort: ErrPasswordTooShort,
				PasswordMismatch: ErrPasswordMismatch,
			},
		},
	}
}
