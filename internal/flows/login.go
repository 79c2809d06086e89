package flows

import (
	"context"
	"strings"

	"github.com/hrkit/credauth/credential"
)

// LoginState is the flow-local login outcome. The root package mirrors these
// values one-to-one.
type LoginState uint8

const (
	StateNoPassword LoginState = iota
	StateDefaultPassword
	StateInvalid
	StateUnauthorized
	StateAuthenticated
)

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	State        LoginState
	SessionToken string
}

// CredentialRecord is the slice of the identity record the login flow reads.
type CredentialRecord struct {
	Credential string
	Authorized bool
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	Authenticated   int
	Invalid         int
	NoPassword      int
	DefaultPassword int
	Unauthorized    int
	StoreFailure    int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	Authenticated   string
	Invalid         string
	NoPassword      string
	DefaultPassword string
	Unauthorized    string
	StoreFailure    string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady error
}

// LoginDeps captures login-flow dependencies.
type LoginDeps struct {
	// DefaultCredential is the organizational default password, plaintext or
	// pre-hashed. Empty disables default detection.
	DefaultCredential string

	FetchCredential   func(ctx context.Context, identity string) (*CredentialRecord, error)
	Verify            func(candidate, stored string) (bool, error)
	IssueSessionToken func(ctx context.Context, identity string) (string, error)

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, identity string, err error, meta func() map[string]string)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin evaluates the login state machine for one attempt. The transition
// order is a security decision: default-credential detection runs before the
// general verification branch so accounts still on the organizational default
// are always redirected to mandatory rotation instead of logging in normally,
// and a wrong candidate against a default credential reports plain Invalid so
// callers cannot learn that the account uses a default.
//
// The returned error is reserved for store and derivation faults; every
// authentication outcome is a state in the result.
func RunLogin(ctx context.Context, identity, candidate string, deps LoginDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.FetchCredential == nil || deps.Verify == nil {
		return nil, deps.Errors.EngineNotReady
	}

	record, err := deps.FetchCredential(ctx, identity)
	if err != nil {
		deps.MetricInc(deps.Metrics.StoreFailure)
		deps.EmitAudit(ctx, deps.Events.StoreFailure, false, identity, err, nil)
		return nil, err
	}

	if record == nil || record.Credential == "" {
		deps.MetricInc(deps.Metrics.NoPassword)
		deps.EmitAudit(ctx, deps.Events.NoPassword, false, identity, nil, nil)
		return &LoginResult{State: StateNoPassword}, nil
	}

	verified, err := deps.Verify(candidate, record.Credential)
	if err != nil {
		return nil, err
	}

	onDefault, err := storedMatchesDefault(deps, candidate, record.Credential, verified)
	if err != nil {
		return nil, err
	}
	if onDefault {
		if verified {
			deps.MetricInc(deps.Metrics.DefaultPassword)
			deps.EmitAudit(ctx, deps.Events.DefaultPassword, true, identity, nil, nil)
			return &LoginResult{State: StateDefaultPassword}, nil
		}
		deps.MetricInc(deps.Metrics.Invalid)
		deps.EmitAudit(ctx, deps.Events.Invalid, false, identity, nil, nil)
		return &LoginResult{State: StateInvalid}, nil
	}

	if !verified {
		deps.MetricInc(deps.Metrics.Invalid)
		deps.EmitAudit(ctx, deps.Events.Invalid, false, identity, nil, nil)
		return &LoginResult{State: StateInvalid}, nil
	}

	if !record.Authorized {
		deps.MetricInc(deps.Metrics.Unauthorized)
		deps.EmitAudit(ctx, deps.Events.Unauthorized, false, identity, nil, nil)
		return &LoginResult{State: StateUnauthorized}, nil
	}

	result := &LoginResult{State: StateAuthenticated}
	if deps.IssueSessionToken != nil {
		token, err := deps.IssueSessionToken(ctx, identity)
		if err != nil {
			return nil, err
		}
		result.SessionToken = token
	}

	deps.MetricInc(deps.Metrics.Authenticated)
	deps.EmitAudit(ctx, deps.Events.Authenticated, true, identity, nil, nil)
	return result, nil
}

// storedMatchesDefault reports whether the stored credential is the
// organizational default.
//
// A plaintext default is checked by verifying it against the stored
// credential directly. A pre-hashed default can never equal another hash of
// the same password (fresh salts), so it matches either byte-for-byte or via
// the candidate: when the candidate verifies against both the stored
// credential and the default hash, both encode the same plaintext.
func storedMatchesDefault(deps LoginDeps, candidate, stored string, verified bool) (bool, error) {
	def := deps.DefaultCredential
	if def == "" {
		return false, nil
	}

	if strings.HasPrefix(def, credential.Tag) {
		if stored == def {
			return true, nil
		}
		if !verified {
			return false, nil
		}
		return deps.Verify(candidate, def)
	}

	return deps.Verify(def, stored)
}
