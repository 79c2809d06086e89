package flows

import "context"

// SetPasswordMetrics carries metric IDs needed by the password-set flow.
type SetPasswordMetrics struct {
	Set      int
	Rejected int
}

// SetPasswordEvents carries audit event names used by the password-set flow.
type SetPasswordEvents struct {
	Set      string
	Rejected string
}

// SetPasswordErrors carries host-level sentinel errors used by the
// password-set flow.
type SetPasswordErrors struct {
	EngineNotReady   error
	PasswordTooShort error
	PasswordMismatch error
}

// SetPasswordDeps captures password-set dependencies.
type SetPasswordDeps struct {
	MinLength int

	Hash              func(password string) (string, error)
	PersistCredential func(ctx context.Context, identity, encoded string) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, identity string, err error, meta func() map[string]string)

	Metrics SetPasswordMetrics
	Events  SetPasswordEvents
	Errors  SetPasswordErrors
}

// RunSetPassword executes the mandatory-rotation flow: validate the new
// password, hash it, and hand the encoded credential to the store. On success
// the caller returns to the unauthenticated state; no session is issued here.
func RunSetPassword(ctx context.Context, identity, newPassword, confirm string, deps SetPasswordDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Hash == nil || deps.PersistCredential == nil {
		return deps.Errors.EngineNotReady
	}

	minLength := deps.MinLength
	if minLength <= 0 {
		minLength = 6
	}

	if len(newPassword) < minLength {
		deps.MetricInc(deps.Metrics.Rejected)
		deps.EmitAudit(ctx, deps.Events.Rejected, false, identity, deps.Errors.PasswordTooShort, func() map[string]string {
			return map[string]string{"reason": "too_short"}
		})
		return deps.Errors.PasswordTooShort
	}

	if newPassword != confirm {
		deps.MetricInc(deps.Metrics.Rejected)
		deps.EmitAudit(ctx, deps.Events.Rejected, false, identity, deps.Errors.PasswordMismatch, func() map[string]string {
			return map[string]string{"reason": "confirmation_mismatch"}
		})
		return deps.Errors.PasswordMismatch
	}

	encoded, err := deps.Hash(newPassword)
	if err != nil {
		deps.MetricInc(deps.Metrics.Rejected)
		deps.EmitAudit(ctx, deps.Events.Rejected, false, identity, err, nil)
		return err
	}

	if err := deps.PersistCredential(ctx, identity, encoded); err != nil {
		deps.EmitAudit(ctx, deps.Events.Rejected, false, identity, err, func() map[string]string {
			return map[string]string{"reason": "persist_failed"}
		})
		return err
	}

	deps.MetricInc(deps.Metrics.Set)
	deps.EmitAudit(ctx, deps.Events.Set, true, identity, nil, nil)
	return nil
}
