package credauth

import (
	"context"
	"time"
)

const (
	auditEventLoginAuthenticated   = "login_authenticated"
	auditEventLoginInvalid         = "login_invalid"
	auditEventLoginNoPassword      = "login_no_password"
	auditEventLoginDefaultPassword = "login_default_password"
	auditEventLoginUnauthorized    = "login_unauthorized"
	auditEventLoginStoreFailure    = "login_store_failure"
	auditEventPasswordSet          = "password_set"
	auditEventPasswordSetRejected  = "password_set_rejected"
	auditEventEntropyFallback      = "entropy_fallback"
)

// emitAudit builds the canonical event envelope from context values and hands
// it to the async dispatcher. metaFn is only invoked when auditing is active.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	err error,
	metaFn func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Identity:  identity,
		RequestID: requestIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metaFn != nil {
		event.Metadata = metaFn()
	}

	e.audit.Emit(ctx, event)
}
