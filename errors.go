package credauth

import "errors"

var (
	// ErrEngineNotReady is returned when Engine methods run before Build wiring completed.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrIdentityNotFound is returned when the store has no record for the identity.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrStoreUnconfigured is returned when the credential store is missing configuration or connectivity.
	ErrStoreUnconfigured = errors.New("credential store unconfigured")
	// ErrStoreUnavailable is returned when a credential store request failed.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrPasswordTooShort is returned by SetPassword when the new password is below the configured minimum.
	ErrPasswordTooShort = errors.New("password below minimum length")
	// ErrPasswordMismatch is returned by SetPassword when the confirmation value differs.
	ErrPasswordMismatch = errors.New("password confirmation mismatch")
)
