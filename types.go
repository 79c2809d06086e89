package credauth

import "context"

// LoginState is the outcome of a login attempt, evaluated in the fixed order
// documented on [Engine.Login]. User-facing messaging must key off this state
// alone, never off internal error text.
type LoginState uint8

const (
	// StateNoPassword routes the identity into the mandatory password-set flow.
	StateNoPassword LoginState = iota
	// StateDefaultPassword marks a valid candidate against a credential still
	// equal to the organizational default; the identity must rotate it before
	// proceeding.
	StateDefaultPassword
	// StateInvalid covers every failed verification, including wrong candidates
	// against default credentials.
	StateInvalid
	// StateUnauthorized marks a verified identity lacking the authorization flag.
	StateUnauthorized
	// StateAuthenticated is a full success.
	StateAuthenticated
)

// String returns the snake_case state name used in audit metadata.
func (s LoginState) String() string {
	switch s {
	case StateNoPassword:
		return "no_password"
	case StateDefaultPassword:
		return "default_password"
	case StateInvalid:
		return "invalid"
	case StateUnauthorized:
		return "unauthorized"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// LoginResult is returned by [Engine.Login]. SessionToken is set only for
// StateAuthenticated, and only when token issuance is configured.
type LoginResult struct {
	State        LoginState
	SessionToken string
}

// CredentialRecord is the slice of an identity record this engine consumes.
// An empty Credential means no password has been set.
type CredentialRecord struct {
	Credential string
	Authorized bool
}

// CredentialStore is the boundary to the external record store. Both methods
// are network-bound and fallible; implementations must distinguish a
// missing-configuration failure ([ErrStoreUnconfigured]) from a failed
// request ([ErrStoreUnavailable]) and report unknown identities as
// [ErrIdentityNotFound], so callers can select messaging without leaking
// account existence.
//
// The encoded credential handed to PersistCredential must be stored
// byte-for-byte; its format is opaque to the store.
type CredentialStore interface {
	FetchCredential(ctx context.Context, identity string) (*CredentialRecord, error)
	PersistCredential(ctx context.Context, identity, encoded string) error
}
