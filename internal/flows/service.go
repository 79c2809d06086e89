package flows

import "context"

// Deps groups flow dependency sets. The root engine builds this once and
// delegates request methods to the matching flow implementation.
type Deps struct {
	Login       LoginDeps
	SetPassword SetPasswordDeps
}

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.FetchCredential != nil
}

func (s Service) Login(ctx context.Context, identity, candidate string) (*LoginResult, error) {
	return RunLogin(ctx, identity, candidate, s.deps.Login)
}

func (s Service) SetPassword(ctx context.Context, identity, newPassword, confirm string) error {
	return RunSetPassword(ctx, identity, newPassword, confirm, s.deps.SetPassword)
}
