package credauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakeStore is an in-memory CredentialStore following the boundary contract:
// unknown identities report ErrIdentityNotFound, and failures are injectable.
type fakeStore struct {
	records  map[string]*CredentialRecord
	fetchErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*CredentialRecord{}}
}

func (s *fakeStore) FetchCredential(_ context.Context, identity string) (*CredentialRecord, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	record, ok := s.records[identity]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *fakeStore) PersistCredential(_ context.Context, identity, encoded string) error {
	record, ok := s.records[identity]
	if !ok {
		return ErrIdentityNotFound
	}
	record.Credential = encoded
	return nil
}

func buildTestEngine(t *testing.T, store CredentialStore, mutate func(*Config)) *Engine {
	t.Helper()

	cfg := defaultConfig()
	cfg.Policy.DefaultCredential = "welcome1"
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestLoginPolicyOrdering(t *testing.T) {
	store := newFakeStore()
	engine := buildTestEngine(t, store, nil)
	ctx := context.Background()

	defaultHash, err := engine.HashCredential("welcome1")
	if err != nil {
		t.Fatalf("HashCredential error: %v", err)
	}
	distinctHash, err := engine.HashCredential("rotated-pass")
	if err != nil {
		t.Fatalf("HashCredential error: %v", err)
	}

	store.records["blank"] = &CredentialRecord{Authorized: true}
	store.records["default"] = &CredentialRecord{Credential: defaultHash, Authorized: true}
	store.records["rotated"] = &CredentialRecord{Credential: distinctHash, Authorized: false}

	cases := []struct {
		name      string
		identity  string
		candidate string
		want      LoginState
	}{
		{"no stored credential", "blank", "anything", StateNoPassword},
		{"default credential, correct candidate", "default", "welcome1", StateDefaultPassword},
		{"default credential, wrong candidate", "default", "wrong", StateInvalid},
		{"distinct credential, wrong candidate", "rotated", "wrong", StateInvalid},
		{"distinct credential, unauthorized", "rotated", "rotated-pass", StateUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := engine.Login(ctx, tc.identity, tc.candidate)
			if err != nil {
				t.Fatalf("Login error: %v", err)
			}
			if result.State != tc.want {
				t.Fatalf("state = %v, want %v", result.State, tc.want)
			}
		})
	}

	store.records["rotated"].Authorized = true
	result, err := engine.Login(ctx, "rotated", "rotated-pass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.State != StateAuthenticated {
		t.Fatalf("state = %v, want StateAuthenticated", result.State)
	}
}

func TestLoginIdentityNotFound(t *testing.T) {
	engine := buildTestEngine(t, newFakeStore(), nil)

	_, err := engine.Login(context.Background(), "ghost", "whatever")
	if !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("err = %v, want ErrIdentityNotFound", err)
	}
}

func TestLoginStoreFaultsAreNotInvalid(t *testing.T) {
	store := newFakeStore()
	engine := buildTestEngine(t, store, nil)

	store.fetchErr = fmt.Errorf("%w: dial tcp refused", ErrStoreUnavailable)
	_, err := engine.Login(context.Background(), "anyone", "pw")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}

	store.fetchErr = ErrStoreUnconfigured
	_, err = engine.Login(context.Background(), "anyone", "pw")
	if !errors.Is(err, ErrStoreUnconfigured) {
		t.Fatalf("err = %v, want ErrStoreUnconfigured", err)
	}

	if got := engine.MetricsSnapshot().Counters[MetricLoginStoreFailure]; got != 2 {
		t.Fatalf("store-failure counter = %d, want 2", got)
	}
}

func TestSetPasswordThenLogin(t *testing.T) {
	store := newFakeStore()
	engine := buildTestEngine(t, store, nil)
	ctx := context.Background()

	store.records["newhire"] = &CredentialRecord{Authorized: true}

	result, err := engine.Login(ctx, "newhire", "anything")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.State != StateNoPassword {
		t.Fatalf("state = %v, want StateNoPassword", result.State)
	}

	if err := engine.SetPassword(ctx, "newhire", "fresh-start", "fresh-start"); err != nil {
		t.Fatalf("SetPassword error: %v", err)
	}
	if !strings.HasPrefix(store.records["newhire"].Credential, "pbkdf2:") {
		t.Fatalf("persisted credential not current-format: %q", store.records["newhire"].Credential)
	}

	result, err = engine.Login(ctx, "newhire", "fresh-start")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.State != StateAuthenticated {
		t.Fatalf("state = %v, want StateAuthenticated after rotation", result.State)
	}
}

func TestSetPasswordValidation(t *testing.T) {
	store := newFakeStore()
	engine := buildTestEngine(t, store, nil)
	ctx := context.Background()

	store.records["emp"] = &CredentialRecord{Authorized: true}

	if err := engine.SetPassword(ctx, "emp", "tiny", "tiny"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}
	if err := engine.SetPassword(ctx, "emp", "longenough", "different"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("err = %v, want ErrPasswordMismatch", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricPasswordSetRejected]; got != 2 {
		t.Fatalf("rejected counter = %d, want 2", got)
	}
}

func TestLoginIssuesSessionToken(t *testing.T) {
	store := newFakeStore()
	engine := buildTestEngine(t, store, func(cfg *Config) {
		cfg.Token.Enabled = true
		cfg.Token.SigningKey = []byte("0123456789abcdef0123456789abcdef")
		cfg.Token.Issuer = "hr-console"
	})
	ctx := context.Background()

	encoded, err := engine.HashCredential("rotated-pass")
	if err != nil {
		t.Fatal(err)
	}
	store.records["emp"] = &CredentialRecord{Credential: encoded, Authorized: true}

	result, err := engine.Login(ctx, "emp", "rotated-pass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.State != StateAuthenticated {
		t.Fatalf("state = %v, want StateAuthenticated", result.State)
	}
	if result.SessionToken == "" {
		t.Fatal("expected a session token when issuance is enabled")
	}

	// Invalid logins never carry a token.
	result, err = engine.Login(ctx, "emp", "wrong")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.SessionToken != "" {
		t.Fatal("invalid login must not carry a token")
	}
}

func TestLoginEmitsAuditEvents(t *testing.T) {
	store := newFakeStore()
	sink := NewChannelSink(16)

	cfg := defaultConfig()
	cfg.Audit.Enabled = true
	engine, err := New().WithConfig(cfg).WithStore(store).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)

	ctx := WithClientIP(WithRequestID(context.Background(), "req-7"), "10.0.0.9")
	store.records["emp"] = &CredentialRecord{Credential: "legacy-pass", Authorized: true}

	result, err := engine.Login(ctx, "emp", "legacy-pass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.State != StateAuthenticated {
		t.Fatalf("state = %v, want StateAuthenticated", result.State)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "login_authenticated" {
			t.Fatalf("event type = %q", event.EventType)
		}
		if event.Identity != "emp" || event.RequestID != "req-7" || event.IP != "10.0.0.9" {
			t.Fatalf("event envelope = %+v", event)
		}
		if !event.Success {
			t.Fatal("authenticated event must be marked successful")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event dispatched")
	}
}

func TestBuilderValidation(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error without a store")
	}

	cfg := defaultConfig()
	cfg.Token.Enabled = true // no signing key
	if _, err := New().WithConfig(cfg).WithStore(newFakeStore()).Build(); err == nil {
		t.Fatal("expected error for token config without key")
	}

	cfg = defaultConfig()
	cfg.Policy.DefaultCredential = "pbkdf2:not-base64!!"
	if _, err := New().WithConfig(cfg).WithStore(newFakeStore()).Build(); err == nil {
		t.Fatal("expected error for malformed pre-hashed default")
	}

	builder := New().WithStore(newFakeStore())
	if _, err := builder.Build(); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if _, err := builder.Build(); err == nil {
		t.Fatal("expected error on second Build")
	}
}

func TestEngineNotReady(t *testing.T) {
	var engine *Engine

	if _, err := engine.Login(context.Background(), "a", "b"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("err = %v, want ErrEngineNotReady", err)
	}
	if err := engine.SetPassword(context.Background(), "a", "b", "b"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("err = %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.HashCredential("x"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("err = %v, want ErrEngineNotReady", err)
	}
}

func TestLoginSoftwareBackendOnly(t *testing.T) {
	// Force the software KDF for the whole engine; credentials hashed by the
	// default (platform) engine must still verify.
	store := newFakeStore()

	platformEngine := buildTestEngine(t, store, nil)
	encoded, err := platformEngine.HashCredential("cross-context")
	if err != nil {
		t.Fatal(err)
	}
	store.records["emp"] = &CredentialRecord{Credential: encoded, Authorized: true}

	cfg := defaultConfig()
	softwareEngine, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithKDFProbe(func() bool { return false }).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(softwareEngine.Close)

	result, err := softwareEngine.Login(context.Background(), "emp", "cross-context")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.State != StateAuthenticated {
		t.Fatalf("state = %v, want StateAuthenticated under software backend", result.State)
	}
	if got := softwareEngine.MetricsSnapshot().Counters[MetricKDFSoftware]; got == 0 {
		t.Fatal("MetricKDFSoftware = 0, want software derivations counted")
	}
}
