package flows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hrkit/credauth/credential"
)

type setPasswordFixture struct {
	persisted map[string]string
	metrics   [2]int
	deps      SetPasswordDeps
}

func newSetPasswordFixture(t *testing.T) *setPasswordFixture {
	t.Helper()

	hasher := credential.NewHasher(nil, nil)
	f := &setPasswordFixture{persisted: map[string]string{}}

	f.deps = SetPasswordDeps{
		MinLength: 6,
		Hash:      hasher.Hash,
		PersistCredential: func(_ context.Context, identity, encoded string) error {
			f.persisted[identity] = encoded
			return nil
		},
		MetricInc: func(id int) { f.metrics[id]++ },
		Metrics:   SetPasswordMetrics{Set: 0, Rejected: 1},
		Events:    SetPasswordEvents{Set: "password_set", Rejected: "password_set_rejected"},
		Errors: SetPasswordErrors{
			EngineNotReady:   errors.New("engine not ready"),
			PasswordTooShort: errors.New("too short"),
			PasswordMismatch: errors.New("mismatch"),
		},
	}

	return f
}

func TestSetPasswordSuccess(t *testing.T) {
	f := newSetPasswordFixture(t)

	if err := RunSetPassword(context.Background(), "alice", "brand-new", "brand-new", f.deps); err != nil {
		t.Fatalf("RunSetPassword error: %v", err)
	}

	encoded, ok := f.persisted["alice"]
	if !ok {
		t.Fatal("credential was not persisted")
	}
	if !strings.HasPrefix(encoded, credential.Tag) {
		t.Fatalf("persisted credential not in current format: %q", encoded)
	}
	if f.metrics[0] != 1 {
		t.Fatalf("set metric = %d, want 1", f.metrics[0])
	}
}

func TestSetPasswordTooShort(t *testing.T) {
	f := newSetPasswordFixture(t)

	err := RunSetPassword(context.Background(), "alice", "five5", "five5", f.deps)
	if !errors.Is(err, f.deps.Errors.PasswordTooShort) {
		t.Fatalf("err = %v, want PasswordTooShort", err)
	}
	if len(f.persisted) != 0 {
		t.Fatal("rejected password must not be persisted")
	}
	if f.metrics[1] != 1 {
		t.Fatalf("rejected metric = %d, want 1", f.metrics[1])
	}
}

func TestSetPasswordExactMinimumLength(t *testing.T) {
	f := newSetPasswordFixture(t)

	if err := RunSetPassword(context.Background(), "alice", "sixsix", "sixsix", f.deps); err != nil {
		t.Fatalf("six-byte password must pass: %v", err)
	}
}

func TestSetPasswordConfirmationMismatch(t *testing.T) {
	f := newSetPasswordFixture(t)

	err := RunSetPassword(context.Background(), "alice", "brand-new", "brand-neW", f.deps)
	if !errors.Is(err, f.deps.Errors.PasswordMismatch) {
		t.Fatalf("err = %v, want PasswordMismatch", err)
	}
	if len(f.persisted) != 0 {
		t.Fatal("rejected password must not be persisted")
	}
}

func TestSetPasswordPersistFailure(t *testing.T) {
	f := newSetPasswordFixture(t)
	persistErr := errors.New("store down")
	f.deps.PersistCredential = func(context.Context, string, string) error {
		return persistErr
	}

	err := RunSetPassword(context.Background(), "alice", "brand-new", "brand-new", f.deps)
	if !errors.Is(err, persistErr) {
		t.Fatalf("err = %v, want persist error", err)
	}
}

func TestSetPasswordDefaultMinimum(t *testing.T) {
	f := newSetPasswordFixture(t)
	f.deps.MinLength = 0 // unset selects the built-in minimum of 6

	err := RunSetPassword(context.Background(), "alice", "tiny", "tiny", f.deps)
	if !errors.Is(err, f.deps.Errors.PasswordTooShort) {
		t.Fatalf("err = %v, want PasswordTooShort", err)
	}
}
