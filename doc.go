// Package credauth is the credential hashing, verification, and login-policy
// engine behind an HR administration console.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// credauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [CredentialStore] boundary, and value types (LoginResult,
// MetricsSnapshot, AuditEvent). Flow orchestration lives under internal/ and
// is never exported. The cryptographic core lives in the credential and kdf
// sub-packages and can be used standalone.
//
// # What this package must NOT do
//
//   - Persist credentials. The external store is the sole source of truth;
//     the engine only computes, compares, and hands encoded values back.
//   - Remember in-flight login attempts. Concurrent attempts for the same
//     identity are independent; the last persisted credential wins.
//   - Choose user-facing messages from raw error text. Message selection is
//     driven solely by [LoginState] and the store error taxonomy.
//
// # Credential format
//
// Stored credentials are either the tagged form "pbkdf2:" +
// base64(salt||derivedKey) or legacy plaintext compared by direct equality.
// Encoding details live in the credential package and are opaque to the
// store, which must persist the string byte-for-byte.
package credauth
