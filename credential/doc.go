// Package credential encodes, decodes, and verifies stored password
// credentials.
//
// A current-format credential is the literal tag "pbkdf2:" followed by the
// standard base64 encoding of salt(16) || derivedKey(32). Any stored value
// without the tag is a legacy-plaintext credential compared by direct
// equality; this backward-compatibility path is kept so records predating the
// hashing scheme keep working until rotated.
//
// The package never persists anything. Hash returns a fresh encoded
// credential for the caller to store; Verify is a pure function of its
// inputs.
package credential
