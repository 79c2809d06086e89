// Package kdf derives fixed-length keys from passwords using PBKDF2-HMAC-SHA256
// with parameters that are deliberately compile-time constants: changing them
// silently invalidates every credential already at rest.
//
// Two interchangeable backends exist. [Platform] delegates to golang.org/x/crypto
// and is the normal path. [Software] is an independent PBKDF2 implementation used
// when the platform primitives are unavailable; it must produce byte-identical
// output for identical inputs, because a credential hashed in one execution
// context is routinely verified in another.
package kdf
