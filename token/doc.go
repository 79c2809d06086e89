// Package token issues and verifies the short-lived session tokens handed out
// on a fully authenticated login. Tokens are HS256-signed JWTs; the engine has
// no server-side session state, so a token is the only artifact of a login.
package token
