// Package auth verifies bearer tokens at the HTTP boundary.
//
// Identity is supplied by an external provider; this package only checks
// the HS256 signature and expiry of a JWT and exposes the subject through
// the request context. There is no credential storage and no per-user
// authorization — every authenticated caller sees the same namespace.
package auth
