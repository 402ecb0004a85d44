// Package session issues and validates bearer tokens.
//
// Service is the only path that mints tokens: every issued token is
// registered in a revocation.Store, which keeps at most one active token
// per subject. Validation verifies the signature, then that the token is
// still the subject's active one, then expiry. An expired token is evicted
// from the store as it is rejected.
package session
