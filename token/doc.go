// Package token encodes session claims into RS256-signed JWTs and decodes
// them back.
//
// Decode verifies structure and signature only. Expiry and revocation are
// checked by the session service layered on top.
package token
