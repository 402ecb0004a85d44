// Package keys loads and holds the RSA key pair used to sign and verify
// session tokens.
//
// The private key is read from an encrypted PKCS#8 PEM file and decrypted
// with a passphrase. It stays in process memory: KeyPair redacts itself
// when formatted and exposes the private half only to the token codec.
//
// Verifiers that do not hold the private key use a Provider. KeyPair is a
// Provider for its own public key; JWKSProvider fetches public keys from a
// remote JWKS endpoint published via KeyPair.JWKS.
package keys
