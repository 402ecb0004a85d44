// Package secret resolves configuration values that hold secrets, such as
// the signing key passphrase.
//
// A value is either a literal, a literal with ${VAR} references expanded
// strictly (see ExpandEnvStrict), or a reference of the form
// secretref:<provider>:<ref> resolved through a Provider:
//
//	passphrase: ${SESSIONAUTH_KEY_PASSPHRASE}
//	passphrase: secretref:env:SESSIONAUTH_KEY_PASSPHRASE
//	passphrase: secretref:file:/run/secrets/key-passphrase
package secret
