package keys

import "errors"

var (
	// ErrKeyLoad indicates the key pair could not be loaded. It is fatal at
	// startup: a process without a usable key pair must not serve traffic.
	ErrKeyLoad = errors.New("keys: key load failure")

	// ErrKeyNotFound indicates no verification key matches the requested key ID.
	ErrKeyNotFound = errors.New("keys: verification key not found")
)
