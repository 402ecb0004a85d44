package directory

import "errors"

var (
	// ErrUserExists is returned by Add when the name is taken.
	ErrUserExists = errors.New("directory: user already exists")

	// ErrUserNotFound is returned when no user has the requested id.
	ErrUserNotFound = errors.New("directory: user not found")

	// ErrInvalidUser is returned for entries with missing or invalid fields.
	ErrInvalidUser = errors.New("directory: invalid user")

	// ErrInvalidHash is returned when a stored password hash cannot be parsed.
	ErrInvalidHash = errors.New("directory: invalid password hash")
)
