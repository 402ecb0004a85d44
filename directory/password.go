package directory

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashScheme = "pbkdf2-sha256"

	// DefaultIterations is the pbkdf2 work factor for new hashes.
	DefaultIterations = 100_000

	saltLen = 32
	keyLen  = sha256.Size
)

var b64 = base64.RawStdEncoding

// HashPassword derives a pbkdf2-sha256 digest of secret with a fresh random
// salt and returns it as pbkdf2-sha256$<iter>$<salt>$<hash>.
func HashPassword(secret string) (string, error) {
	return hashWithIterations(secret, DefaultIterations)
}

func hashWithIterations(secret string, iter int) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("directory: salt: %w", err)
	}
	sum := pbkdf2.Key([]byte(secret), salt, iter, keyLen, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s", hashScheme, iter, b64.EncodeToString(salt), b64.EncodeToString(sum)), nil
}

type passwordHash struct {
	iter int
	salt []byte
	sum  []byte
}

func parseHash(encoded string) (*passwordHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != hashScheme {
		return nil, fmt.Errorf("%w: want %s$<iter>$<salt>$<hash>", ErrInvalidHash, hashScheme)
	}
	iter, err := strconv.Atoi(parts[1])
	if err != nil || iter <= 0 {
		return nil, fmt.Errorf("%w: iterations %q", ErrInvalidHash, parts[1])
	}
	salt, err := b64.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: salt", ErrInvalidHash)
	}
	sum, err := b64.DecodeString(parts[3])
	if err != nil || len(sum) == 0 {
		return nil, fmt.Errorf("%w: digest", ErrInvalidHash)
	}
	return &passwordHash{iter: iter, salt: salt, sum: sum}, nil
}

func (h *passwordHash) matches(secret string) bool {
	sum := pbkdf2.Key([]byte(secret), h.salt, h.iter, len(h.sum), sha256.New)
	return subtle.ConstantTimeCompare(sum, h.sum) == 1
}
