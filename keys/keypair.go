package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/youmark/pkcs8"
)

const (
	encryptedPrivateKeyType = "ENCRYPTED PRIVATE KEY"
	publicKeyType           = "PUBLIC KEY"

	// DefaultBits is the modulus size used by Generate when bits is zero.
	DefaultBits = 2048

	minBits = 2048
)

// KeyPair holds an RSA signing key and its public verification key.
// It is immutable after construction and safe for concurrent use.
type KeyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
	kid     string
}

// Load reads an encrypted PKCS#8 private key and a PEM public key from disk
// and decrypts the private key with passphrase.
//
// Every failure wraps ErrKeyLoad.
func Load(privatePath, publicPath, passphrase string) (*KeyPair, error) {
	privatePEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key: %w", ErrKeyLoad, err)
	}
	publicPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read public key: %w", ErrKeyLoad, err)
	}
	return Parse(privatePEM, publicPEM, passphrase)
}

// Parse builds a KeyPair from PEM bytes. The private key must be an
// "ENCRYPTED PRIVATE KEY" block; unencrypted keys are refused.
func Parse(privatePEM, publicPEM []byte, passphrase string) (*KeyPair, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: passphrase is required", ErrKeyLoad)
	}

	block, _ := pem.Decode(privatePEM)
	if block == nil {
		return nil, fmt.Errorf("%w: private key: no PEM block found", ErrKeyLoad)
	}
	if block.Type != encryptedPrivateKeyType {
		return nil, fmt.Errorf("%w: private key: expected %q block, got %q", ErrKeyLoad, encryptedPrivateKeyType, block.Type)
	}

	private, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt private key: %w", ErrKeyLoad, err)
	}

	public, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %w", ErrKeyLoad, err)
	}

	if !private.PublicKey.Equal(public) {
		return nil, fmt.Errorf("%w: public key does not match private key", ErrKeyLoad)
	}

	return newKeyPair(private)
}

// Generate creates a fresh RSA key pair. A zero bits value selects
// DefaultBits.
func Generate(bits int) (*KeyPair, error) {
	if bits == 0 {
		bits = DefaultBits
	}
	if bits < minBits {
		return nil, fmt.Errorf("keys: modulus of %d bits is below the %d bit minimum", bits, minBits)
	}
	private, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("keys: generate: %w", err)
	}
	return newKeyPair(private)
}

func newKeyPair(private *rsa.PrivateKey) (*KeyPair, error) {
	if err := private.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %w", ErrKeyLoad, err)
	}
	return &KeyPair{
		private: private,
		public:  &private.PublicKey,
		kid:     thumbprint(&private.PublicKey),
	}, nil
}

// EncodePEM returns the private key as an encrypted PKCS#8 PEM block and the
// public key as a PKIX PEM block.
func (k *KeyPair) EncodePEM(passphrase string) (privatePEM, publicPEM []byte, err error) {
	if passphrase == "" {
		return nil, nil, errors.New("keys: refusing to encode private key without a passphrase")
	}

	der, err := pkcs8.MarshalPrivateKey(k.private, []byte(passphrase), encryptOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("keys: encrypt private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(k.public)
	if err != nil {
		return nil, nil, fmt.Errorf("keys: marshal public key: %w", err)
	}

	privatePEM = pem.EncodeToMemory(&pem.Block{Type: encryptedPrivateKeyType, Bytes: der})
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: publicKeyType, Bytes: pubDER})
	return privatePEM, publicPEM, nil
}

// WriteFiles writes the encrypted private key with 0600 permissions and the
// public key with 0644.
func (k *KeyPair) WriteFiles(privatePath, publicPath, passphrase string) error {
	privatePEM, publicPEM, err := k.EncodePEM(passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(privatePath, privatePEM, 0600); err != nil {
		return fmt.Errorf("keys: write private key: %w", err)
	}
	if err := os.WriteFile(publicPath, publicPEM, 0644); err != nil {
		return fmt.Errorf("keys: write public key: %w", err)
	}
	return nil
}

// PublicKey returns the verification key.
func (k *KeyPair) PublicKey() *rsa.PublicKey {
	return k.public
}

// SigningKey returns the private key. Callers must not retain, log or
// serialize it.
func (k *KeyPair) SigningKey() *rsa.PrivateKey {
	return k.private
}

// KeyID returns the RFC 7638 thumbprint of the public key.
func (k *KeyPair) KeyID() string {
	return k.kid
}

// Bits returns the modulus size.
func (k *KeyPair) Bits() int {
	return k.public.N.BitLen()
}

// String never includes key material.
func (k *KeyPair) String() string {
	return fmt.Sprintf("KeyPair{kid=%s, bits=%d}", k.kid, k.Bits())
}

// GoString never includes key material.
func (k *KeyPair) GoString() string {
	return k.String()
}

// MarshalJSON exposes the public half only.
func (k *KeyPair) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.JWKS())
}

var encryptOpts = &pkcs8.Opts{
	Cipher: pkcs8.AES256CBC,
	KDFOpts: pkcs8.PBKDF2Opts{
		SaltSize:       16,
		IterationCount: 100000,
		HMACHash:       crypto.SHA256,
	},
}

// thumbprint computes the RFC 7638 JWK thumbprint of an RSA public key.
func thumbprint(pub *rsa.PublicKey) string {
	jwk := toJWK(pub, "")
	// Members in lexicographic order, no whitespace.
	canonical := `{"e":"` + jwk.E + `","kty":"RSA","n":"` + jwk.N + `"}`
	sum := sha256.Sum256([]byte(canonical))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
