package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload signed into a session token.
type Claims struct {
	// Issuer identifies the issuing service (iss).
	Issuer string

	// ExpiresAt is the absolute expiry (exp).
	ExpiresAt time.Time

	// IssuedAt is the issuance time (iat).
	IssuedAt time.Time

	// ID is a unique token identifier (jti).
	ID string

	// App is the application payload.
	App App
}

// App identifies the subject the token was issued to.
type App struct {
	SubjectID   int64  `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Role        string `json:"role"`
}

// Expired reports whether the claims have expired at now. A token is
// expired from its exp instant onward.
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// wireClaims is the JSON shape of the signed payload.
type wireClaims struct {
	jwt.RegisteredClaims
	App App `json:"app"`
}

func (c Claims) toWire() *wireClaims {
	w := &wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.Issuer,
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
			ID:        c.ID,
		},
		App: c.App,
	}
	if !c.IssuedAt.IsZero() {
		w.IssuedAt = jwt.NewNumericDate(c.IssuedAt)
	}
	return w
}

func (w *wireClaims) toClaims() *Claims {
	c := &Claims{
		Issuer: w.Issuer,
		ID:     w.ID,
		App:    w.App,
	}
	if w.ExpiresAt != nil {
		c.ExpiresAt = w.ExpiresAt.Time
	}
	if w.IssuedAt != nil {
		c.IssuedAt = w.IssuedAt.Time
	}
	return c
}
