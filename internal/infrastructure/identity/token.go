// Package identity mints and verifies the bearer tokens that carry a caller's
// signer capability into the HTTP layer.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/playground/userstats/internal/core/ports"
)

const defaultTTL = 24 * time.Hour

var (
	ErrMissingSecret = errors.New("identity: signing secret is empty")
	ErrInvalidToken  = errors.New("identity: invalid token")
)

// claims is the JWT payload. Subject holds the owner identity.
type claims struct {
	jwt.RegisteredClaims
	Signer bool `json:"signer"`
}

// Issuer signs and verifies HS256 identity tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. A non-positive ttl selects 24h.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token asserting identity. signer marks whether the
// holder proved control of the identity's key.
func (i *Issuer) Issue(identity string, signer bool) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("issue token: empty identity")
	}
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Signer: signer,
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns the signer it describes. Only HS256 is
// accepted and the token must not be expired.
func (i *Issuer) Verify(raw string) (ports.Signer, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return ports.Signer{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return ports.Signer{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return ports.Signer{Identity: c.Subject, IsSigner: c.Signer}, nil
}
