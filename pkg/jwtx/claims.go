package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens. Tokens
// are deliberately short-lived; clients re-run the login ceremony to get a
// fresh one.
const DefaultAccessTokenTTL = 15 * time.Minute

// Authentication Method Reference values recorded in the "amr" claim.
const (
	// AMRPassword - password-based authentication succeeded.
	AMRPassword = "pwd"
	// AMROTP - a one-time password (TOTP) was verified.
	AMROTP = "otp"
	// AMRMFA - multiple factors were used.
	AMRMFA = "mfa"
)

// Claims are the access-token claims. Changes should stay additive to
// preserve compatibility with already-issued tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated identity.
	Username string `json:"username,omitempty"`

	// AMR lists the authentication methods that produced this token,
	// e.g. ["pwd","otp","mfa"]. Lets resource endpoints insist on MFA.
	AMR []string `json:"amr,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for an access token.
func NewAccessClaims(
	subject, username string,
	amr []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
		AMR:      amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer against an expected value. Empty expected
// means nothing to enforce.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it becomes valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
