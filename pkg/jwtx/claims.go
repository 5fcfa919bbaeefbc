package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/backdesk/backdesk/pkg/cryptox"
)

// DefaultSessionTokenTTL is the lifetime for session tokens unless the
// service configuration overrides it.
const DefaultSessionTokenTTL = 15 * time.Minute

var (
	// ErrMissingIssuer indicates the token has no issuer claim.
	ErrMissingIssuer = errors.New("missing issuer")

	// ErrIssuerMismatch indicates the token issuer does not match the expected value.
	ErrIssuerMismatch = errors.New("issuer mismatch")

	// ErrMissingExpiry indicates the token has no expiry claim.
	ErrMissingExpiry = errors.New("missing expiry")

	// ErrExpired indicates the token has expired.
	ErrExpired = errors.New("token expired")

	// ErrNotYetValid indicates the token nbf claim is in the future.
	ErrNotYetValid = errors.New("token not yet valid")
)

// Claims is the claim set carried by backdesk session tokens. The subject is
// the user's public identifier, never the storage key. Role, email, and
// username ride along so the dashboard can render a session record without a
// second lookup.
type Claims struct {
	jwt.RegisteredClaims

	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds the claim set for a freshly issued session token.
// subject must be the user's public ID.
func NewSessionClaims(issuer, subject, role, email, username string, ttl time.Duration) Claims {
	now := time.Now()
	if ttl == 0 {
		ttl = DefaultSessionTokenTTL
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:     role,
		Email:    email,
		Username: username,
	}
}

// NewJTI generates a unique token identifier.
func NewJTI() string {
	jti, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		// crypto/rand failing means the process is in a bad way; an empty
		// jti is still a valid token.
		return ""
	}
	return jti
}

// ValidateIssuer checks the iss claim against the expected issuer.
func (c Claims) ValidateIssuer(expected string) error {
	if c.Issuer == "" {
		return ErrMissingIssuer
	}
	if c.Issuer != expected {
		return ErrIssuerMismatch
	}
	return nil
}

// ValidateExpiry checks exp and nbf against the current time.
func (c Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrMissingExpiry
	}
	if now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
