package service

import (
	"errors"
	"time"

	"github.com/backdesk/backdesk/internal/domain"
	"github.com/backdesk/backdesk/pkg/jwtx"
)

var (
	// ErrTokenInvalid covers malformed tokens, unknown keys, and bad
	// signatures. Distinct from ErrTokenExpired so clients can message the
	// difference; both deny access.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is a well-signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenService issues and verifies session tokens. The server holds no
// session table; validity is signature plus expiry.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Verifier   jwtx.Verifier
	Issuer     string
	TTL        time.Duration
}

// Issue signs a session token for the user. The subject is the public ID.
func (s *TokenService) Issue(user domain.User) (string, error) {
	signer, err := s.KeyManager.GetSigner()
	if err != nil {
		return "", err
	}

	claims := jwtx.NewSessionClaims(
		s.Issuer,
		user.PublicID,
		user.Role.String(),
		user.Email,
		user.Username,
		s.TTL,
	)
	return signer.Sign(claims)
}

// Verify checks a session token, collapsing the verifier's failure modes into
// the two the rest of the system distinguishes: invalid and expired.
func (s *TokenService) Verify(token string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, ErrTokenExpired
		}
		return jwtx.Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
