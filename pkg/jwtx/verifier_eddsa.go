package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSAVerifier verifies Ed25519-signed session tokens against a key set.
// Claims are validated by hand after the signature check so callers can tell
// an expired token apart from an invalid one.
type EdDSAVerifier struct {
	keys   *KeySet
	issuer string
	parser *jwt.Parser
}

// NewEdDSAVerifier builds a verifier over the given key set. Tokens must be
// EdDSA-signed and carry the expected issuer.
func NewEdDSAVerifier(keys *KeySet, issuer string) *EdDSAVerifier {
	return &EdDSAVerifier{
		keys:   keys,
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"EdDSA"}),
			// exp/nbf/iss are checked explicitly in Verify.
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Verify parses and checks a compact serialized token. The signature is
// verified first; only then are issuer and expiry evaluated.
func (v *EdDSAVerifier) Verify(token string) (Claims, error) {
	var claims Claims

	_, err := v.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}

		key, ok := v.keys.Get(kid)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKID, kid)
		}
		return key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKID):
			return Claims{}, err
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, fmt.Errorf("%w: %v", ErrAlgMismatch, err)
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		}
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(time.Now()); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
