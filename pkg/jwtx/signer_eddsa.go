package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSASigner signs tokens with an Ed25519 private key.
type EdDSASigner struct {
	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEdDSASigner builds a signer from a PKCS8 PEM encoded Ed25519 private key.
func NewEdDSASigner(kid string, pemKey []byte) (*EdDSASigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM block")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse private key: %w", err)
	}

	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: key is not Ed25519")
	}

	return &EdDSASigner{
		kid:  kid,
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
	}, nil
}

func (s *EdDSASigner) Alg() string { return "EdDSA" }
func (s *EdDSASigner) KID() string { return s.kid }

// Sign serializes the claims into a compact JWT with the signer's kid in the
// header so verifiers can find the matching public key.
func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid

	signed, err := t.SignedString(s.priv)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, nil
}

func (s *EdDSASigner) PublicJWK() JWK {
	return NewEd25519JWK(s.kid, "sig", s.Alg(), s.pub)
}

func (s *EdDSASigner) Validate() error {
	if s.kid == "" {
		return errors.New("jwtx: signer has no kid")
	}
	if len(s.priv) != ed25519.PrivateKeySize {
		return errors.New("jwtx: malformed private key")
	}
	return nil
}
