package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"sync"
)

// KeySet is a thread-safe collection of public verification keys indexed by
// key ID. It can be populated locally from signers or remotely from a
// published JWKS document.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
	jwks map[string]JWK
}

// NewKeySet returns an empty key set.
func NewKeySet() *KeySet {
	return &KeySet{
		keys: make(map[string]ed25519.PublicKey),
		jwks: make(map[string]JWK),
	}
}

// AddSigner registers the public half of a signer's key.
func (ks *KeySet) AddSigner(s Signer) error {
	return ks.AddJWK(s.PublicJWK())
}

// AddJWK registers a public key from its JWK form.
func (ks *KeySet) AddJWK(jwk JWK) error {
	key, err := parseJWK(jwk)
	if err != nil {
		return err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.keys[jwk.Kid] = key
	ks.jwks[jwk.Kid] = jwk
	return nil
}

// Get returns the public key for a key ID.
func (ks *KeySet) Get(kid string) (ed25519.PublicKey, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	key, ok := ks.keys[kid]
	return key, ok
}

// PublicJWKS returns the set as a JWKS document for publication.
func (ks *KeySet) PublicJWKS() JWKS {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	out := JWKS{Keys: make([]JWK, 0, len(ks.jwks))}
	for _, jwk := range ks.jwks {
		out.Keys = append(out.Keys, jwk)
	}
	return out
}

// IsReady reports whether at least one key is registered.
func (ks *KeySet) IsReady() bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys) > 0
}

func parseJWK(jwk JWK) (ed25519.PublicKey, error) {
	if jwk.Kid == "" {
		return nil, fmt.Errorf("jwtx: jwk has no kid")
	}
	if jwk.Kty != "OKP" || jwk.Crv != "Ed25519" {
		return nil, fmt.Errorf("jwtx: unsupported key type %q/%q", jwk.Kty, jwk.Crv)
	}

	raw, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode jwk x: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("jwtx: jwk x has wrong length %d", len(raw))
	}

	return ed25519.PublicKey(raw), nil
}
