package jwtx

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/backdesk/backdesk/pkg/cryptox"
)

// KeyManager holds the service's signing keys and the key set used to verify
// them. Keys are generated fresh at startup; a restart rotates the fleet and
// invalidates outstanding tokens, which is the intended lifecycle for short
// lived session tokens.
type KeyManager struct {
	mu      sync.RWMutex
	signers []Signer
	keys    *KeySet
}

// NewKeyManager generates n ephemeral Ed25519 signing keys.
func NewKeyManager(n int) (*KeyManager, error) {
	if n < 1 {
		n = 1
	}

	km := &KeyManager{keys: NewKeySet()}
	for i := 0; i < n; i++ {
		if err := km.addFreshSigner(); err != nil {
			return nil, err
		}
	}
	return km, nil
}

func (km *KeyManager) addFreshSigner() error {
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return fmt.Errorf("jwtx: generate signing key: %w", err)
	}

	kid, err := newKeyID()
	if err != nil {
		return err
	}

	signer, err := NewEdDSASigner(kid, pemKey)
	if err != nil {
		return err
	}

	return km.AddSigner(signer)
}

// AddSigner registers a signer and publishes its public key.
func (km *KeyManager) AddSigner(s Signer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := km.keys.AddSigner(s); err != nil {
		return err
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	km.signers = append(km.signers, s)
	return nil
}

// GetSigner picks one of the held signers at random, spreading issued tokens
// across the key fleet.
func (km *KeyManager) GetSigner() (Signer, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if len(km.signers) == 0 {
		return nil, fmt.Errorf("jwtx: no signers available")
	}
	return km.signers[rand.Intn(len(km.signers))], nil
}

// KeySet returns the verification key set backed by this manager.
func (km *KeyManager) KeySet() *KeySet { return km.keys }

func newKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: generate key id: %w", err)
	}
	return "backdesk-" + token[:16], nil
}
