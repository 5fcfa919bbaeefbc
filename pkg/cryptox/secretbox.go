package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrDecrypt is returned whenever sealed data cannot be opened: wrong key,
// truncated ciphertext, or a failed authentication tag. Callers must treat it
// as a verification failure, never as a reason to crash.
var ErrDecrypt = errors.New("cryptox: decryption failed")

// SecretBox is an AES-256-GCM authenticated encryption wrapper around a single
// symmetric key. The key is injected at construction time and carries an
// identifier so sealed records can name the key that produced them, which keeps
// a rotation path open: hold one box per key ID and open with the box the
// record names.
type SecretBox struct {
	keyID string
	aead  cipher.AEAD
}

// NewSecretBox derives a 32-byte AES-256 key from the provided key material
// (via SHA-256) and returns a box tagged with keyID.
func NewSecretBox(keyID string, keyMaterial []byte) (*SecretBox, error) {
	if keyID == "" {
		return nil, errors.New("cryptox: key id is required")
	}
	if len(keyMaterial) == 0 {
		return nil, errors.New("cryptox: key material is required")
	}

	sum := sha256.Sum256(keyMaterial)

	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create GCM: %w", err)
	}

	return &SecretBox{keyID: keyID, aead: aead}, nil
}

// LoadSecretBox builds a SecretBox from key material stored in a file. When the
// file does not exist, fresh random material is generated and written so the
// key survives restarts.
func LoadSecretBox(keyID, path string) (*SecretBox, error) {
	material, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("cryptox: generate key material: %w", err)
		}
		if err := os.WriteFile(path, material, 0600); err != nil {
			return nil, fmt.Errorf("cryptox: write key file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("cryptox: read key file: %w", err)
	}

	return NewSecretBox(keyID, material)
}

// KeyID returns the identifier of the key this box holds.
func (b *SecretBox) KeyID() string { return b.keyID }

// Seal encrypts and authenticates plaintext. The output layout is
// [nonce][ciphertext+tag] with a fresh random nonce per call.
func (b *SecretBox) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: generate nonce: %w", err)
	}

	return b.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal. Any tampering, truncation, or key
// mismatch yields ErrDecrypt.
func (b *SecretBox) Open(sealed []byte) ([]byte, error) {
	nonceSize := b.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrDecrypt
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}

	return plaintext, nil
}
