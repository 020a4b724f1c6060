// Package cryptox is the black-box encryption primitive spec.md treats as a
// given: AES-256-GCM with a random nonce prepended to the ciphertext. Key
// management, rotation, and HSM integration are explicitly out of scope
// (spec §1) — this package only implements the narrow Encrypt/Decrypt
// interface every stage depends on.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrCiphertextTooShort is returned when a ciphertext is too small to
// contain a nonce, meaning it was never produced by Encrypt.
var ErrCiphertextTooShort = errors.New("cryptox: ciphertext too short")

// Cipher encrypts and decrypts sensitive staging fields with a single
// AES-256-GCM key.
type Cipher struct {
	gcm cipher.AEAD
}

// New builds a Cipher from a raw 32-byte AES-256 key.
func New(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: new gcm: %w", err)
	}
	return &Cipher{gcm: gcm}, nil
}

// NewFromBase64Key builds a Cipher from a base64-encoded 32-byte key, the
// shape configuration carries the key in (config.CryptoConfig.KeyBase64).
func NewFromBase64Key(b64 string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("cryptox: decode key: %w", err)
	}
	return New(key)
}

// Encrypt seals plaintext, returning nonce||ciphertext||tag.
func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: read nonce: %w", err)
	}
	return c.gcm.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *Cipher) Decrypt(ciphertext []byte) (string, error) {
	ns := c.gcm.NonceSize()
	if len(ciphertext) < ns {
		return "", ErrCiphertextTooShort
	}
	nonce, sealed := ciphertext[:ns], ciphertext[ns:]
	plaintext, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("cryptox: open: %w", err)
	}
	return string(plaintext), nil
}

// EncryptToBase64 is a convenience wrapper for call sites that need a
// wire-safe string instead of raw bytes (e.g. re-encrypting a credential
// into a task payload, per spec §4.1 op 4: "ciphertext only on the wire").
func (c *Cipher) EncryptToBase64(plaintext string) (string, error) {
	b, err := c.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecryptFromBase64 is the inverse of EncryptToBase64.
func (c *Cipher) DecryptFromBase64(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("cryptox: decode base64: %w", err)
	}
	return c.Decrypt(b)
}
