// Package fieldcipher protects individual sensitive values (card numbers and the like)
// with AES-256-GCM before they reach storage.
//
// Wire format: base64(iv[12] || ciphertext || tag[16]), one opaque string column.
package fieldcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/and161185/salesgate/internal/errs"
)

// Params
const (
	KeyLen   = 32
	IVLen    = 12
	TagLen   = 16
	minSealed = IVLen + TagLen
)

// Cipher is safe for concurrent use; the key is fixed at construction.
type Cipher struct {
	aead cipher.AEAD
}

// New builds a Cipher from a base64-encoded 256-bit key.
func New(keyB64 string) (*Cipher, error) {
	keyB64 = strings.TrimSpace(keyB64)
	if keyB64 == "" {
		return nil, fmt.Errorf("%w: encryption key is missing", errs.ErrConfiguration)
	}
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not valid base64", errs.ErrConfiguration)
	}
	return NewWithKey(key)
}

// NewWithKey builds a Cipher from raw key bytes, which must be exactly 32 bytes long.
func NewWithKey(key []byte) (*Cipher, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("%w: encryption key must be %d bytes, got %d", errs.ErrConfiguration, KeyLen, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, IVLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random IV.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: empty plaintext", errs.ErrInvalidInput)
	}
	iv := make([]byte, IVLen, IVLen+len(plaintext)+TagLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("read iv: %w", err)
	}
	out := c.aead.Seal(iv, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a value produced by Encrypt.
// Malformed transport encoding yields ErrInvalidInput; a tag mismatch yields ErrAuthenticationFailure.
func (c *Cipher) Decrypt(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: empty ciphertext", errs.ErrInvalidInput)
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not valid base64", errs.ErrInvalidInput)
	}
	if len(raw) < minSealed {
		return "", fmt.Errorf("%w: ciphertext too short", errs.ErrInvalidInput)
	}
	pt, err := c.aead.Open(nil, raw[:IVLen], raw[IVLen:], nil)
	if err != nil {
		return "", errs.ErrAuthenticationFailure
	}
	return string(pt), nil
}
