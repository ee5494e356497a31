package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

const SchemeAESGCM = "aes-256-gcm"

// CipherCodec is the reversible-cipher codec: secrets are encrypted
// with AES-256-GCM under a process-wide key and decrypted for a direct
// plaintext comparison at login.
//
// This is the legacy variant. The plaintext transits memory at
// comparison time and the equality check is an ordinary string compare,
// which is not constant time. Kept only for stores written under this
// scheme; new deployments should use the bcrypt codec.
type CipherCodec struct {
	gcm cipher.AEAD
}

// NewCipher creates the reversible codec. The key is hashed with
// SHA-256 to produce a consistent 32-byte AES key.
func NewCipher(key string) (*CipherCodec, error) {
	if key == "" {
		return nil, errors.New("secret: cipher key must not be empty")
	}

	hasher := sha256.New()
	hasher.Write([]byte(key))
	keyBytes := hasher.Sum(nil)

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("secret: create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secret: create GCM: %w", err)
	}

	return &CipherCodec{gcm: gcm}, nil
}

func (c *CipherCodec) Scheme() string {
	return SchemeAESGCM
}

func (c *CipherCodec) Protect(plaintext string) (string, error) {
	if len(plaintext) < minPasswordLength {
		return "", errors.New("secret: password too short")
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secret: generate nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (c *CipherCodec) Verify(stored, presented string) error {
	plaintext, err := c.decrypt(stored)
	if err != nil {
		return fmt.Errorf("secret: unreadable stored secret: %w", err)
	}
	if plaintext != presented {
		return auth.ErrBadPassword
	}
	return nil
}

func (c *CipherCodec) decrypt(stored string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}

	return string(plaintext), nil
}
