package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
)

const nonceSize = 12

// KeyEnvVar names the environment variable holding the base64-encoded
// 32-byte data key.
const KeyEnvVar = "TABLEGATE_DATA_KEY"

// Cipher encrypts connection passwords at rest with AES-256-GCM.
// The stored form is base64(nonce || ciphertext || tag).
type Cipher struct {
	aead cipher.AEAD
}

// New creates a Cipher from a 32-byte key.
func New(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("data key must be 32 bytes, got %d", len(key))
	}

	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// FromEnv creates a Cipher from the TABLEGATE_DATA_KEY environment variable.
func FromEnv() (*Cipher, error) {
	keyB64, ok := os.LookupEnv(KeyEnvVar)
	if !ok {
		return nil, fmt.Errorf("%s environment variable is required", KeyEnvVar)
	}

	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", KeyEnvVar, err)
	}

	return New(key)
}

// RandomKey generates a fresh 32-byte data key.
func RandomKey() ([]byte, error) {
	return randomBytes(32)
}

func randomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}
	return value, nil
}

// EncryptString encrypts a plaintext password for storage.
func (c *Cipher) EncryptString(plain string) (string, error) {
	// Never use more than 2^32 random nonces with a given key because of
	// the risk of a repeat.
	nonce, err := randomBytes(nonceSize)
	if err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plain), nil)

	packed := make([]byte, 0, nonceSize+len(sealed))
	packed = append(packed, nonce...)
	packed = append(packed, sealed...)

	return base64.StdEncoding.EncodeToString(packed), nil
}

// DecryptString reverses EncryptString.
func (c *Cipher) DecryptString(encrypted string) (string, error) {
	packed, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	if len(packed) < nonceSize {
		return "", errors.New("ciphertext is too short")
	}

	nonce, sealed := packed[:nonceSize], packed[nonceSize:]

	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}
