package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters for key derivation
	Argon2Time      uint32 = 1
	Argon2Memory    uint32 = 64 * 1024 // 64 MB
	Argon2Threads   uint8  = 4
	Argon2KeyLength uint32 = 32 // 256 bits for AES-256

	// Salt length for key derivation
	SaltLength = 32
)

var (
	ErrInvalidKeyLength  = errors.New("invalid key length")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrMalformedEnvelope = errors.New("malformed ciphertext envelope")
)

// GenerateSalt generates a cryptographically secure random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an encryption key from a secret and salt using Argon2id
func DeriveKey(secret string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(secret),
		salt,
		Argon2Time,
		Argon2Memory,
		Argon2Threads,
		Argon2KeyLength,
	)
}

// FieldCipher encrypts and decrypts sensitive applicant fields (home address,
// phone number, financials) before they touch the database. Each Encrypt call
// derives a fresh per-value key, so the stored envelope is self-contained:
// base64(salt).base64(nonce).base64(ciphertext)
type FieldCipher struct {
	secret string
}

// NewFieldCipher creates a cipher bound to the application encryption secret
func NewFieldCipher(secret string) (*FieldCipher, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is empty")
	}
	return &FieldCipher{secret: secret}, nil
}

// Encrypt seals a plaintext field into a storable envelope string
func (f *FieldCipher) Encrypt(plaintext string) (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}

	key := DeriveKey(f.secret, salt)

	encrypted, nonce, err := sealAESGCM([]byte(plaintext), key)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(encrypted),
	}, "."), nil
}

// Decrypt opens an envelope produced by Encrypt
func (f *FieldCipher) Decrypt(envelope string) (string, error) {
	if envelope == "" {
		return "", nil
	}

	parts := strings.Split(envelope, ".")
	if len(parts) != 3 {
		return "", ErrMalformedEnvelope
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrMalformedEnvelope
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrMalformedEnvelope
	}
	encrypted, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformedEnvelope
	}

	key := DeriveKey(f.secret, salt)

	plaintext, err := openAESGCM(encrypted, nonce, key)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// sealAESGCM encrypts data using AES-256-GCM with a random nonce
func sealAESGCM(data []byte, encryptionKey []byte) (encrypted []byte, nonce []byte, err error) {
	if len(encryptionKey) != 32 {
		return nil, nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	encrypted = gcm.Seal(nil, nonce, data, nil)
	return encrypted, nonce, nil
}

// openAESGCM decrypts data using AES-256-GCM
func openAESGCM(encrypted []byte, nonce []byte, encryptionKey []byte) ([]byte, error) {
	if len(encryptionKey) != 32 {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, encrypted, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}
