package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// KeySize is the required key size for AES-256.
const KeySize = 32

// SealSecret encrypts a TOTP secret with AES-256-GCM for storage. The
// secret is the one credential in the system that cannot be stored as a
// one-way digest, so it goes to the database sealed instead. Returns the
// nonce-prefixed ciphertext base64-encoded.
func SealSecret(secret string, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", errors.Join(ErrFailedToSealSecret, ErrInvalidKeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(secret), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenSecret decrypts a secret previously sealed with SealSecret.
func OpenSecret(sealed string, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", errors.Join(ErrFailedToOpenSecret, ErrInvalidKeyLength)
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.Join(ErrFailedToOpenSecret, ErrCiphertextTooShort)
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}
	return string(plain), nil
}

// DecodeKey decodes a base64-encoded 32-byte encryption key, typically
// sourced from configuration.
func DecodeKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrEncryptionKeyNotSet
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrInvalidKeyLength, err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	return key, nil
}
