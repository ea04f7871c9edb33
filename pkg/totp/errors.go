package totp

import "errors"

var (
	ErrFailedToGenerateSecretKey = errors.New("failed to generate TOTP secret key")
	ErrMissingSecret             = errors.New("missing secret")
	ErrMissingAccountName        = errors.New("missing account name")
	ErrMissingIssuer             = errors.New("missing issuer")

	ErrFailedToSealSecret  = errors.New("failed to seal TOTP secret")
	ErrFailedToOpenSecret  = errors.New("failed to open sealed TOTP secret")
	ErrCiphertextTooShort  = errors.New("ciphertext too short")
	ErrInvalidKeyLength    = errors.New("encryption key must be 32 bytes")
	ErrEncryptionKeyNotSet = errors.New("TOTP encryption key not set")
)
