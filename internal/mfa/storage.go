package mfa

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistent record store behind the service. Every call is
// scoped to the owning user; implementations must make the counter and
// one-time-use mutations row-atomic so concurrent verification attempts
// cannot double-consume a code or slip past the attempt cap.
type Store interface {
	// GetSettings returns the user's settings or ErrSettingsNotFound.
	GetSettings(ctx context.Context, userID uuid.UUID) (*TwoFactorSettings, error)
	// SaveSettings inserts or updates the settings row.
	SaveSettings(ctx context.Context, settings *TwoFactorSettings) error
	// SetEmailCode stores a new outstanding email code digest and expiry,
	// resetting the attempt counter to zero in the same write.
	SetEmailCode(ctx context.Context, userID uuid.UUID, codeHash string, expiresAt time.Time) error
	// ClearEmailCode removes the outstanding code and resets attempts.
	ClearEmailCode(ctx context.Context, userID uuid.UUID) error
	// ClaimEmailAttempt consumes one comparison slot while the attempt
	// counter is below limit, reporting whether a slot was claimed. The
	// cap check and the increment must be a single conditional update so
	// concurrent attempts cannot exceed limit comparisons per issued
	// code.
	ClaimEmailAttempt(ctx context.Context, userID uuid.UUID, limit int) (bool, error)

	// ReplaceRecoveryCodes deletes the user's existing batch and inserts
	// the new one in a single transaction.
	ReplaceRecoveryCodes(ctx context.Context, userID uuid.UUID, codes []RecoveryCode) error
	// ConsumeRecoveryCode marks the unused code matching codeHash as used
	// and reports whether such a row existed. Absent and already-used
	// codes are indistinguishable to the caller.
	ConsumeRecoveryCode(ctx context.Context, userID uuid.UUID, codeHash string, usedAt time.Time) (bool, error)
	// CountUnusedRecoveryCodes returns how many codes remain.
	CountUnusedRecoveryCodes(ctx context.Context, userID uuid.UUID) (int, error)
	// DeleteRecoveryCodes removes all of the user's codes.
	DeleteRecoveryCodes(ctx context.Context, userID uuid.UUID) error

	// CreateTrustedDevice inserts a device row.
	CreateTrustedDevice(ctx context.Context, device *TrustedDevice) error
	// FindTrustedDevice returns the most recently created non-expired
	// device matching tokenHash, or ErrDeviceNotFound.
	FindTrustedDevice(ctx context.Context, userID uuid.UUID, tokenHash string, now time.Time) (*TrustedDevice, error)
	// TouchTrustedDevice refreshes LastUsedAt.
	TouchTrustedDevice(ctx context.Context, deviceID uuid.UUID, at time.Time) error
	// ListTrustedDevices returns the user's devices, newest first.
	ListTrustedDevices(ctx context.Context, userID uuid.UUID) ([]TrustedDevice, error)
	// DeleteTrustedDevice removes one device and reports whether it existed.
	DeleteTrustedDevice(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) (bool, error)
	// DeleteAllTrustedDevices removes every device of the user.
	DeleteAllTrustedDevices(ctx context.Context, userID uuid.UUID) error
}
