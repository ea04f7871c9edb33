package mfa

import (
	"time"

	"github.com/google/uuid"
)

// TwoFactorSettings is the per-user factor state. It is created lazily
// on first enrollment and never hard-deleted; disabling a factor resets
// its fields instead.
type TwoFactorSettings struct {
	UserID uuid.UUID

	TOTPEnabled bool
	// TOTPSecret holds the AES-256-GCM sealed shared secret, empty when
	// no enrollment exists. A non-empty secret with TOTPEnabled=false
	// means enrollment is awaiting confirmation.
	TOTPSecret string

	EmailEnabled bool
	// Email one-time code state: digest of the outstanding code, its
	// expiry, and how many failed comparisons it has absorbed. Attempts
	// reset to zero whenever a new code is issued or the code is
	// consumed.
	EmailCodeHash      string
	EmailCodeExpiresAt *time.Time
	EmailCodeAttempts  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TOTPPending reports whether an enrollment has begun but not been
// confirmed yet.
func (s *TwoFactorSettings) TOTPPending() bool {
	return !s.TOTPEnabled && s.TOTPSecret != ""
}

// AnyFactorEnabled reports whether at least one live factor is active.
func (s *TwoFactorSettings) AnyFactorEnabled() bool {
	return s.TOTPEnabled || s.EmailEnabled
}

// RecoveryCode is one hashed backup code. A batch of ten is issued at
// activation; each row validates at most once.
type RecoveryCode struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CodeHash  string
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TrustedDevice is a long-lived bypass credential. Only the token digest
// is stored; the plaintext is returned to the caller exactly once at
// issue time.
type TrustedDevice struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	TokenHash   string
	DeviceLabel string
	CreatedAt   time.Time
	LastUsedAt  time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the device token is past its lifetime at now.
func (d *TrustedDevice) Expired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}
