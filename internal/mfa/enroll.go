package mfa

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/habitforge/mfa-service/pkg/qrcode"
	"github.com/habitforge/mfa-service/pkg/totp"
)

// Enrollment is the material handed to the caller when TOTP setup
// begins. The secret appears here once, for manual entry; afterwards it
// exists only sealed at rest.
type Enrollment struct {
	Secret string
	URI    string
	QRCode string // data:image/png;base64 URI of the enrollment QR
}

// BeginEnroll generates a fresh shared secret, stores it sealed with
// enabled=false, and returns the enrollment material. Calling it again
// before confirmation replaces the pending secret.
func (s *Service) BeginEnroll(ctx context.Context, userID uuid.UUID, accountEmail string) (*Enrollment, error) {
	settings, err := s.getOrCreateSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, err
	}
	sealed, err := totp.SealSecret(secret, s.encKey)
	if err != nil {
		return nil, err
	}

	settings.TOTPSecret = sealed
	settings.TOTPEnabled = false
	settings.UpdatedAt = s.now()
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	uri, err := totp.URI(totp.Params{
		Secret:      secret,
		AccountName: accountEmail,
		Issuer:      s.cfg.Issuer,
	})
	if err != nil {
		return nil, err
	}
	qr, err := qrcode.DataURI(uri, 0)
	if err != nil {
		return nil, err
	}

	s.auditLog(ctx, userID, EventEnrollStarted)
	return &Enrollment{Secret: secret, URI: uri, QRCode: qr}, nil
}

// ConfirmEnroll validates code against the pending secret and, on
// success, activates TOTP and (re)issues the recovery-code batch. The
// returned plaintext codes are shown to the caller exactly once. A
// failed confirmation leaves the pending secret in place.
func (s *Service) ConfirmEnroll(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, notEnrolledIfMissing(err)
	}
	if settings.TOTPSecret == "" {
		return nil, ErrNotEnrolled
	}

	secret, err := totp.OpenSecret(settings.TOTPSecret, s.encKey)
	if err != nil {
		return nil, err
	}
	if !totp.VerifyAt(secret, code, s.now(), s.cfg.VerifyWindow) {
		s.auditFailure(ctx, userID, EventFailedAttempt, ErrInvalidCredential)
		return nil, ErrInvalidCredential
	}

	settings.TOTPEnabled = true
	settings.UpdatedAt = s.now()
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	codes, err := s.reissueRecoveryCodes(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.auditLog(ctx, userID, EventTOTPEnabled)
	return codes, nil
}

// DisableTOTP clears the TOTP factor. When no factor remains enabled
// afterwards, all recovery codes and trusted devices are purged.
func (s *Service) DisableTOTP(ctx context.Context, userID uuid.UUID) error {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return notEnrolledIfMissing(err)
	}
	if !settings.TOTPEnabled && settings.TOTPSecret == "" {
		return ErrNotEnrolled
	}

	settings.TOTPEnabled = false
	settings.TOTPSecret = ""
	settings.UpdatedAt = s.now()
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return err
	}

	if !settings.AnyFactorEnabled() {
		if err := s.purgeBypassCredentials(ctx, userID); err != nil {
			return err
		}
	}

	s.auditLog(ctx, userID, EventTOTPDisabled)
	return nil
}

// notEnrolledIfMissing maps a missing settings row onto ErrNotEnrolled,
// which is what the absence means to the caller.
func notEnrolledIfMissing(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSettingsNotFound) {
		return ErrNotEnrolled
	}
	return err
}
