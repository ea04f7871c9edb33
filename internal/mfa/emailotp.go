package mfa

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/habitforge/mfa-service/pkg/email"
	"github.com/habitforge/mfa-service/pkg/otpgen"
)

// EnableEmail2FA starts email-channel setup by sending a confirmation
// code to the account's registered address. The factor activates only
// after ConfirmEmail2FA succeeds.
func (s *Service) EnableEmail2FA(ctx context.Context, userID uuid.UUID, accountEmail string) error {
	if _, err := s.getOrCreateSettings(ctx, userID); err != nil {
		return err
	}
	return s.SendEmailCode(ctx, userID, accountEmail)
}

// SendEmailCode issues a fresh 6-digit code with a 5-minute lifetime and
// delivers it. A second send within the resend cooldown is refused with
// ErrRateLimited. The code digest is stored before delivery is
// attempted, so a provider failure surfaces as ErrDeliveryFailed while
// the stored code remains valid for a retried send.
func (s *Service) SendEmailCode(ctx context.Context, userID uuid.UUID, accountEmail string) error {
	if accountEmail == "" {
		return ErrNoEmailAddress
	}

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return notEnrolledIfMissing(err)
	}

	now := s.now()
	if settings.EmailCodeExpiresAt != nil {
		// Issuance time is derived from the stored expiry rather than a
		// separate column, so the cooldown survives restarts.
		issuedAt := settings.EmailCodeExpiresAt.Add(-s.cfg.EmailCodeTTL)
		if now.Sub(issuedAt) < s.cfg.EmailResendCooldown {
			s.auditFailure(ctx, userID, EventEmailCodeSent, ErrRateLimited)
			return ErrRateLimited
		}
	}

	code, err := otpgen.EmailCode()
	if err != nil {
		return err
	}
	expiresAt := now.Add(s.cfg.EmailCodeTTL)
	if err := s.store.SetEmailCode(ctx, userID, otpgen.Digest(code), expiresAt); err != nil {
		return err
	}

	params := email.SendEmailParams{
		SendTo:   accountEmail,
		Subject:  fmt.Sprintf("%s verification code", s.cfg.Issuer),
		BodyHTML: emailCodeBody(s.cfg.Issuer, code),
		Tag:      "2fa-code",
	}
	if err := s.mailer.SendEmail(ctx, params); err != nil {
		s.auditFailure(ctx, userID, EventEmailCodeSent, ErrDeliveryFailed)
		return errors.Join(ErrDeliveryFailed, err)
	}

	s.auditLog(ctx, userID, EventEmailCodeSent)
	return nil
}

// ConfirmEmail2FA validates the emailed code and activates the email
// factor. When TOTP is not already active, a recovery-code batch is
// issued and returned; otherwise the slice is nil.
func (s *Service) ConfirmEmail2FA(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, notEnrolledIfMissing(err)
	}
	if settings.EmailCodeHash == "" {
		return nil, ErrNotEnrolled
	}

	if err := s.checkEmailCode(ctx, settings, code); err != nil {
		if errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrRateLimited) {
			s.auditFailure(ctx, userID, EventFailedAttempt, err)
		}
		return nil, err
	}

	settings.EmailEnabled = true
	settings.UpdatedAt = s.now()
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	var codes []string
	if !settings.TOTPEnabled {
		if codes, err = s.reissueRecoveryCodes(ctx, userID); err != nil {
			return nil, err
		}
	}

	s.auditLog(ctx, userID, EventEmailEnabled)
	return codes, nil
}

// DisableEmail2FA clears the email factor and its outstanding code.
// When no factor remains enabled afterwards, all recovery codes and
// trusted devices are purged.
func (s *Service) DisableEmail2FA(ctx context.Context, userID uuid.UUID) error {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return notEnrolledIfMissing(err)
	}
	if !settings.EmailEnabled && settings.EmailCodeHash == "" {
		return ErrNotEnrolled
	}

	settings.EmailEnabled = false
	settings.EmailCodeHash = ""
	settings.EmailCodeExpiresAt = nil
	settings.EmailCodeAttempts = 0
	settings.UpdatedAt = s.now()
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return err
	}

	if !settings.AnyFactorEnabled() {
		if err := s.purgeBypassCredentials(ctx, userID); err != nil {
			return err
		}
	}

	s.auditLog(ctx, userID, EventEmailDisabled)
	return nil
}

// checkEmailCode compares a candidate against the stored code digest. A
// comparison slot is claimed atomically before the digest is even
// looked at: the EmailMaxAttempts cap and the counter increment are one
// conditional update in the store, so concurrent guesses racing the
// settings read cannot stretch the cap. Once the slots are exhausted
// even a correct candidate is refused until a new code is issued. On
// success the stored code is cleared and attempts reset.
func (s *Service) checkEmailCode(ctx context.Context, settings *TwoFactorSettings, code string) error {
	if settings.EmailCodeHash == "" || settings.EmailCodeExpiresAt == nil {
		return ErrInvalidCredential
	}

	claimed, err := s.store.ClaimEmailAttempt(ctx, settings.UserID, s.cfg.EmailMaxAttempts)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrRateLimited
	}

	now := s.now()
	if !settings.EmailCodeExpiresAt.After(now) || !otpgen.MatchesDigest(code, settings.EmailCodeHash) {
		return ErrInvalidCredential
	}

	if err := s.store.ClearEmailCode(ctx, settings.UserID); err != nil {
		return err
	}
	settings.EmailCodeHash = ""
	settings.EmailCodeExpiresAt = nil
	settings.EmailCodeAttempts = 0
	return nil
}

// emailCodeBody renders the plain transactional message. The code is the
// only dynamic content; nothing else secret belongs in an email body.
func emailCodeBody(issuer, code string) string {
	return fmt.Sprintf(
		`<p>Your %s verification code is:</p><p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p><p>The code expires in 5 minutes. If you did not request it, you can ignore this email.</p>`,
		issuer, code,
	)
}
