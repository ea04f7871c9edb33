package mfa

import (
	"context"

	"github.com/google/uuid"

	"github.com/habitforge/mfa-service/pkg/otpgen"
)

// RegenerateRecoveryCodes replaces the user's batch with a fresh one and
// returns the plaintext codes exactly once. Requires an active factor;
// backup codes without a factor to back up are meaningless.
func (s *Service) RegenerateRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, notEnrolledIfMissing(err)
	}
	if !settings.AnyFactorEnabled() {
		return nil, ErrNotEnrolled
	}

	codes, err := s.reissueRecoveryCodes(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.auditLog(ctx, userID, EventRecoveryRegenerated)
	return codes, nil
}

// reissueRecoveryCodes generates a new batch and swaps it in atomically,
// invalidating every code from the previous batch.
func (s *Service) reissueRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	now := s.now()
	plaintext := make([]string, 0, s.cfg.RecoveryCodeCount)
	rows := make([]RecoveryCode, 0, s.cfg.RecoveryCodeCount)

	for i := 0; i < s.cfg.RecoveryCodeCount; i++ {
		code, err := otpgen.RecoveryCode()
		if err != nil {
			return nil, err
		}
		plaintext = append(plaintext, code)
		rows = append(rows, RecoveryCode{
			ID:        uuid.New(),
			UserID:    userID,
			CodeHash:  otpgen.Digest(code),
			CreatedAt: now,
		})
	}

	if err := s.store.ReplaceRecoveryCodes(ctx, userID, rows); err != nil {
		return nil, err
	}
	return plaintext, nil
}
