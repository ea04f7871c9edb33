package mfa

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/habitforge/mfa-service/pkg/audit"
	"github.com/habitforge/mfa-service/pkg/otpgen"
	"github.com/habitforge/mfa-service/pkg/totp"
)

// VerifyRequest bundles the candidate proofs for one verification call.
// Any subset may be present; strategies are evaluated in a fixed
// priority order.
type VerifyRequest struct {
	TOTPCode     string
	EmailCode    string
	RecoveryCode string
	TrustDevice  bool
	DeviceLabel  string
}

// VerifyResult reports which strategy satisfied the check and, when
// device trust was requested, the freshly minted plaintext token. The
// token appears here once and is never recoverable afterwards.
type VerifyResult struct {
	Method      string
	DeviceToken string
}

type verifyOutcome int

const (
	outcomeSkipped verifyOutcome = iota
	outcomePassed
	outcomeFailed
	outcomeRateLimited
)

// Verify judges the request against the user's enabled factors. The
// strategy table runs in order (TOTP, email code, recovery code) and
// accepts on the first match, but evaluation side effects are not
// short-circuited: a failing email candidate still increments the
// attempt counter even when a TOTP candidate already failed in the same
// call. If no strategy passes the call fails with ErrInvalidCredential,
// or ErrRateLimited when the email channel refused to even compare.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, req VerifyRequest) (*VerifyResult, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, notEnrolledIfMissing(err)
	}
	if !settings.AnyFactorEnabled() {
		return nil, ErrNotEnrolled
	}

	strategies := []struct {
		method string
		run    func(context.Context) (verifyOutcome, error)
	}{
		{method: MethodTOTP, run: func(ctx context.Context) (verifyOutcome, error) {
			return s.verifyTOTP(ctx, settings, req.TOTPCode)
		}},
		{method: MethodEmail, run: func(ctx context.Context) (verifyOutcome, error) {
			return s.verifyEmailCode(ctx, settings, req.EmailCode)
		}},
		{method: MethodRecovery, run: func(ctx context.Context) (verifyOutcome, error) {
			return s.verifyRecoveryCode(ctx, userID, req.RecoveryCode)
		}},
	}

	rateLimited := false
	for _, strategy := range strategies {
		outcome, err := strategy.run(ctx)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case outcomePassed:
			return s.verifySucceeded(ctx, userID, strategy.method, req)
		case outcomeRateLimited:
			rateLimited = true
		}
	}

	if rateLimited {
		s.auditFailure(ctx, userID, EventFailedAttempt, ErrRateLimited)
		return nil, ErrRateLimited
	}
	s.auditFailure(ctx, userID, EventFailedAttempt, ErrInvalidCredential)
	return nil, ErrInvalidCredential
}

func (s *Service) verifyTOTP(_ context.Context, settings *TwoFactorSettings, code string) (verifyOutcome, error) {
	if code == "" || !settings.TOTPEnabled {
		return outcomeSkipped, nil
	}
	secret, err := totp.OpenSecret(settings.TOTPSecret, s.encKey)
	if err != nil {
		return outcomeSkipped, err
	}
	if totp.VerifyAt(secret, code, s.now(), s.cfg.VerifyWindow) {
		return outcomePassed, nil
	}
	return outcomeFailed, nil
}

func (s *Service) verifyEmailCode(ctx context.Context, settings *TwoFactorSettings, code string) (verifyOutcome, error) {
	if code == "" || !settings.EmailEnabled {
		return outcomeSkipped, nil
	}
	switch err := s.checkEmailCode(ctx, settings, code); {
	case err == nil:
		return outcomePassed, nil
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited, nil
	case errors.Is(err, ErrInvalidCredential):
		return outcomeFailed, nil
	default:
		return outcomeSkipped, err
	}
}

func (s *Service) verifyRecoveryCode(ctx context.Context, userID uuid.UUID, code string) (verifyOutcome, error) {
	if code == "" {
		return outcomeSkipped, nil
	}
	consumed, err := s.store.ConsumeRecoveryCode(ctx, userID, otpgen.Digest(code), s.now())
	if err != nil {
		return outcomeSkipped, err
	}
	if consumed {
		return outcomePassed, nil
	}
	return outcomeFailed, nil
}

func (s *Service) verifySucceeded(ctx context.Context, userID uuid.UUID, method string, req VerifyRequest) (*VerifyResult, error) {
	result := &VerifyResult{Method: method}

	if req.TrustDevice {
		token, err := s.issueTrustedDevice(ctx, userID, req.DeviceLabel)
		if err != nil {
			return nil, err
		}
		result.DeviceToken = token
	}

	s.auditLog(ctx, userID, EventVerified, audit.WithMetadata("method", method))
	return result, nil
}
