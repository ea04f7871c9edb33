package mfa

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/habitforge/mfa-service/pkg/audit"
	"github.com/habitforge/mfa-service/pkg/email"
	"github.com/habitforge/mfa-service/pkg/totp"
)

// Service orchestrates TOTP and email second factors, recovery codes,
// and trusted devices. Every method is a short-lived request: all state
// lives in the Store, so rate limits and one-time-use guarantees survive
// restarts and hold across concurrent handler instances.
type Service struct {
	cfg    Config
	store  Store
	mailer email.EmailSender
	audit  audit.Logger
	log    *slog.Logger
	encKey []byte
	now    func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates the service. The secret encryption key from cfg must be a
// base64-encoded 32-byte key.
func New(cfg Config, store Store, mailer email.EmailSender, auditLog audit.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("mfa: store is required")
	}
	if mailer == nil {
		return nil, errors.New("mfa: mailer is required")
	}
	if auditLog == nil {
		return nil, errors.New("mfa: audit logger is required")
	}
	encKey, err := totp.DecodeKey(cfg.SecretEncryptionKey)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:    cfg,
		store:  store,
		mailer: mailer,
		audit:  auditLog,
		log:    slog.Default(),
		encKey: encKey,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StatusInfo is the caller-facing factor summary.
type StatusInfo struct {
	TOTPEnabled            bool
	TOTPPending            bool
	EmailEnabled           bool
	RecoveryCodesRemaining int
	TrustedDevice          bool
}

// Status reports the user's factor state. When deviceToken is non-empty
// it is checked against the trusted-device records; a hit refreshes the
// device's LastUsedAt. A missing settings row simply means nothing is
// enrolled yet.
func (s *Service) Status(ctx context.Context, userID uuid.UUID, deviceToken string) (*StatusInfo, error) {
	info := &StatusInfo{}

	settings, err := s.store.GetSettings(ctx, userID)
	switch {
	case errors.Is(err, ErrSettingsNotFound):
		// Lazily created; absence is a valid "nothing enrolled" state.
	case err != nil:
		return nil, err
	default:
		info.TOTPEnabled = settings.TOTPEnabled
		info.TOTPPending = settings.TOTPPending()
		info.EmailEnabled = settings.EmailEnabled
	}

	remaining, err := s.store.CountUnusedRecoveryCodes(ctx, userID)
	if err != nil {
		return nil, err
	}
	info.RecoveryCodesRemaining = remaining

	if deviceToken != "" {
		info.TrustedDevice = s.CheckTrustedDevice(ctx, userID, deviceToken)
	}
	return info, nil
}

// getOrCreateSettings loads the user's settings, creating the lazy row
// on first touch.
func (s *Service) getOrCreateSettings(ctx context.Context, userID uuid.UUID) (*TwoFactorSettings, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return nil, err
	}

	now := s.now()
	settings = &TwoFactorSettings{UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// purgeBypassCredentials removes recovery codes and trusted devices once
// no live factor remains. A bypass credential without a factor to bypass
// must not survive.
func (s *Service) purgeBypassCredentials(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteRecoveryCodes(ctx, userID); err != nil {
		return err
	}
	if err := s.store.DeleteAllTrustedDevices(ctx, userID); err != nil {
		return err
	}
	return nil
}

// auditLog appends a success event; failures to write the trail are
// logged but do not fail the user-facing call.
func (s *Service) auditLog(ctx context.Context, userID uuid.UUID, action string, opts ...audit.EventOption) {
	if err := s.audit.Log(ctx, userID.String(), action, opts...); err != nil {
		s.log.ErrorContext(ctx, "audit log failed", "action", action, "error", err)
	}
}

func (s *Service) auditFailure(ctx context.Context, userID uuid.UUID, action string, cause error, opts ...audit.EventOption) {
	if err := s.audit.LogFailure(ctx, userID.String(), action, cause, opts...); err != nil {
		s.log.ErrorContext(ctx, "audit log failed", "action", action, "error", err)
	}
}
