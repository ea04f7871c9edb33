package mfa

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/habitforge/mfa-service/pkg/audit"
	"github.com/habitforge/mfa-service/pkg/otpgen"
)

// issueTrustedDevice mints a bypass token with the configured lifetime.
// Only the digest is persisted; the plaintext goes back to the caller
// once and is gone.
func (s *Service) issueTrustedDevice(ctx context.Context, userID uuid.UUID, label string) (string, error) {
	token, err := otpgen.DeviceToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	device := &TrustedDevice{
		ID:          uuid.New(),
		UserID:      userID,
		TokenHash:   otpgen.Digest(token),
		DeviceLabel: label,
		CreatedAt:   now,
		LastUsedAt:  now,
		ExpiresAt:   now.Add(s.cfg.TrustedDeviceTTL),
	}
	if err := s.store.CreateTrustedDevice(ctx, device); err != nil {
		return "", err
	}

	s.auditLog(ctx, userID, EventDeviceTrusted, audit.WithMetadata("device_id", device.ID.String()))
	return token, nil
}

// CheckTrustedDevice reports whether the presented token matches a
// live trusted device. A hit refreshes LastUsedAt. A miss is just "not
// trusted": absent and expired devices are indistinguishable, and
// nothing here ever errors to the caller.
func (s *Service) CheckTrustedDevice(ctx context.Context, userID uuid.UUID, token string) bool {
	if token == "" {
		return false
	}
	device, err := s.store.FindTrustedDevice(ctx, userID, otpgen.Digest(token), s.now())
	if err != nil {
		if !errors.Is(err, ErrDeviceNotFound) {
			s.log.ErrorContext(ctx, "trusted device lookup failed", "error", err)
		}
		return false
	}
	if err := s.store.TouchTrustedDevice(ctx, device.ID, s.now()); err != nil {
		s.log.ErrorContext(ctx, "trusted device touch failed", "error", err)
	}
	return true
}

// ListTrustedDevices returns the user's devices, newest first.
func (s *Service) ListTrustedDevices(ctx context.Context, userID uuid.UUID) ([]TrustedDevice, error) {
	return s.store.ListTrustedDevices(ctx, userID)
}

// RevokeTrustedDevice deletes one device by id.
func (s *Service) RevokeTrustedDevice(ctx context.Context, userID, deviceID uuid.UUID) error {
	deleted, err := s.store.DeleteTrustedDevice(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrDeviceNotFound
	}
	s.auditLog(ctx, userID, EventDeviceRevoked, audit.WithMetadata("device_id", deviceID.String()))
	return nil
}

// RevokeAllTrustedDevices deletes every device of the user.
func (s *Service) RevokeAllTrustedDevices(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteAllTrustedDevices(ctx, userID); err != nil {
		return err
	}
	s.auditLog(ctx, userID, EventAllDevicesRevoked)
	return nil
}
