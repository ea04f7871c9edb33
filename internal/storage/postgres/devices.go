package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/habitforge/mfa-service/internal/mfa"
	"github.com/habitforge/mfa-service/pkg/pg"
)

func (s *Store) CreateTrustedDevice(ctx context.Context, device *mfa.TrustedDevice) error {
	const query = `
		INSERT INTO trusted_devices (
			id, user_id, token_hash, device_label,
			created_at, last_used_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		device.ID,
		device.UserID,
		device.TokenHash,
		device.DeviceLabel,
		device.CreatedAt,
		device.LastUsedAt,
		device.ExpiresAt,
	)
	return err
}

func (s *Store) FindTrustedDevice(ctx context.Context, userID uuid.UUID, tokenHash string, now time.Time) (*mfa.TrustedDevice, error) {
	const query = `
		SELECT id, user_id, token_hash, device_label, created_at, last_used_at, expires_at
		FROM trusted_devices
		WHERE user_id = $1 AND token_hash = $2 AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1`

	var device mfa.TrustedDevice
	err := s.pool.QueryRow(ctx, query, userID, tokenHash, now).Scan(
		&device.ID,
		&device.UserID,
		&device.TokenHash,
		&device.DeviceLabel,
		&device.CreatedAt,
		&device.LastUsedAt,
		&device.ExpiresAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, mfa.ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (s *Store) TouchTrustedDevice(ctx context.Context, deviceID uuid.UUID, at time.Time) error {
	const query = `UPDATE trusted_devices SET last_used_at = $2 WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, deviceID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mfa.ErrDeviceNotFound
	}
	return nil
}

func (s *Store) ListTrustedDevices(ctx context.Context, userID uuid.UUID) ([]mfa.TrustedDevice, error) {
	const query = `
		SELECT id, user_id, token_hash, device_label, created_at, last_used_at, expires_at
		FROM trusted_devices
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (mfa.TrustedDevice, error) {
		var device mfa.TrustedDevice
		err := row.Scan(
			&device.ID,
			&device.UserID,
			&device.TokenHash,
			&device.DeviceLabel,
			&device.CreatedAt,
			&device.LastUsedAt,
			&device.ExpiresAt,
		)
		return device, err
	})
}

func (s *Store) DeleteTrustedDevice(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) (bool, error) {
	const query = `DELETE FROM trusted_devices WHERE user_id = $1 AND id = $2`

	tag, err := s.pool.Exec(ctx, query, userID, deviceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteAllTrustedDevices(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM trusted_devices WHERE user_id = $1`, userID)
	return err
}
