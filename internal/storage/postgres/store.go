package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitforge/mfa-service/internal/mfa"
	"github.com/habitforge/mfa-service/pkg/pg"
)

// Store implements mfa.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates the store. The pool must already be connected.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("postgres: pool cannot be nil")
	}
	return &Store{pool: pool}
}

func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (*mfa.TwoFactorSettings, error) {
	const query = `
		SELECT user_id, totp_enabled, totp_secret, email_enabled,
		       email_code_hash, email_code_expires_at, email_code_attempts,
		       created_at, updated_at
		FROM two_factor_settings
		WHERE user_id = $1`

	var settings mfa.TwoFactorSettings
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.TOTPEnabled,
		&settings.TOTPSecret,
		&settings.EmailEnabled,
		&settings.EmailCodeHash,
		&settings.EmailCodeExpiresAt,
		&settings.EmailCodeAttempts,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, mfa.ErrSettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings *mfa.TwoFactorSettings) error {
	const query = `
		INSERT INTO two_factor_settings (
			user_id, totp_enabled, totp_secret, email_enabled,
			email_code_hash, email_code_expires_at, email_code_attempts,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			totp_enabled = EXCLUDED.totp_enabled,
			totp_secret = EXCLUDED.totp_secret,
			email_enabled = EXCLUDED.email_enabled,
			email_code_hash = EXCLUDED.email_code_hash,
			email_code_expires_at = EXCLUDED.email_code_expires_at,
			email_code_attempts = EXCLUDED.email_code_attempts,
			updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		settings.UserID,
		settings.TOTPEnabled,
		settings.TOTPSecret,
		settings.EmailEnabled,
		settings.EmailCodeHash,
		settings.EmailCodeExpiresAt,
		settings.EmailCodeAttempts,
		settings.CreatedAt,
		settings.UpdatedAt,
	)
	return err
}

func (s *Store) SetEmailCode(ctx context.Context, userID uuid.UUID, codeHash string, expiresAt time.Time) error {
	const query = `
		UPDATE two_factor_settings
		SET email_code_hash = $2, email_code_expires_at = $3,
		    email_code_attempts = 0, updated_at = now()
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID, codeHash, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mfa.ErrSettingsNotFound
	}
	return nil
}

func (s *Store) ClearEmailCode(ctx context.Context, userID uuid.UUID) error {
	const query = `
		UPDATE two_factor_settings
		SET email_code_hash = '', email_code_expires_at = NULL,
		    email_code_attempts = 0, updated_at = now()
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mfa.ErrSettingsNotFound
	}
	return nil
}

// ClaimEmailAttempt gates the increment on the cap inside the UPDATE
// itself: of N concurrent claims against the same row, at most limit
// ever see an affected row.
func (s *Store) ClaimEmailAttempt(ctx context.Context, userID uuid.UUID, limit int) (bool, error) {
	const query = `
		UPDATE two_factor_settings
		SET email_code_attempts = email_code_attempts + 1, updated_at = now()
		WHERE user_id = $1 AND email_code_attempts < $2
		RETURNING email_code_attempts`

	var attempts int
	err := s.pool.QueryRow(ctx, query, userID, limit).Scan(&attempts)
	if err != nil {
		// No row means either a missing settings row or an exhausted
		// counter; both answer "no slot".
		if pg.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ mfa.Store = (*Store)(nil)
