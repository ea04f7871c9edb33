package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/habitforge/mfa-service/internal/mfa"
)

func (s *Store) ReplaceRecoveryCodes(ctx context.Context, userID uuid.UUID, codes []mfa.RecoveryCode) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM recovery_codes WHERE user_id = $1`, userID); err != nil {
		return err
	}

	const insert = `
		INSERT INTO recovery_codes (id, user_id, code_hash, created_at)
		VALUES ($1, $2, $3, $4)`
	for _, code := range codes {
		if _, err := tx.Exec(ctx, insert, code.ID, code.UserID, code.CodeHash, code.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ConsumeRecoveryCode is a single conditional UPDATE: of two concurrent
// attempts with the same code exactly one sees an affected row.
func (s *Store) ConsumeRecoveryCode(ctx context.Context, userID uuid.UUID, codeHash string, usedAt time.Time) (bool, error) {
	const query = `
		UPDATE recovery_codes
		SET used_at = $3
		WHERE user_id = $1 AND code_hash = $2 AND used_at IS NULL`

	tag, err := s.pool.Exec(ctx, query, userID, codeHash, usedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) CountUnusedRecoveryCodes(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `
		SELECT count(*) FROM recovery_codes
		WHERE user_id = $1 AND used_at IS NULL`

	var count int
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) DeleteRecoveryCodes(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM recovery_codes WHERE user_id = $1`, userID)
	return err
}
