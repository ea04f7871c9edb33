package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitforge/mfa-service/pkg/audit"
)

// AuditStorage appends security events to the security_events table.
// Write-only: the service never reads the trail back.
type AuditStorage struct {
	pool *pgxpool.Pool
}

// NewAuditStorage creates the sink.
func NewAuditStorage(pool *pgxpool.Pool) *AuditStorage {
	if pool == nil {
		panic("postgres: pool cannot be nil")
	}
	return &AuditStorage{pool: pool}
}

func (s *AuditStorage) Store(ctx context.Context, event audit.Event) error {
	var metadata []byte
	if len(event.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(event.Metadata); err != nil {
			return err
		}
	}

	const query = `
		INSERT INTO security_events (id, user_id, action, result, error, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.Action,
		string(event.Result),
		event.Error,
		metadata,
		event.CreatedAt,
	)
	return err
}

var _ audit.Storage = (*AuditStorage)(nil)
