package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "ponto/pkg/domain"
	"ponto/pkg/platform/sentinel"
)

// PostgresAttemptStore reserves attempt tokens via a unique row insert, so a
// duplicate submission loses the race at the database rather than uploading
// a second artifact.
type PostgresAttemptStore struct {
	db *sql.DB
}

// NewPostgresAttempts constructs a PostgreSQL-backed attempt registry.
func NewPostgresAttempts(db *sql.DB) *PostgresAttemptStore {
	return &PostgresAttemptStore{db: db}
}

func (s *PostgresAttemptStore) Reserve(ctx context.Context, attemptID id.AttemptID) error {
	query := `
		INSERT INTO checkin_attempts (attempt_id, reserved_at)
		VALUES ($1, now())
		ON CONFLICT (attempt_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(attemptID))
	if err != nil {
		return fmt.Errorf("reserve attempt: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve attempt: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *PostgresAttemptStore) Release(ctx context.Context, attemptID id.AttemptID) error {
	query := `DELETE FROM checkin_attempts WHERE attempt_id = $1`
	if _, err := s.db.ExecContext(ctx, query, uuid.UUID(attemptID)); err != nil {
		return fmt.Errorf("release attempt: %w", err)
	}
	return nil
}
