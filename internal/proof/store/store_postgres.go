package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ponto/pkg/platform/sentinel"
)

// PostgresObjectStore persists proof artifacts as bytea rows. Uploads are
// single-statement inserts, so a failed Put leaves no partial object.
type PostgresObjectStore struct {
	db      *sql.DB
	baseURL string
}

// NewPostgres constructs a PostgreSQL-backed object store.
func NewPostgres(db *sql.DB, baseURL string) *PostgresObjectStore {
	return &PostgresObjectStore{db: db, baseURL: baseURL}
}

func (s *PostgresObjectStore) Put(ctx context.Context, obj Object) error {
	if obj.Path == "" {
		return fmt.Errorf("object path is required")
	}
	query := `
		INSERT INTO attendance_proofs (path, content_type, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query, obj.Path, obj.ContentType, obj.Data)
	if err != nil {
		return fmt.Errorf("put proof object: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("put proof object %s: %w", obj.Path, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresObjectStore) Get(ctx context.Context, path string) (*Object, error) {
	obj := Object{Path: path}
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type, data FROM attendance_proofs WHERE path = $1`, path,
	).Scan(&obj.ContentType, &obj.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get proof object: %w", err)
	}
	return &obj, nil
}

func (s *PostgresObjectStore) URL(path string) string {
	return s.baseURL + "/" + path
}
