package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ponto/internal/checkin/models"
	"ponto/internal/geo"
	id "ponto/pkg/domain"
)

// PostgresEventStore persists ledger events in the teacher_checkins table.
// Inserts only; the table carries no update path from this code.
type PostgresEventStore struct {
	db *sql.DB
}

// NewPostgresEvents constructs a PostgreSQL-backed ledger.
func NewPostgresEvents(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) Append(ctx context.Context, event *models.CheckinEvent) error {
	if event == nil {
		return fmt.Errorf("checkin event is required")
	}
	query := `
		INSERT INTO teacher_checkins
			(id, institution_id, staff_id, kind, occurred_at, latitude, longitude, distance_meters, within_radius, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(event.ID),
		uuid.UUID(event.InstitutionID),
		uuid.UUID(event.StaffID),
		string(event.Kind),
		event.OccurredAt,
		event.Coordinate.Latitude,
		event.Coordinate.Longitude,
		event.DistanceMeters,
		event.WithinRadius,
		event.ProofRef,
	)
	if err != nil {
		return fmt.Errorf("append checkin event: %w", err)
	}
	return nil
}

func (s *PostgresEventStore) ListByInstitution(ctx context.Context, institutionID id.InstitutionID, window models.Window, kinds ...models.CheckKind) ([]*models.CheckinEvent, error) {
	kindFilter := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		kindFilter = append(kindFilter, string(kind))
	}
	query := `
		SELECT id, institution_id, staff_id, kind, occurred_at, latitude, longitude, distance_meters, within_radius, photo_url
		FROM teacher_checkins
		WHERE institution_id = $1
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND (cardinality($3::text[]) = 0 OR kind = ANY($3))
		ORDER BY occurred_at DESC
		LIMIT $4
	`
	since := sql.NullTime{Time: window.Since, Valid: !window.Since.IsZero()}
	limit := window.Limit
	if limit <= 0 {
		limit = models.DefaultWindowLimit
	}
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(institutionID), since, pq.Array(kindFilter), limit)
	if err != nil {
		return nil, fmt.Errorf("list checkin events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresEventStore) ListByStaff(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, window models.Window) ([]*models.CheckinEvent, error) {
	query := `
		SELECT id, institution_id, staff_id, kind, occurred_at, latitude, longitude, distance_meters, within_radius, photo_url
		FROM teacher_checkins
		WHERE institution_id = $1 AND staff_id = $2
		  AND ($3::timestamptz IS NULL OR occurred_at >= $3)
		ORDER BY occurred_at DESC
		LIMIT $4
	`
	since := sql.NullTime{Time: window.Since, Valid: !window.Since.IsZero()}
	limit := window.Limit
	if limit <= 0 {
		limit = models.DefaultWindowLimit
	}
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(institutionID), uuid.UUID(staffID), since, limit)
	if err != nil {
		return nil, fmt.Errorf("list staff checkin events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*models.CheckinEvent, error) {
	var events []*models.CheckinEvent
	for rows.Next() {
		var (
			event    models.CheckinEvent
			rawID    uuid.UUID
			rawInst  uuid.UUID
			rawStaff uuid.UUID
			kind     string
			lat, lng float64
		)
		if err := rows.Scan(
			&rawID, &rawInst, &rawStaff, &kind, &event.OccurredAt,
			&lat, &lng, &event.DistanceMeters, &event.WithinRadius, &event.ProofRef,
		); err != nil {
			return nil, fmt.Errorf("scan checkin event: %w", err)
		}
		event.ID = id.CheckinID(rawID)
		event.InstitutionID = id.InstitutionID(rawInst)
		event.StaffID = id.StaffID(rawStaff)
		event.Kind = models.CheckKind(kind)
		event.Coordinate = geo.Coordinate{Latitude: lat, Longitude: lng}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkin events: %w", err)
	}
	return events, nil
}
