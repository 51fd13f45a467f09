package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ponto/internal/checkin/models"
	id "ponto/pkg/domain"
)

// PostgresSessionStore persists paired day rows in teacher_attendance_records.
// Coordinates cross this boundary in the legacy "(lat,lng)" text form; see
// coords.go.
type PostgresSessionStore struct {
	db *sql.DB
}

// NewPostgresSessions constructs a PostgreSQL-backed session store.
func NewPostgresSessions(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (s *PostgresSessionStore) GetByStaffDay(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, day string) (*models.AttendanceSession, error) {
	query := `
		SELECT id, institution_id, staff_id, day,
		       arrival_time, arrival_photo_path, arrival_coords,
		       departure_time, departure_photo_path, departure_coords,
		       status
		FROM teacher_attendance_records
		WHERE institution_id = $1 AND staff_id = $2 AND day = $3
	`
	var (
		session         models.AttendanceSession
		rawID           uuid.UUID
		rawInst         uuid.UUID
		rawStaff        uuid.UUID
		arrivalTime     sql.NullTime
		arrivalPhoto    sql.NullString
		arrivalCoords   sql.NullString
		departureTime   sql.NullTime
		departurePhoto  sql.NullString
		departureCoords sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(institutionID), uuid.UUID(staffID), day).Scan(
		&rawID, &rawInst, &rawStaff, &session.Day,
		&arrivalTime, &arrivalPhoto, &arrivalCoords,
		&departureTime, &departurePhoto, &departureCoords,
		&session.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance session: %w", err)
	}

	session.ID = id.AttendanceSessionID(rawID)
	session.InstitutionID = id.InstitutionID(rawInst)
	session.StaffID = id.StaffID(rawStaff)
	if arrivalTime.Valid {
		t := arrivalTime.Time
		session.ArrivalTime = &t
	}
	session.ArrivalPhotoPath = arrivalPhoto.String
	if session.ArrivalCoords, err = decodeCoords(arrivalCoords.String); err != nil {
		return nil, fmt.Errorf("get attendance session: %w", err)
	}
	if departureTime.Valid {
		t := departureTime.Time
		session.DepartureTime = &t
	}
	session.DeparturePhotoPath = departurePhoto.String
	if session.DepartureCoords, err = decodeCoords(departureCoords.String); err != nil {
		return nil, fmt.Errorf("get attendance session: %w", err)
	}
	return &session, nil
}

func (s *PostgresSessionStore) Upsert(ctx context.Context, session *models.AttendanceSession) error {
	if session == nil {
		return fmt.Errorf("attendance session is required")
	}
	query := `
		INSERT INTO teacher_attendance_records
			(id, institution_id, staff_id, day,
			 arrival_time, arrival_photo_path, arrival_coords,
			 departure_time, departure_photo_path, departure_coords,
			 status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (institution_id, staff_id, day) DO UPDATE SET
			arrival_time         = EXCLUDED.arrival_time,
			arrival_photo_path   = EXCLUDED.arrival_photo_path,
			arrival_coords       = EXCLUDED.arrival_coords,
			departure_time       = EXCLUDED.departure_time,
			departure_photo_path = EXCLUDED.departure_photo_path,
			departure_coords     = EXCLUDED.departure_coords,
			status               = EXCLUDED.status
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(session.ID),
		uuid.UUID(session.InstitutionID),
		uuid.UUID(session.StaffID),
		session.Day,
		session.ArrivalTime,
		session.ArrivalPhotoPath,
		encodeCoords(session.ArrivalCoords),
		session.DepartureTime,
		session.DeparturePhotoPath,
		encodeCoords(session.DepartureCoords),
		session.Status,
	)
	if err != nil {
		return fmt.Errorf("upsert attendance session: %w", err)
	}
	return nil
}
