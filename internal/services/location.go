package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/dimitrije/gather-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const locationColumns = `l.id, l.name, l.address, l.latitude, l.longitude, l.created_at`

type LocationService struct {
	db *database.DB
}

func NewLocationService(db *database.DB) *LocationService {
	return &LocationService{db: db}
}

func scanLocation(row pgx.Row) (*models.Location, error) {
	var l models.Location
	if err := row.Scan(&l.ID, &l.Name, &l.Address, &l.Latitude, &l.Longitude, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create stores a location and saves it to the user's list.
func (s *LocationService) Create(ctx context.Context, userID uuid.UUID, name, address string, lat, lng float64) (*models.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	loc, err := scanLocation(tx.QueryRow(ctx, `
		INSERT INTO locations AS l (name, address, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		RETURNING `+locationColumns, name, address, lat, lng))
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO saved_locations (user_id, location_id) VALUES ($1, $2)
	`, userID, loc.ID); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return loc, nil
}

func (s *LocationService) ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Location, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+locationColumns+`
		FROM locations l
		JOIN saved_locations sl ON sl.location_id = l.id
		WHERE sl.user_id = $1
		ORDER BY l.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, *l)
	}
	return locations, rows.Err()
}

// Unsave removes a location from the user's list. The location itself stays
// since events may still reference it.
func (s *LocationService) Unsave(ctx context.Context, userID, locationID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM saved_locations WHERE user_id = $1 AND location_id = $2
	`, userID, locationID)
	if err != nil {
		return fmt.Errorf("failed to unsave location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLocationNotFound
	}
	return nil
}
