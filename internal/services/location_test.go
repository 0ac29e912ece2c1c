package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/gather-api/internal/database"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var locationCols = []string{"id", "name", "address", "latitude", "longitude", "created_at"}

func setupLocationService(t *testing.T) (*LocationService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewLocationService(&database.DB{Pool: mock}), mock
}

func TestLocationService_Create(t *testing.T) {
	svc, mock := setupLocationService(t)
	userID, locID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO locations`).
		WithArgs("Park", "Main St 1", 44.8, 20.46).
		WillReturnRows(pgxmock.NewRows(locationCols).AddRow(locID, "Park", "Main St 1", 44.8, 20.46, time.Now()))
	mock.ExpectExec(`INSERT INTO saved_locations`).
		WithArgs(userID, locID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	loc, err := svc.Create(context.Background(), userID, "Park", "Main St 1", 44.8, 20.46)

	require.NoError(t, err)
	assert.Equal(t, locID, loc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationService_Create_InvalidCoordinates(t *testing.T) {
	svc, mock := setupLocationService(t)

	tests := []struct {
		name     string
		lat, lng float64
	}{
		{"latitude too high", 90.5, 0},
		{"latitude too low", -91, 0},
		{"longitude too high", 0, 180.1},
		{"longitude too low", 0, -181},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), "Somewhere", "", tt.lat, tt.lng)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationService_ListSaved(t *testing.T) {
	svc, mock := setupLocationService(t)
	userID := uuid.New()

	mock.ExpectQuery(`FROM locations l JOIN saved_locations sl`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(locationCols).
			AddRow(uuid.New(), "Cafe", "", 45.0, 19.8, time.Now()).
			AddRow(uuid.New(), "Park", "", 44.8, 20.4, time.Now()))

	locs, err := svc.ListSaved(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, locs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationService_Unsave_NotSaved(t *testing.T) {
	svc, mock := setupLocationService(t)
	userID, locID := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM saved_locations`).
		WithArgs(userID, locID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Unsave(context.Background(), userID, locID)

	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
