package services

import (
	"testing"

	"hostel-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOccupancyDelta(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewRoomService(db)

	room := &models.Room{ID: 5, Capacity: 4, Occupancy: 2, Status: models.RoomPartiallyOccupied, Rate: decimal.Zero}

	mock.ExpectExec("UPDATE `rooms`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.ApplyOccupancyDelta(db, room, 1))
	assert.Equal(t, 3, room.Occupancy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A delta that would push occupancy outside [0, capacity] never reaches
// the database.
func TestApplyOccupancyDeltaOutOfBounds(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewRoomService(db)

	empty := &models.Room{ID: 5, Capacity: 4, Occupancy: 0, Status: models.RoomVacant, Rate: decimal.Zero}
	err := svc.ApplyOccupancyDelta(db, empty, -1)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, 0, empty.Occupancy)

	full := &models.Room{ID: 6, Capacity: 4, Occupancy: 4, Status: models.RoomFullyOccupied, Rate: decimal.Zero}
	err = svc.ApplyOccupancyDelta(db, full, 1)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, 4, full.Occupancy)

	assert.NoError(t, mock.ExpectationsWereMet(), "no SQL may be issued for a rejected delta")
}

// Another writer moved the occupancy between our read and our write: the
// compare-and-set misses and the caller must abort.
func TestApplyOccupancyDeltaConflict(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewRoomService(db)

	room := &models.Room{ID: 5, Capacity: 4, Occupancy: 2, Status: models.RoomPartiallyOccupied, Rate: decimal.Zero}

	mock.ExpectExec("UPDATE `rooms`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.ApplyOccupancyDelta(db, room, 1)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 2, room.Occupancy, "the in-memory room must not advance on a missed CAS")
	assert.NoError(t, mock.ExpectationsWereMet())
}
