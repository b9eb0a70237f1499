package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lifecycleService(t *testing.T) (*LifecycleService, sqlmock.Sqlmock) {
	db, mock := newTestDB(t)
	return NewLifecycleService(db, NewRoomService(db)), mock
}

func allocationColumns() []string {
	return []string{"id", "student_id", "room_id", "allocation_date", "end_date", "status", "active_student_id"}
}

func TestMarkOverdue(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `billings`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(3))
	mock.ExpectExec("UPDATE `billings`").
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := svc.MarkOverdue()
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Examined)
	assert.Equal(t, int64(3), res.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An immediate rerun matches no rows and reports zero work.
func TestMarkOverdueRerun(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `billings`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec("UPDATE `billings`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := svc.MarkOverdue()
	require.NoError(t, err)
	assert.Zero(t, res.Examined)
	assert.Zero(t, res.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A billing that settles between the candidate count and the update is
// examined but not updated.
func TestMarkOverdueCandidateSettlesInBetween(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `billings`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))
	mock.ExpectExec("UPDATE `billings`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.MarkOverdue()
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Examined)
	assert.Equal(t, int64(1), res.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccrueLateFees(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT .* FROM `billings`").
		WillReturnRows(sqlmock.NewRows(billingColumns()).
			AddRow(3, 9, 11, 1, "1000.00", "0.00", "0.00", "overdue", daysAgo(240), daysAgo(10)).
			AddRow(4, 10, 12, 1, "1000.00", "50.00", "200.00", "overdue", daysAgo(250), daysAgo(20)))

	// 5% of (1000 + 0) and of (1000 + 50)
	mock.ExpectExec("UPDATE `billings`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `billings`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.AccrueLateFees()
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Examined)
	assert.Equal(t, int64(2), res.Updated)
	assert.Zero(t, res.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A row another runner charged between the sweep's read and its write is
// skipped, not double-charged and not an error.
func TestAccrueLateFeesLosesRow(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT .* FROM `billings`").
		WillReturnRows(sqlmock.NewRows(billingColumns()).
			AddRow(3, 9, 11, 1, "1000.00", "0.00", "0.00", "overdue", daysAgo(240), daysAgo(10)))

	mock.ExpectExec("UPDATE `billings`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := svc.AccrueLateFees()
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Examined)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelUnpaidAllocations(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT .* FROM `allocations`").
		WillReturnRows(sqlmock.NewRows(allocationColumns()).
			AddRow(11, 9, 5, daysAgo(5), nil, "pending", 9))

	// first invoice: nothing paid against 1000
	mock.ExpectQuery("SELECT .* FROM `billings`").
		WillReturnRows(sqlmock.NewRows(billingColumns()).
			AddRow(3, 9, 11, 1, "1000.00", "0.00", "0.00", "unpaid", daysAgo(5), daysAgo(-205)))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `rooms`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(roomColumns()).
			AddRow(5, 1, "A-101", "A", 1, 4, 2, "partially_occupied", "male", "1000.00"))
	mock.ExpectExec("UPDATE `allocations`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `rooms`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.CancelUnpaidAllocations()
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Examined)
	assert.Equal(t, int64(1), res.Updated)
	assert.Zero(t, res.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An allocation whose first invoice already cleared the activation cutoff
// keeps its hold; the sweep leaves both the allocation and the room alone.
func TestCancelUnpaidAllocationsSkipsPaidEnough(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT .* FROM `allocations`").
		WillReturnRows(sqlmock.NewRows(allocationColumns()).
			AddRow(11, 9, 5, daysAgo(5), nil, "pending", 9))

	mock.ExpectQuery("SELECT .* FROM `billings`").
		WillReturnRows(sqlmock.NewRows(billingColumns()).
			AddRow(3, 9, 11, 1, "1000.00", "0.00", "600.00", "partially_paid", daysAgo(5), daysAgo(-205)))

	res, err := svc.CancelUnpaidAllocations()
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Examined)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A room already at zero occupancy cannot absorb the release: the whole
// cancellation rolls back, the allocation stays pending, and the sweep
// counts the row as failed instead of crashing.
func TestCancelUnpaidAllocationsOccupancyUnderflow(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT .* FROM `allocations`").
		WillReturnRows(sqlmock.NewRows(allocationColumns()).
			AddRow(11, 9, 5, daysAgo(5), nil, "pending", 9))

	mock.ExpectQuery("SELECT .* FROM `billings`").
		WillReturnRows(sqlmock.NewRows(billingColumns()).
			AddRow(3, 9, 11, 1, "1000.00", "0.00", "0.00", "unpaid", daysAgo(5), daysAgo(-205)))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `rooms`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(roomColumns()).
			AddRow(5, 1, "A-101", "A", 1, 4, 0, "vacant", "male", "1000.00"))
	mock.ExpectExec("UPDATE `allocations`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	res, err := svc.CancelUnpaidAllocations()
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Examined)
	assert.Zero(t, res.Updated)
	assert.Equal(t, int64(1), res.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The allocation was activated between the sweep's read and the row lock:
// the status-scoped update matches nothing and the occupancy stays.
func TestCancelUnpaidAllocationsLosesRace(t *testing.T) {
	svc, mock := lifecycleService(t)

	mock.ExpectQuery("SELECT .* FROM `allocations`").
		WillReturnRows(sqlmock.NewRows(allocationColumns()).
			AddRow(11, 9, 5, daysAgo(5), nil, "pending", 9))

	mock.ExpectQuery("SELECT .* FROM `billings`").
		WillReturnRows(sqlmock.NewRows(billingColumns()).
			AddRow(3, 9, 11, 1, "1000.00", "0.00", "0.00", "unpaid", daysAgo(5), daysAgo(-205)))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `rooms`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(roomColumns()).
			AddRow(5, 1, "A-101", "A", 1, 4, 2, "partially_occupied", "male", "1000.00"))
	mock.ExpectExec("UPDATE `allocations`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	res, err := svc.CancelUnpaidAllocations()
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Examined)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
