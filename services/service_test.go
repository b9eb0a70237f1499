package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB wires GORM on top of sqlmock using the MySQL dialect the
// production code runs against. SkipDefaultTransaction keeps single-statement
// writes as plain execs so expectations stay readable; explicit
// DB.Transaction blocks still emit BEGIN/COMMIT.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return db, mock
}

func roomColumns() []string {
	return []string{"id", "hostel_id", "room_number", "building", "floor", "capacity", "occupancy", "status", "gender", "rate"}
}

func billingColumns() []string {
	return []string{"id", "student_id", "allocation_id", "hostel_id", "amount", "late_fee", "paid_amount", "status", "date_issued", "due_date"}
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}
