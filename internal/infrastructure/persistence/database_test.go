package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestConnectionStats_Struct tests that ConnectionStats struct can be properly initialized
func TestConnectionStats_Struct(t *testing.T) {
	t.Run("creates ConnectionStats with zero values", func(t *testing.T) {
		stats := ConnectionStats{}

		assert.Equal(t, 0, stats.MaxOpenConnections)
		assert.Equal(t, 0, stats.OpenConnections)
		assert.Equal(t, 0, stats.InUse)
		assert.Equal(t, 0, stats.Idle)
		assert.Equal(t, int64(0), stats.WaitCount)
		assert.Equal(t, time.Duration(0), stats.WaitDuration)
		assert.Equal(t, int64(0), stats.MaxIdleClosed)
		assert.Equal(t, int64(0), stats.MaxIdleTimeClosed)
		assert.Equal(t, int64(0), stats.MaxLifetimeClosed)
	})

	t.Run("InUse plus Idle equals OpenConnections", func(t *testing.T) {
		stats := ConnectionStats{
			OpenConnections: 10,
			InUse:           6,
			Idle:            4,
		}

		assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	})
}

// TestDatabase_Struct tests the Database struct
func TestDatabase_Struct(t *testing.T) {
	t.Run("creates Database with nil DB", func(t *testing.T) {
		db := &Database{DB: nil}
		assert.Nil(t, db.DB)
	})
}

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

// TestDatabase_Stats tests the Stats method
func TestDatabase_Stats(t *testing.T) {
	t.Run("returns ConnectionStats from underlying DB", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		stats, err := db.Stats()

		assert.NoError(t, err)
		assert.IsType(t, ConnectionStats{}, stats)
	})

	t.Run("Stats returns valid struct with all fields", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		stats, err := db.Stats()

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, stats.MaxOpenConnections, 0)
		assert.GreaterOrEqual(t, stats.OpenConnections, 0)
		assert.GreaterOrEqual(t, stats.InUse, 0)
		assert.GreaterOrEqual(t, stats.Idle, 0)
		assert.GreaterOrEqual(t, stats.WaitCount, int64(0))
		assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
		assert.GreaterOrEqual(t, stats.MaxIdleClosed, int64(0))
		assert.GreaterOrEqual(t, stats.MaxIdleTimeClosed, int64(0))
		assert.GreaterOrEqual(t, stats.MaxLifetimeClosed, int64(0))
	})
}

// TestDatabase_Ping tests the Ping method
func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		err := db.Ping()
		assert.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("ping with MonitorPingsOption enabled", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()

		// GORM may ping during Open, so expect it first
		mock.ExpectPing()

		dialector := postgres.New(postgres.Config{
			Conn:       mockDB,
			DriverName: "postgres",
		})

		gormDB, err := gorm.Open(dialector, &gorm.Config{
			SkipDefaultTransaction: true,
		})
		require.NoError(t, err)

		db := &Database{DB: gormDB}

		// Now expect the actual Ping call
		mock.ExpectPing()

		err = db.Ping()
		assert.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

// TestDatabase_Close tests the Close method
func TestDatabase_Close(t *testing.T) {
	t.Run("successful close", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		_ = mockDB // We don't close mockDB here since db.Close() will do it

		mock.ExpectClose()

		err := db.Close()
		assert.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

// TestDatabase_Transaction tests the Transaction method
func TestDatabase_Transaction(t *testing.T) {
	t.Run("successful transaction", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		type TestModel struct {
			ID   uint
			Name string
		}

		mock.ExpectBegin()
		// PostgreSQL GORM uses Query with RETURNING clause instead of Exec
		mock.ExpectQuery(`INSERT INTO "test_models"`).
			WithArgs("test").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&TestModel{Name: "test"}).Error
		})

		assert.NoError(t, err)
		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("transaction rollback on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.Error(t, err)
		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}
