package storage_test

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/queuectl/queuectl/pkg/storage"
)

var dbCounter atomic.Int64

// openTestDB opens a database for storage tests. When TEST_DATABASE_URL is
// set it connects to PostgreSQL; otherwise it creates a unique file-based
// SQLite database removed on cleanup. WAL plus a busy timeout keeps SQLite
// usable under the concurrent claim tests.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err, "open postgres test db")

		cleanupTestDB(t, db)
		t.Cleanup(func() {
			cleanupTestDB(t, db)
			sqlDB, _ := db.DB()
			_ = sqlDB.Close()
		})
		return db
	}

	n := dbCounter.Add(1)
	dbPath := fmt.Sprintf("%s/queuectl_test_%d_%d.db", t.TempDir(), os.Getpid(), n)
	dsn := dbPath + "?_busy_timeout=5000&_journal_mode=WAL"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite test db")
	return db
}

func cleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	_ = db.Exec("DELETE FROM jobs").Error
}

// openTestStorage opens a DB, creates a GormStorage, and migrates.
func openTestStorage(t *testing.T) *storage.GormStorage {
	t.Helper()
	db := openTestDB(t)
	store := storage.NewGormStorage(db)
	require.NoError(t, store.Migrate(context.Background()), "migrate schema")
	return store
}
