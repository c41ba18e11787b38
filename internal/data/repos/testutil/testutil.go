package testutil

import (
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/mentalgym-backend/internal/data/db"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

var (
	dbOnce sync.Once
	conn   *gorm.DB
	dbErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}

// DB returns a migrated database shared by the test binary: Postgres when
// TEST_POSTGRES_DSN is set, else an in-memory SQLite database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dbOnce.Do(func() {
		cfg := &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
			NowFunc:                                  func() time.Time { return time.Now().UTC() },
		}
		var dialector gorm.Dialector
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			dialector = postgres.Open(dsn)
		} else {
			dialector = sqlite.Open("file:mentalgym_test?mode=memory&cache=shared")
		}
		conn, dbErr = gorm.Open(dialector, cfg)
		if dbErr != nil {
			return
		}
		dbErr = db.AutoMigrateAll(conn)
	})
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return conn
}

// Tx opens a transaction rolled back when the test ends. Code under test
// should be built on the returned handle so nothing escapes the rollback.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
