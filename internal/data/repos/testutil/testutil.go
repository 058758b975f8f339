package testutil

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/db"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns an isolated, migrated database for one test. It uses an
// in-memory SQLite database unless TEST_POSTGRES_DSN is set, in which case a
// fresh schema is created and dropped on cleanup.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	cfg := &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var gdb *gorm.DB
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		admin, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			tb.Fatalf("open postgres: %v", err)
		}
		if err := admin.Exec(fmt.Sprintf(`CREATE SCHEMA %q`, schema)).Error; err != nil {
			tb.Fatalf("create schema: %v", err)
		}
		gdb, err = gorm.Open(postgres.Open(withSearchPath(dsn, schema)), cfg)
		if err != nil {
			tb.Fatalf("open postgres schema: %v", err)
		}
		tb.Cleanup(func() {
			_ = db.Close(gdb)
			_ = admin.Exec(fmt.Sprintf(`DROP SCHEMA %q CASCADE`, schema)).Error
			_ = db.Close(admin)
		})
	} else {
		var err error
		gdb, err = gorm.Open(sqlite.Open(db.SQLiteDSN("file:"+uuid.NewString()+"?mode=memory&cache=shared")), cfg)
		if err != nil {
			tb.Fatalf("open sqlite: %v", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			tb.Fatalf("sqlite handle: %v", err)
		}
		sqlDB.SetMaxOpenConns(1)
		tb.Cleanup(func() { _ = sqlDB.Close() })
	}

	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return gdb
}

func withSearchPath(dsn, schema string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err == nil {
			q := u.Query()
			q.Set("search_path", schema)
			u.RawQuery = q.Encode()
			return u.String()
		}
	}
	return dsn + " search_path=" + schema
}

func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
