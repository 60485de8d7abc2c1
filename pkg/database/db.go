package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ecoscan/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver   string
	DSN      string
	MaxConns int
	Timeout  time.Duration
	Debug    bool
}

// Open connects to the configured engine and verifies connectivity with a ping.
//
// SQLite is opened with a single connection: the workload is single-writer and
// a shared pool would only trade SQLITE_BUSY errors for retries.
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	maxConns := cfg.MaxConns

	switch cfg.Driver {
	case DriverSQLite, "":
		dsn, err := sqliteDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
		maxConns = 1
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
		if maxConns <= 0 {
			maxConns = 10
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// sqliteDSN turns a file path into a DSN with WAL journaling, relaxed sync and
// foreign keys enabled. DSNs that already carry a query string are left alone
// apart from forcing foreign keys on.
func sqliteDSN(dsn string) (string, error) {
	if dsn == "" {
		dsn = "data/ecoscan.db"
	}
	if strings.Contains(dsn, "?") {
		if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk") {
			dsn += "&_foreign_keys=on"
		}
		return dsn, nil
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("create data dir: %w", err)
			}
		}
	}
	return dsn + "?_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", nil
}

// Migrate creates or updates every table and index. Safe to call on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Scan{},
		&models.LeaderboardEntry{},
		&models.Session{},
		&models.DailyStat{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
