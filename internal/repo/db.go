// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping for the supported
// drivers (pure-Go SQLite, MySQL, PostgreSQL), the zerolog bridge for GORM's
// logger, and schema migrations.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dianaantanyan/combinations-api/internal/config"
	"github.com/dianaantanyan/combinations-api/internal/domain"
)

// sqlitePragmas are applied to every pooled connection through the DSN, so
// foreign keys stay enforced no matter which connection runs a transaction.
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// Open connects to the configured database, applies pool sizing and wires
// GORM's logger into zerolog.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:      NewGormLogger(time.Second),
		PrepareStmt: cfg.Driver != config.DriverSQLite,
	})
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database at path with the default
// pragmas and pool settings.
func OpenSQLite(path string) (*gorm.DB, error) {
	return Open(config.DBConfig{
		Driver:          config.DriverSQLite,
		Path:            path,
		MaxOpenConns:    10,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
	})
}

func dialector(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
		path := cfg.ConnString()
		if !strings.HasPrefix(path, "file:") && !strings.Contains(path, ":memory:") {
			if dir := filepath.Dir(path); dir != "." {
				if _, err := os.Stat(dir); err != nil {
					return nil, err
				}
			}
		}
		return sqlite.Open(withPragmas(path)), nil
	case config.DriverMySQL:
		return mysql.Open(cfg.ConnString()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.ConnString()), nil
	default:
		return nil, fmt.Errorf("repo: unsupported driver %q", cfg.Driver)
	}
}

func withPragmas(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// AutoMigrate creates or updates every table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.All()...)
}

// Ping verifies the database is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// zerologWriter adapts zerolog to gorm's logger.Writer.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...any) {
	log.Warn().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// NewGormLogger returns a GORM logger that reports slow queries and errors
// through the global zerolog logger. Missing records are not logged.
func NewGormLogger(slow time.Duration) gormlogger.Interface {
	return gormlogger.New(zerologWriter{}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
