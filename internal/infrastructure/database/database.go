package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sangkips/invoicer/internal/config"
	"github.com/sangkips/invoicer/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store owns the database handle and serializes writers.
// Reads go straight to DB; every write goes through Write.
type Store struct {
	DB      *gorm.DB
	writeMu sync.Mutex
	log     *zap.Logger
}

// Open connects to the configured database and runs migrations
func Open(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	case DriverSQLite, "":
		if dir := filepath.Dir(cfg.Path); dir != "" && cfg.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path + "?_busy_timeout=5000")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if dialector.Name() == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	if err := AutoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready", zap.String("driver", dialector.Name()))
	return &Store{DB: db, log: log}, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.Client{},
		&entity.Invoice{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Write runs fn in a transaction while holding the store's writer lock
func (s *Store) Write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.DB.WithContext(ctx).Transaction(fn)
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	s.log.Info("closing database")
	return sqlDB.Close()
}
