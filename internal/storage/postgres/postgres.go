// Package postgres implements the storage.Backend interface on a PostgreSQL
// connection, delegating queueing and writes to the GORM backend.
package postgres

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/soz/drivingschool/internal/config"
	"github.com/soz/drivingschool/internal/database"
	"github.com/soz/drivingschool/internal/logging"
	gormstorage "github.com/soz/drivingschool/internal/storage/gorm"

	"gorm.io/gorm"
)

// MaxOpenConns caps the connection pool.
const MaxOpenConns = 10

// Dependencies holds all dependencies for the postgres storage backend.
type Dependencies struct {
	// DB is used as is when set; otherwise Init connects with Config.
	DB            *gorm.DB
	Config        config.PostgresConfig
	LogManager    *logging.SlogManager
	DBLogger      zerolog.Logger
	FlushInterval time.Duration
}

// Backend implements storage.Backend. Init must succeed before any other call.
type Backend struct {
	*gormstorage.Backend
	deps Dependencies
}

// New creates a new postgres storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps: deps,
	}
}

// Init connects when no DB was injected, then migrates and starts the writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDB(b.deps.Config, b.deps.DBLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(MaxOpenConns)
		b.deps.DB = db
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:            b.deps.DB,
		LogManager:    b.deps.LogManager,
		DBLogger:      b.deps.DBLogger,
		FlushInterval: b.deps.FlushInterval,
	})
	return b.Backend.Init()
}

// Close stops the writer and flushes pending trials.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}
