// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/soz/drivingschool/internal/config"
	"github.com/soz/drivingschool/internal/logging"
	"github.com/soz/drivingschool/internal/storage/memory"
	"github.com/soz/drivingschool/internal/storage/postgres"
	sqlitestorage "github.com/soz/drivingschool/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, logManager *logging.SlogManager, dbLog zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(postgres.Dependencies{
			Config:     cfg.Postgres,
			LogManager: logManager,
			DBLogger:   dbLog,
		}), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, logManager, dbLog)
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
