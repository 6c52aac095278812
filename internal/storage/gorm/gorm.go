// Package gormstorage implements the storage.Backend interface on top of GORM
// with an internal trial queue drained by a background writer goroutine.
// License grants are written synchronously.
package gormstorage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/soz/drivingschool/internal/database"
	"github.com/soz/drivingschool/internal/logging"
	"github.com/soz/drivingschool/internal/model"
	"github.com/soz/drivingschool/internal/model/convert"
	"github.com/soz/drivingschool/internal/queue"
	"github.com/soz/drivingschool/pkg/core"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often queued trials are written.
const DefaultFlushInterval = time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	DBLogger      zerolog.Logger
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	trials   *queue.Queue[model.Trial]
	writeMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		trials: queue.New[model.Trial](),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend: no database")
	}
	if err := database.Setup(b.deps.DB, b.deps.DBLogger); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writerLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	<-b.done
	b.stopChan = nil
	return b.Flush()
}

// GrantLicense inserts a grant synchronously.
func (b *Backend) GrantLicense(ctx context.Context, grant core.LicenseGrant) error {
	row := convert.CoreToLicenseGrant(grant)
	if err := b.deps.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert license grant: %w", err)
	}
	return nil
}

// RecordTrial converts a trial record and pushes it to the write queue.
func (b *Backend) RecordTrial(_ context.Context, record core.TrialRecord) error {
	b.trials.Push(convert.CoreToTrial(record))
	return nil
}

// Pending returns the number of trials waiting for the writer.
func (b *Backend) Pending() int {
	return b.trials.Len()
}

// ListTrials flushes the queue and returns up to limit trials, newest first.
func (b *Backend) ListTrials(ctx context.Context, limit int) ([]core.TrialRecord, error) {
	if err := b.Flush(); err != nil {
		return nil, err
	}

	q := b.deps.DB.WithContext(ctx).Order("started_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.Trial
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list trials: %w", err)
	}

	out := make([]core.TrialRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert.TrialToCore(row))
	}
	return out, nil
}

// ListLicenseGrants returns every grant, newest first.
func (b *Backend) ListLicenseGrants(ctx context.Context) ([]core.LicenseGrant, error) {
	var rows []model.LicenseGrant
	if err := b.deps.DB.WithContext(ctx).Order("granted_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list license grants: %w", err)
	}

	out := make([]core.LicenseGrant, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert.LicenseGrantToCore(row))
	}
	return out, nil
}

// Flush writes every queued trial in one transaction.
func (b *Backend) Flush() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return writeQueue(b.deps.DB, b.trials, "trials", b.deps.LogManager.WriteLog)
}

// writeQueue writes all items from a queue to the database in a transaction.
// Items are pushed back when the insert fails.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string)) error {
	if q.Empty() {
		return nil
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tx.Commit().Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error committing %s: %v", name, err), "ERROR")
		q.Push(items...)
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	log(":DB:WRITER:", fmt.Sprintf("Wrote %d %s", len(items), name), "DEBUG")
	return nil
}

func (b *Backend) writerLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.LogManager.WriteLog(":DB:WRITER:", fmt.Sprintf("Flush failed, %d trials pending: %v", b.Pending(), err), "ERROR")
			}
		}
	}
}
