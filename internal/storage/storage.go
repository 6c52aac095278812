// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/soz/drivingschool/internal/exam"
	"github.com/soz/drivingschool/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Exam results
	GrantLicense(ctx context.Context, grant core.LicenseGrant) error
	RecordTrial(ctx context.Context, record core.TrialRecord) error

	// History, newest first. limit <= 0 returns everything.
	ListTrials(ctx context.Context, limit int) ([]core.TrialRecord, error)
	ListLicenseGrants(ctx context.Context) ([]core.LicenseGrant, error)
}

// Observer reports every finished trial to b.
func Observer(b Backend) exam.TrialObserver {
	return exam.TrialObserverFunc(b.RecordTrial)
}

// Sink grants licenses through b.
func Sink(b Backend) exam.LicenseSink {
	return exam.LicenseSinkFunc(b.GrantLicense)
}
