// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sync"

	"github.com/soz/drivingschool/internal/config"
	"github.com/soz/drivingschool/pkg/core"
)

// Backend keeps trial history in memory. Once MaxTrials records are held,
// the oldest is dropped for every new one.
type Backend struct {
	cfg config.MemoryConfig

	trials []core.TrialRecord // oldest first
	grants []core.LicenseGrant

	mu sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg: cfg,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// GrantLicense stores a license grant
func (b *Backend) GrantLicense(_ context.Context, grant core.LicenseGrant) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.grants = append(b.grants, grant)
	return nil
}

// RecordTrial stores a finished trial
func (b *Backend) RecordTrial(_ context.Context, record core.TrialRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record.Route = append([]core.Vector3(nil), record.Route...)
	b.trials = append(b.trials, record)
	if keep := b.cfg.MaxTrials; keep > 0 && len(b.trials) > keep {
		b.trials = append(b.trials[:0:0], b.trials[len(b.trials)-keep:]...)
	}
	return nil
}

// ListTrials returns up to limit trials, newest first
func (b *Backend) ListTrials(_ context.Context, limit int) ([]core.TrialRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.trials)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.TrialRecord, 0, n)
	for i := len(b.trials) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, b.trials[i])
	}
	return out, nil
}

// ListLicenseGrants returns every grant, newest first
func (b *Backend) ListLicenseGrants(_ context.Context) ([]core.LicenseGrant, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.LicenseGrant, 0, len(b.grants))
	for i := len(b.grants) - 1; i >= 0; i-- {
		out = append(out, b.grants[i])
	}
	return out, nil
}
