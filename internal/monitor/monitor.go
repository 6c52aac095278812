package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/soz/drivingschool/internal/exam"
	"github.com/soz/drivingschool/internal/logging"
)

// DefaultInterval is how often the status file is rewritten.
const DefaultInterval = time.Second

// SnapshotSource is implemented by exam.Supervisor.
type SnapshotSource interface {
	Snapshot() exam.Snapshot
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Source     SnapshotSource
	LogManager *logging.SlogManager
	StatusDir  string
	Interval   time.Duration
	// PendingWrites reports queued storage writes; optional.
	PendingWrites func() int
}

// Status is the content of the status file
type Status struct {
	Time          time.Time `json:"time"`
	Phase         string    `json:"phase"`
	TrialID       string    `json:"trialId,omitempty"`
	License       string    `json:"license,omitempty"`
	Label         string    `json:"label,omitempty"`
	Elapsed       string    `json:"elapsed,omitempty"`
	Checkpoint    string    `json:"checkpoint,omitempty"`
	Remaining     int       `json:"remaining"`
	Monitoring    bool      `json:"monitoring"`
	PendingWrites int       `json:"pendingWrites"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// StatusPath is the file the service writes to.
func (s *Service) StatusPath() string {
	return filepath.Join(s.deps.StatusDir, "status.txt")
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus builds the current status from the supervisor snapshot.
func (s *Service) GetStatus(now time.Time) Status {
	snap := s.deps.Source.Snapshot()
	status := Status{
		Time:       now,
		Phase:      snap.Phase.String(),
		TrialID:    snap.TrialID,
		License:    string(snap.License),
		Label:      snap.Label,
		Remaining:  snap.Remaining,
		Monitoring: snap.Monitoring,
	}
	if !snap.StartedAt.IsZero() {
		status.Elapsed = now.Sub(snap.StartedAt).Truncate(time.Second).String()
	}
	if snap.Total > 0 {
		status.Checkpoint = fmt.Sprintf("%d/%d", snap.Reached, snap.Total)
	}
	if s.deps.PendingWrites != nil {
		status.PendingWrites = s.deps.PendingWrites()
	}
	return status
}

// WriteStatus replaces the status file content.
func (s *Service) WriteStatus(now time.Time) error {
	data, err := json.MarshalIndent(s.GetStatus(now), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	return os.WriteFile(s.StatusPath(), append(data, '\n'), 0644)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(s.deps.StatusDir, 0755); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create status dir: %w", err)
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor", "path", s.StatusPath())

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				if err := s.WriteStatus(now); err != nil {
					logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for the goroutine to exit
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
