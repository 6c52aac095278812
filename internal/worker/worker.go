package worker

import (
	"context"
	"fmt"

	"github.com/soz/drivingschool/internal/exam"
	"github.com/soz/drivingschool/internal/logging"
	"github.com/soz/drivingschool/internal/parser"
	"github.com/soz/drivingschool/pkg/core"
)

// ErrNoTrialRunning is returned by status requests while the session is idle.
var ErrNoTrialRunning = fmt.Errorf("no trial running")

// ExamController is the part of exam.Supervisor the handlers drive.
type ExamController interface {
	Setup(ctx context.Context, license core.LicenseType, spawnPoint core.Vector4, spawnLocation string) error
	OnVehicleUndrivable(h core.Handle, isVehicle, isDead bool)
	Snapshot() exam.Snapshot
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Exam          ExamController
	LogManager    *logging.SlogManager
	ParserService *parser.Parser
}

// Manager turns host commands into exam calls
type Manager struct {
	deps Dependencies
	ctx  context.Context
}

// NewManager creates a new worker manager. ctx bounds every exam call made
// from a handler.
func NewManager(ctx context.Context, deps Dependencies) *Manager {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.ParserService == nil {
		deps.ParserService = parser.NewParser(deps.LogManager.Logger())
	}
	return &Manager{
		deps: deps,
		ctx:  ctx,
	}
}
