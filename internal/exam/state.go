package exam

import (
	"time"

	"github.com/soz/drivingschool/internal/channel"
	"github.com/soz/drivingschool/internal/queue"
	"github.com/soz/drivingschool/pkg/core"
)

// Phase is the lifecycle position of a trial.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSettingUp
	PhaseRunning
	PhaseTerminating
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSettingUp:
		return "setting_up"
	case PhaseRunning:
		return "running"
	case PhaseTerminating:
		return "terminating"
	default:
		return "unknown"
	}
}

// TrialState is the mutable state of the session's trial.
// It is owned by a Supervisor and only touched under its lock.
type TrialState struct {
	Phase      Phase
	Running    bool
	Monitoring bool

	TrialID    string
	StartedAt  time.Time
	Config     core.LicenseConfig
	SpawnPoint core.Vector4

	Remaining *queue.Queue[core.Checkpoint]
	Current   core.Checkpoint
	Route     []core.Checkpoint
	Reached   int

	Instructor     core.Handle
	Vehicle        core.Handle
	Marker         core.Handle
	RouteIndicator core.Handle

	Rules []Rule
	Run   *RunContext
}

func (s *TrialState) reset() {
	if s.Run != nil {
		s.Run.close()
	}
	*s = TrialState{}
}

// Total is the number of checkpoints to reach, final one included.
func (s *TrialState) Total() int {
	return s.Config.CheckpointCount + 1
}

// RunContext is the per-trial context penalty rules read from.
// It lives from Start to Terminate.
type RunContext struct {
	License          core.LicenseType
	Config           core.LicenseConfig
	Vehicle          core.Handle
	MinVehicleHealth float64
	World            World

	feed       channel.Channel[core.Handle]
	undrivable map[core.Handle]struct{}
}

func newRunContext(cfg core.LicenseConfig, vehicle core.Handle, world World, opts Options) *RunContext {
	return &RunContext{
		License:          cfg.LicenseType,
		Config:           cfg,
		Vehicle:          vehicle,
		MinVehicleHealth: opts.MinVehicleHealth,
		World:            world,
		feed:             channel.NewBuffered[core.Handle](opts.UndrivableFeedSize),
		undrivable:       make(map[core.Handle]struct{}),
	}
}

// report queues an undrivable vehicle. It reports false when the feed is full.
func (rc *RunContext) report(h core.Handle) bool {
	return rc.feed.TrySend(h)
}

// drain moves queued reports into the undrivable set.
func (rc *RunContext) drain() {
	for _, h := range rc.feed.Drain() {
		rc.undrivable[h] = struct{}{}
	}
}

// Undrivable reports whether h was reported undrivable during this trial.
func (rc *RunContext) Undrivable(h core.Handle) bool {
	_, ok := rc.undrivable[h]
	return ok
}

// UndrivableCount is the number of distinct vehicles reported so far.
func (rc *RunContext) UndrivableCount() int {
	return len(rc.undrivable)
}

func (rc *RunContext) close() {
	rc.feed.Close()
	rc.undrivable = nil
}
