package exam

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/soz/drivingschool/internal/catalog"
	"github.com/soz/drivingschool/internal/geo"
	"github.com/soz/drivingschool/internal/queue"
	"github.com/soz/drivingschool/internal/random"
	"github.com/soz/drivingschool/pkg/core"
)

// Dependencies holds everything a Supervisor needs.
type Dependencies struct {
	Catalog   *catalog.Catalog
	World     World
	Sink      LicenseSink
	Observers []TrialObserver
	Logger    *slog.Logger
	Options   Options
	// Rules defaults to DefaultRules().
	Rules []RuleDescriptor
	// Rand defaults to a crypto-seeded generator.
	Rand *rand.Rand
	// Now defaults to time.Now.
	Now func() time.Time
}

// Supervisor owns the trial of one participant session.
type Supervisor struct {
	deps    Dependencies
	opts    Options
	logger  *slog.Logger
	seq     *Sequencer
	mon     *Monitor
	metrics *metrics
	now     func() time.Time

	mu    sync.Mutex
	state TrialState

	// active mirrors the running trial for LogAttrs and is read without mu.
	active atomic.Pointer[activeTrial]
}

type activeTrial struct {
	id      string
	license core.LicenseType
}

// Snapshot is a read-only view of the trial.
type Snapshot struct {
	Phase      Phase
	TrialID    string
	License    core.LicenseType
	Label      string
	StartedAt  time.Time
	Current    core.Vector3
	Remaining  int
	Reached    int
	Total      int
	Monitoring bool
}

// New creates a supervisor. Catalog and the required world collaborators
// must be set.
func New(deps Dependencies) (*Supervisor, error) {
	if deps.Catalog == nil {
		return nil, errMissing("catalog")
	}
	if err := deps.World.validate(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Rules == nil {
		deps.Rules = DefaultRules()
	}
	if deps.Rand == nil {
		r, err := random.NewFromCrypto()
		if err != nil {
			return nil, err
		}
		deps.Rand = r
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	opts := deps.Options.withDefaults()
	return &Supervisor{
		deps:    deps,
		opts:    opts,
		logger:  deps.Logger,
		seq:     NewSequencer(deps.Catalog, deps.World.Display, deps.World.Notifier, deps.Rand),
		mon:     NewMonitor(deps.Rules, opts.ArmDistance),
		metrics: m,
		now:     deps.Now,
	}, nil
}

// Options returns the effective options.
func (s *Supervisor) Options() Options {
	return s.opts
}

// Setup prepares and starts a trial for license. It does nothing while
// another trial is in progress. On failure every spawned entity is removed,
// the screen is faded back in and the session returns to idle.
func (s *Supervisor) Setup(ctx context.Context, license core.LicenseType, spawnPoint core.Vector4, spawnLocation string) error {
	s.mu.Lock()
	if s.state.Phase != PhaseIdle {
		s.mu.Unlock()
		s.logger.Debug("Setup ignored, trial in progress", "license", license)
		return nil
	}
	cfg, ok := s.deps.Catalog.License(license)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownLicense, license)
	}
	s.state.Phase = PhaseSettingUp
	s.mu.Unlock()

	if spawnLocation == "" {
		spawnLocation = s.deps.Catalog.DefaultLocation
	}

	world := s.deps.World
	var instructor, vehicle core.Handle

	fail := func(err error) error {
		cleanup := context.WithoutCancel(ctx)
		s.deleteEntity(cleanup, instructor)
		s.deleteEntity(cleanup, vehicle)
		if ferr := world.Gate.FadeIn(cleanup); ferr != nil {
			s.logger.Error("Failed to fade in after setup failure", "error", ferr)
		}
		s.mu.Lock()
		s.state.reset()
		s.mu.Unlock()
		s.logger.Error("Trial setup failed", "license", license, "error", err)
		return err
	}

	if err := world.Gate.FadeOut(ctx); err != nil {
		return fail(fmt.Errorf("fade out: %w", err))
	}

	err := world.Gate.TeleportTo(ctx, spawnLocation, func(ctx context.Context) error {
		if err := sleep(ctx, s.opts.ArrivalDelay); err != nil {
			return err
		}

		ped := s.deps.Catalog.Instructor
		ped.Invincible = true
		ped.BlockEvents = true

		var err error
		if instructor, err = world.Spawner.CreateInstructor(ctx, ped); err != nil {
			return fmt.Errorf("create instructor: %w", err)
		}
		if !instructor.Valid() {
			return fmt.Errorf("create instructor: %w", ErrInvalidHandle)
		}
		if vehicle, err = world.Spawner.SpawnTrialVehicle(ctx, cfg.Vehicle.Model, spawnPoint); err != nil {
			return fmt.Errorf("spawn vehicle %s: %w", cfg.Vehicle.Model, err)
		}
		if !vehicle.Valid() {
			return fmt.Errorf("spawn vehicle %s: %w", cfg.Vehicle.Model, ErrInvalidHandle)
		}
		if err := world.Spawner.SetPlateText(ctx, vehicle, s.deps.Catalog.PlateText); err != nil {
			return fmt.Errorf("set plate text: %w", err)
		}
		if err := world.Spawner.SeatPassenger(ctx, instructor, vehicle); err != nil {
			return fmt.Errorf("seat instructor: %w", err)
		}
		return nil
	})
	if err != nil {
		return fail(fmt.Errorf("teleport to %s: %w", spawnLocation, err))
	}

	s.mu.Lock()
	s.state.Config = cfg
	s.state.SpawnPoint = spawnPoint
	s.state.Instructor = instructor
	s.state.Vehicle = vehicle
	s.mu.Unlock()

	if err := world.Gate.FadeIn(ctx); err != nil {
		return fail(fmt.Errorf("fade in: %w", err))
	}

	s.Start(ctx)
	return nil
}

// Start gives the start speeches, builds the route, shows the first
// checkpoint and marks the trial running. It only acts right after Setup.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	st := &s.state
	if st.Phase != PhaseSettingUp || st.Running || !st.Vehicle.Valid() {
		s.mu.Unlock()
		return
	}

	cfg := st.Config
	for _, line := range s.deps.Catalog.SpeechesFor(cfg.LicenseType) {
		s.deps.World.Notifier.Notify(ctx, line, core.SeverityInfo)
	}

	route := s.seq.SelectRoute(cfg.LicenseType, cfg.CheckpointCount)
	route = append(route, cfg.FinalCheckpoint)

	st.Route = route
	st.Remaining = queue.New(route...)
	st.Current, _ = st.Remaining.Pop()
	st.Reached = 0
	st.TrialID = uuid.NewString()
	st.StartedAt = s.now()
	st.Run = newRunContext(cfg, st.Vehicle, s.deps.World, s.opts)

	s.seq.Display(st)

	st.Running = true
	st.Phase = PhaseRunning
	trialID := st.TrialID
	s.active.Store(&activeTrial{id: trialID, license: cfg.LicenseType})
	s.mu.Unlock()

	s.metrics.trialStarted(ctx, string(cfg.LicenseType))
	s.logger.Info("Trial started",
		"trialId", trialID,
		"license", cfg.LicenseType,
		"checkpoints", len(route))
}

// Progress runs one progression step: arms monitoring once the participant
// left the spawn point and advances along the route. Reaching the last
// checkpoint terminates the trial as passed.
func (s *Supervisor) Progress(ctx context.Context) {
	position := s.deps.World.Participant.Position()

	s.mu.Lock()
	st := &s.state
	if !st.Running {
		s.mu.Unlock()
		return
	}
	armed := s.mon.ArmIfOffRoute(st, position, st.SpawnPoint.XYZ())
	reached := st.Reached
	passed := s.seq.Advance(ctx, st, position)
	reached = st.Reached - reached
	license := string(st.Config.LicenseType)
	rules := len(st.Rules)
	var ended endedTrial
	if passed {
		ended, passed = s.claimLocked()
	}
	s.mu.Unlock()

	if armed {
		s.logger.Debug("Penalty monitoring armed", "rules", rules)
	}
	if reached > 0 {
		s.metrics.checkpointReached(ctx, license)
		s.logger.Debug("Checkpoint reached", "license", license)
	}
	if passed {
		s.finish(ctx, ended, core.OutcomePassed, "")
	}
}

// ArmIfOffRoute arms penalty monitoring for position. It reports whether
// this call armed it.
func (s *Supervisor) ArmIfOffRoute(position core.Vector3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mon.ArmIfOffRoute(&s.state, position, s.state.SpawnPoint.XYZ())
}

// Advance runs the route step for position, terminating the trial as
// passed after the last checkpoint.
func (s *Supervisor) Advance(ctx context.Context, position core.Vector3) {
	s.mu.Lock()
	passed := s.seq.Advance(ctx, &s.state, position)
	var ended endedTrial
	if passed {
		ended, passed = s.claimLocked()
	}
	s.mu.Unlock()

	if passed {
		s.finish(ctx, ended, core.OutcomePassed, "")
	}
}

// Evaluate runs one penalty pass and terminates the trial as failed on the
// first violated rule.
func (s *Supervisor) Evaluate(ctx context.Context) *Violation {
	s.mu.Lock()
	v := s.mon.Evaluate(ctx, &s.state)
	var ended endedTrial
	if v != nil {
		var ok bool
		if ended, ok = s.claimLocked(); !ok {
			v = nil
		}
	}
	s.mu.Unlock()

	if v != nil {
		s.metrics.ruleViolated(ctx, v.Rule)
		s.logger.Info("Penalty rule violated", "rule", v.Rule)
		s.finish(ctx, ended, core.OutcomeFailed, v.Rule)
	}
	return v
}

// OnVehicleUndrivable records a world report of an undrivable entity.
// Only dead vehicles reported while a trial runs are kept.
func (s *Supervisor) OnVehicleUndrivable(h core.Handle, isVehicle, isDead bool) {
	if !isVehicle || !isDead || !h.Valid() {
		return
	}

	s.mu.Lock()
	if !s.state.Running || s.state.Run == nil {
		s.mu.Unlock()
		return
	}
	queued := s.state.Run.report(h)
	s.mu.Unlock()

	if !queued {
		s.logger.Warn("Undrivable vehicle feed full, report dropped", "handle", h)
	}
}

// Terminate ends the running trial with outcome. It does nothing when no
// trial runs, so concurrent callers produce a single outcome.
func (s *Supervisor) Terminate(ctx context.Context, outcome core.Outcome, reason string) {
	s.mu.Lock()
	ended, ok := s.claimLocked()
	s.mu.Unlock()

	if ok {
		s.finish(ctx, ended, outcome, reason)
	}
}

// endedTrial is the state of a trial captured when its outcome was claimed.
type endedTrial struct {
	TrialState
	route []core.Vector3
}

// claimLocked stops the running trial and captures what teardown needs.
// The first caller wins; later callers get false. s.mu must be held.
func (s *Supervisor) claimLocked() (endedTrial, bool) {
	st := &s.state
	if !st.Running {
		return endedTrial{}, false
	}
	st.Running = false
	st.Monitoring = false
	st.Phase = PhaseTerminating

	ended := endedTrial{TrialState: *st, route: make([]core.Vector3, len(st.Route))}
	for i, cp := range st.Route {
		ended.route[i] = cp.Coords
	}
	return ended, true
}

// finish tears down a claimed trial and reports its outcome.
func (s *Supervisor) finish(ctx context.Context, ended endedTrial, outcome core.Outcome, reason string) {
	route := ended.route
	world := s.deps.World
	cfg := ended.Config
	incapacitated := world.Participant.Incapacitated()

	if incapacitated {
		teardown := context.WithoutCancel(ctx)
		s.deleteEntity(teardown, ended.Instructor)
		s.deleteEntity(teardown, ended.Vehicle)
		if cfg.LicenseType.StrandedUnsafe() {
			if err := world.Gate.TeleportTo(teardown, s.deps.Catalog.DefaultLocation, nil); err != nil {
				s.logger.Error("Failed to teleport incapacitated participant", "error", err)
			}
		}
	} else {
		if err := sleep(ctx, s.opts.TerminateGrace); err != nil {
			s.logger.Debug("Terminate grace period interrupted", "error", err)
		}
		teardown := context.WithoutCancel(ctx)
		if err := world.Gate.FadeOut(teardown); err != nil {
			s.logger.Error("Failed to fade out", "error", err)
		}
		s.deleteEntity(teardown, ended.Instructor)
		s.deleteEntity(teardown, ended.Vehicle)
		if err := world.Gate.TeleportTo(teardown, s.deps.Catalog.DefaultLocation, nil); err != nil {
			s.logger.Error("Failed to teleport participant back", "error", err)
		}
		if err := world.Gate.FadeIn(teardown); err != nil {
			s.logger.Error("Failed to fade in", "error", err)
		}
	}

	if ended.Marker.Valid() {
		world.Display.RemoveMarker(ended.Marker)
	}
	if ended.RouteIndicator.Valid() {
		world.Display.RemoveRouteIndicator(ended.RouteIndicator)
	}
	world.Display.SetRouteOverlay(false)

	notify := context.WithoutCancel(ctx)
	endedAt := s.now()

	if outcome == core.OutcomePassed && s.deps.Sink != nil {
		grant := core.LicenseGrant{
			License:   cfg.LicenseType,
			Label:     strings.ToLower(cfg.Label),
			TrialID:   ended.TrialID,
			GrantedAt: endedAt,
		}
		if err := s.deps.Sink.GrantLicense(notify, grant); err != nil {
			s.logger.Error("Failed to grant license", "license", grant.License, "error", err)
		}
	}

	record := core.TrialRecord{
		ID:                 ended.TrialID,
		License:            cfg.LicenseType,
		Label:              cfg.Label,
		Outcome:            outcome,
		Reason:             reason,
		StartedAt:          ended.StartedAt,
		EndedAt:            endedAt,
		CheckpointsReached: ended.Reached,
		CheckpointsTotal:   len(route),
		Route:              route,
		RouteLength:        geo.RouteLength(ended.SpawnPoint.XYZ(), route),
		Incapacitated:      incapacitated,
	}
	for _, o := range s.deps.Observers {
		if err := o.TrialEnded(notify, record); err != nil {
			s.logger.Error("Trial observer failed", "trialId", record.ID, "error", err)
		}
	}

	s.mu.Lock()
	s.state.reset()
	s.mu.Unlock()
	s.active.Store(nil)

	s.metrics.trialFinished(ctx, string(cfg.LicenseType), string(outcome))
	s.logger.Info("Trial finished",
		"trialId", record.ID,
		"license", record.License,
		"outcome", outcome,
		"reason", reason,
		"duration", record.Duration())
}

// Snapshot returns a copy of the visible trial state.
func (s *Supervisor) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.state
	snap := Snapshot{
		Phase:      st.Phase,
		TrialID:    st.TrialID,
		License:    st.Config.LicenseType,
		Label:      st.Config.Label,
		StartedAt:  st.StartedAt,
		Current:    st.Current.Coords,
		Reached:    st.Reached,
		Monitoring: st.Monitoring,
	}
	if st.Remaining != nil {
		snap.Remaining = st.Remaining.Len()
	}
	if st.Route != nil {
		snap.Total = len(st.Route)
	}
	return snap
}

// LogAttrs returns the attributes of the running trial for log records.
// It does not take the session lock.
func (s *Supervisor) LogAttrs() []slog.Attr {
	a := s.active.Load()
	if a == nil {
		return nil
	}
	return []slog.Attr{
		slog.String("trialId", a.id),
		slog.String("license", string(a.license)),
	}
}

func (s *Supervisor) deleteEntity(ctx context.Context, h core.Handle) {
	if !h.Valid() {
		return
	}
	if err := s.deps.World.Spawner.DeleteEntity(ctx, h); err != nil {
		s.logger.Error("Failed to delete entity", "handle", h, "error", err)
	}
}
