package sim

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/soz/drivingschool/internal/catalog"
	"github.com/soz/drivingschool/internal/exam"
	"github.com/soz/drivingschool/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func simCatalog() *catalog.Catalog {
	road := []core.LicenseType{core.LicenseCar, core.LicenseBoat}
	return &catalog.Catalog{
		Licenses: map[core.LicenseType]core.LicenseConfig{
			core.LicenseCar: {
				LicenseType:     core.LicenseCar,
				Label:           "Permis B",
				Vehicle:         core.VehicleConfig{Model: "dilettante"},
				CheckpointCount: 3,
				Marker:          core.MarkerConfig{Type: 45, TypeFinal: 4, Size: 5},
				FinalCheckpoint: core.Checkpoint{Coords: core.Vector3{X: 200}},
				SpeedLimit:      90,
			},
			core.LicenseBoat: {
				LicenseType:     core.LicenseBoat,
				Label:           "Permis Bateau",
				Vehicle:         core.VehicleConfig{Model: "dinghy"},
				CheckpointCount: 3,
				Marker:          core.MarkerConfig{Type: 1, TypeFinal: 4, Size: 5},
				FinalCheckpoint: core.Checkpoint{Coords: core.Vector3{Y: 200}},
			},
		},
		Checkpoints: []core.Checkpoint{
			{Coords: core.Vector3{X: 50}, Licenses: road},
			{Coords: core.Vector3{X: 100}, Licenses: road},
			{Coords: core.Vector3{X: 150}, Licenses: road},
		},
		Instructor:      core.PedConfig{Model: "instructor"},
		RouteColor:      5,
		PlateText:       "DRIVING",
		DefaultLocation: "driving_school",
	}
}

type grants struct {
	mu   sync.Mutex
	list []core.LicenseGrant
}

func (g *grants) GrantLicense(_ context.Context, grant core.LicenseGrant) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.list = append(g.list, grant)
	return nil
}

func (g *grants) all() []core.LicenseGrant {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]core.LicenseGrant(nil), g.list...)
}

type simHarness struct {
	world   *World
	sup     *exam.Supervisor
	grants  *grants
	records <-chan core.TrialRecord
}

func newSimHarness(t *testing.T) *simHarness {
	t.Helper()
	w := New(Options{
		Speed:     20,
		TimeScale: 20,
		Locations: map[string]core.Vector4{"driving_school": {X: -20}},
		Logger:    quietLogger,
	})
	observer, records := NewRecorder(4)
	g := &grants{}

	sup, err := exam.New(exam.Dependencies{
		Catalog:   simCatalog(),
		World:     w.Collaborators(),
		Sink:      g,
		Observers: []exam.TrialObserver{observer},
		Logger:    quietLogger,
		Options: exam.Options{
			ProgressInterval: 2 * time.Millisecond,
			PenaltyInterval:  5 * time.Millisecond,
			MinVehicleHealth: 900,
		},
	})
	require.NoError(t, err)
	return &simHarness{world: w, sup: sup, grants: g, records: records}
}

func (h *simHarness) run(t *testing.T, sc Scenario) core.TrialRecord {
	t.Helper()
	if sc.Location == "" {
		sc.Location = "driving_school"
	}
	sc.Tick = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	record, err := Run(ctx, h.sup, h.world, sc, h.records)
	require.NoError(t, err)
	return record
}

func (h *simHarness) assertCleanedUp(t *testing.T) {
	t.Helper()
	assert.Equal(t, 0, h.world.Entities())
	markers, indicators := h.world.Markers()
	assert.Equal(t, 0, markers)
	assert.Equal(t, 0, indicators)
	assert.False(t, h.world.Overlay())
	assert.Equal(t, exam.PhaseIdle, h.sup.Snapshot().Phase)
}

func TestRun_Passed(t *testing.T) {
	h := newSimHarness(t)

	record := h.run(t, Scenario{License: core.LicenseCar})

	assert.Equal(t, core.OutcomePassed, record.Outcome)
	assert.Equal(t, 4, record.CheckpointsTotal)
	assert.Equal(t, 4, record.CheckpointsReached)
	assert.Greater(t, record.RouteLength, 0.0)
	require.Len(t, h.grants.all(), 1)
	assert.Equal(t, "permis b", h.grants.all()[0].Label)
	h.assertCleanedUp(t)

	var progress []string
	for _, n := range h.world.Notifications() {
		if n.Severity == core.SeveritySuccess || n.Severity == core.SeverityInfo {
			progress = append(progress, n.Message)
		}
	}
	assert.Contains(t, progress, "Checkpoint 4/4")
}

func TestRun_Faults(t *testing.T) {
	tests := []struct {
		fault         Fault
		license       core.LicenseType
		reason        string
		incapacitated bool
	}{
		{FaultSeatbelt, core.LicenseCar, exam.RuleSeatbelt, false},
		{FaultPhone, core.LicenseCar, exam.RulePhone, false},
		{FaultDamage, core.LicenseCar, exam.RuleVehicleDamage, false},
		{FaultLeaveVehicle, core.LicenseCar, exam.RuleLeftVehicle, false},
		{FaultSpeeding, core.LicenseCar, exam.RuleSpeeding, false},
		{FaultUndrivable, core.LicenseCar, exam.RuleUndrivableVehicle, false},
		{FaultIncapacitated, core.LicenseCar, exam.RuleLeftVehicle, true},
		{FaultIncapacitated, core.LicenseBoat, exam.RuleLeftVehicle, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.fault)+"/"+string(tt.license), func(t *testing.T) {
			h := newSimHarness(t)

			record := h.run(t, Scenario{License: tt.license, Fault: tt.fault, FaultAfter: 1})

			assert.Equal(t, core.OutcomeFailed, record.Outcome)
			assert.Equal(t, tt.reason, record.Reason)
			assert.Equal(t, tt.incapacitated, record.Incapacitated)
			assert.Less(t, record.CheckpointsReached, record.CheckpointsTotal)
			assert.Empty(t, h.grants.all())
			h.assertCleanedUp(t)
		})
	}
}

func TestRun_SeatbeltIgnoredForBoats(t *testing.T) {
	h := newSimHarness(t)

	record := h.run(t, Scenario{License: core.LicenseBoat, Fault: FaultSeatbelt})

	assert.Equal(t, core.OutcomePassed, record.Outcome)
}

func TestRun_UnknownLocation(t *testing.T) {
	h := newSimHarness(t)

	_, err := Run(context.Background(), h.sup, h.world, Scenario{License: core.LicenseCar, Location: "mars"}, h.records)

	assert.Error(t, err)
	assert.Equal(t, 0, h.world.Entities())

	_, ok := h.world.Location("mars")
	assert.False(t, ok)
	loc, ok := h.world.Location("driving_school")
	assert.True(t, ok)
	assert.Equal(t, -20.0, loc.X)
}

func TestParseFault(t *testing.T) {
	f, err := ParseFault("")
	require.NoError(t, err)
	assert.Equal(t, FaultNone, f)

	f, err = ParseFault("phone")
	require.NoError(t, err)
	assert.Equal(t, FaultPhone, f)

	_, err = ParseFault("drunk")
	assert.Error(t, err)
}

func TestWorld_SpawnWarpsParticipant(t *testing.T) {
	w := New(Options{Logger: quietLogger})
	ctx := context.Background()

	vehicle, err := w.SpawnTrialVehicle(ctx, "dilettante", core.Vector4{X: 5, Y: 6})
	require.NoError(t, err)
	assert.Equal(t, vehicle, w.OccupiedVehicle())
	assert.Equal(t, core.Vector3{X: 5, Y: 6}, w.Position())

	ped, err := w.CreateInstructor(ctx, core.PedConfig{Model: "instructor"})
	require.NoError(t, err)
	require.NoError(t, w.SeatPassenger(ctx, ped, vehicle))
	require.NoError(t, w.SetPlateText(ctx, vehicle, "DRIVING"))
	assert.Equal(t, "DRIVING", w.Plate(vehicle))

	assert.Error(t, w.SeatPassenger(ctx, vehicle, ped))
	assert.Error(t, w.SetPlateText(ctx, ped, "X"))

	require.NoError(t, w.DeleteEntity(ctx, vehicle))
	require.NoError(t, w.DeleteEntity(ctx, vehicle))
	assert.Equal(t, core.NoHandle, w.OccupiedVehicle())
}

func TestWorld_StepFollowsNewestIndicator(t *testing.T) {
	w := New(Options{Speed: 10, Logger: quietLogger})
	_, _ = w.SpawnTrialVehicle(context.Background(), "dilettante", core.Vector4{})

	assert.False(t, w.Step(time.Second), "no indicator, no movement")

	old := w.CreateRouteIndicator(core.Vector3{Y: 100}, 5)
	w.CreateRouteIndicator(core.Vector3{X: 100}, 5)

	require.True(t, w.Step(time.Second))
	assert.Equal(t, core.Vector3{X: 10}, w.Position())
	assert.Equal(t, 36.0, w.Speed(w.OccupiedVehicle()))

	w.RemoveRouteIndicator(old)
	require.True(t, w.Step(20*time.Second))
	assert.Equal(t, core.Vector3{X: 100}, w.Position(), "never overshoots the target")
}

func TestWorld_FadeHonorsContext(t *testing.T) {
	w := New(Options{FadeDelay: time.Hour, Logger: quietLogger})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, w.FadeOut(ctx), context.Canceled)
}
