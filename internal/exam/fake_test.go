package exam

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/soz/drivingschool/internal/catalog"
	"github.com/soz/drivingschool/internal/random"
	"github.com/soz/drivingschool/pkg/core"
)

var (
	carCheckpoints = []core.Checkpoint{
		{Coords: core.Vector3{X: 100}, Licenses: []core.LicenseType{core.LicenseCar}},
		{Coords: core.Vector3{X: 200}, Message: "turn left", Licenses: []core.LicenseType{core.LicenseCar}},
		{Coords: core.Vector3{X: 300}, Licenses: []core.LicenseType{core.LicenseCar}},
		{Coords: core.Vector3{X: 400}, Licenses: []core.LicenseType{core.LicenseCar, core.LicenseBoat}},
		{Coords: core.Vector3{X: 500}, Licenses: []core.LicenseType{core.LicenseCar}},
	}
	boatCheckpoints = []core.Checkpoint{
		{Coords: core.Vector3{Y: 100}, Licenses: []core.LicenseType{core.LicenseBoat}},
		{Coords: core.Vector3{Y: 200}, Licenses: []core.LicenseType{core.LicenseBoat}},
	}
	carFinal  = core.Checkpoint{Coords: core.Vector3{X: 1000}, Message: "park here"}
	boatFinal = core.Checkpoint{Coords: core.Vector3{Y: 1000}}
)

func testCatalog() *catalog.Catalog {
	marker := core.MarkerConfig{Type: 45, TypeFinal: 4, Size: 5}
	cps := append(append([]core.Checkpoint{}, carCheckpoints...), boatCheckpoints...)
	return &catalog.Catalog{
		Licenses: map[core.LicenseType]core.LicenseConfig{
			core.LicenseCar: {
				LicenseType:     core.LicenseCar,
				Label:           "Permis B",
				Vehicle:         core.VehicleConfig{Model: "dilettante"},
				CheckpointCount: 3,
				Marker:          marker,
				FinalCheckpoint: carFinal,
				SpeedLimit:      90,
			},
			core.LicenseBoat: {
				LicenseType:     core.LicenseBoat,
				Label:           "Permis Bateau",
				Vehicle:         core.VehicleConfig{Model: "dinghy"},
				CheckpointCount: 5,
				Marker:          marker,
				FinalCheckpoint: boatFinal,
			},
		},
		Checkpoints: cps,
		Instructor:  core.PedConfig{Model: "instructor"},
		StartSpeeches: []catalog.Speech{
			{Message: "welcome"},
			{Message: "buckle up", Exclude: []core.LicenseType{core.LicenseBoat}},
			{Message: "life jacket", Include: []core.LicenseType{core.LicenseBoat}},
		},
		RouteColor:      5,
		PlateText:       "DRIVING",
		DefaultLocation: "driving_school",
	}
}

type notification struct {
	Message  string
	Severity core.Severity
}

// fakeWorld implements every collaborator and records what happened.
type fakeWorld struct {
	mu sync.Mutex

	nextHandle core.Handle
	entities   map[core.Handle]string
	deleted    []core.Handle
	plates     map[core.Handle]string
	seated     map[core.Handle]core.Handle
	spawnErr   error
	spawnCalls int

	fadeOuts, fadeIns int
	teleports         []string

	notifications []notification

	position      core.Vector3
	incapacitated bool

	markers        map[core.Handle]core.MarkerSpec
	markerHistory  []core.MarkerSpec
	indicators     map[core.Handle]core.Vector3
	overlay        bool
	removedUnknown int

	health   float64
	speed    float64
	occupied core.Handle
	belt     bool
	phone    bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		nextHandle: 100,
		entities:   map[core.Handle]string{},
		plates:     map[core.Handle]string{},
		seated:     map[core.Handle]core.Handle{},
		markers:    map[core.Handle]core.MarkerSpec{},
		indicators: map[core.Handle]core.Vector3{},
		health:     1000,
		belt:       true,
	}
}

func (w *fakeWorld) world() World {
	return World{
		Spawner:     w,
		Gate:        w,
		Notifier:    w,
		Participant: w,
		Display:     w,
		Vehicles:    w,
		Seatbelt:    w,
		Phone:       w,
	}
}

func (w *fakeWorld) handle() core.Handle {
	w.nextHandle++
	return w.nextHandle
}

func (w *fakeWorld) CreateInstructor(_ context.Context, ped core.PedConfig) (core.Handle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.entities[h] = "ped:" + ped.Model
	return h, nil
}

func (w *fakeWorld) SpawnTrialVehicle(_ context.Context, model string, _ core.Vector4) (core.Handle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spawnCalls++
	if w.spawnErr != nil {
		return core.NoHandle, w.spawnErr
	}
	h := w.handle()
	w.entities[h] = "vehicle:" + model
	w.occupied = h
	return h, nil
}

func (w *fakeWorld) SetPlateText(_ context.Context, vehicle core.Handle, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.plates[vehicle] = text
	return nil
}

func (w *fakeWorld) SeatPassenger(_ context.Context, ped, vehicle core.Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seated[ped] = vehicle
	return nil
}

func (w *fakeWorld) DeleteEntity(_ context.Context, h core.Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entities, h)
	w.deleted = append(w.deleted, h)
	return nil
}

func (w *fakeWorld) FadeOut(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fadeOuts++
	return nil
}

func (w *fakeWorld) FadeIn(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fadeIns++
	return nil
}

func (w *fakeWorld) TeleportTo(ctx context.Context, location string, onArrived func(context.Context) error) error {
	w.mu.Lock()
	w.teleports = append(w.teleports, location)
	w.position = core.Vector3{}
	w.mu.Unlock()
	if onArrived != nil {
		return onArrived(ctx)
	}
	return nil
}

func (w *fakeWorld) Notify(_ context.Context, message string, severity core.Severity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notifications = append(w.notifications, notification{message, severity})
}

func (w *fakeWorld) Position() core.Vector3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position
}

func (w *fakeWorld) Incapacitated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.incapacitated
}

func (w *fakeWorld) CreateMarker(spec core.MarkerSpec) core.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.markers[h] = spec
	w.markerHistory = append(w.markerHistory, spec)
	return h
}

func (w *fakeWorld) RemoveMarker(h core.Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.markers[h]; !ok {
		w.removedUnknown++
	}
	delete(w.markers, h)
}

func (w *fakeWorld) CreateRouteIndicator(target core.Vector3, _ int) core.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.indicators[h] = target
	return h
}

func (w *fakeWorld) RemoveRouteIndicator(h core.Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.indicators[h]; !ok {
		w.removedUnknown++
	}
	delete(w.indicators, h)
}

func (w *fakeWorld) SetRouteOverlay(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.overlay = enabled
}

func (w *fakeWorld) BodyHealth(core.Handle) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.health
}

func (w *fakeWorld) Speed(core.Handle) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.speed
}

func (w *fakeWorld) OccupiedVehicle() core.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.occupied
}

func (w *fakeWorld) SeatbeltOn() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.belt
}

func (w *fakeWorld) InUse() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phone
}

func (w *fakeWorld) moveTo(p core.Vector3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.position = p
}

func (w *fakeWorld) set(f func(w *fakeWorld)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f(w)
}

func (w *fakeWorld) messages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.notifications))
	for i, n := range w.notifications {
		out[i] = n.Message
	}
	return out
}

func (w *fakeWorld) liveVisuals() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.markers) + len(w.indicators)
}

func (w *fakeWorld) teleportCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.teleports)
}

// recorder is a LicenseSink and TrialObserver.
type recorder struct {
	mu      sync.Mutex
	grants  []core.LicenseGrant
	records []core.TrialRecord
	err     error
}

func (r *recorder) GrantLicense(_ context.Context, g core.LicenseGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants = append(r.grants, g)
	return r.err
}

func (r *recorder) TrialEnded(_ context.Context, rec core.TrialRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.err
}

func (r *recorder) counts() (grants, records int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.grants), len(r.records)
}

func testOptions() Options {
	o := DefaultOptions()
	o.ArrivalDelay = 0
	o.TerminateGrace = 0
	o.MinVehicleHealth = 900
	o.ProgressInterval = time.Millisecond
	o.PenaltyInterval = 2 * time.Millisecond
	return o
}

type harness struct {
	sup   *Supervisor
	world *fakeWorld
	rec   *recorder
}

func newHarness(opts ...func(*Dependencies)) (*harness, error) {
	w := newFakeWorld()
	rec := &recorder{}
	deps := Dependencies{
		Catalog:   testCatalog(),
		World:     w.world(),
		Sink:      rec,
		Observers: []TrialObserver{rec},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Options:   testOptions(),
		Rand:      random.New(1),
	}
	for _, o := range opts {
		o(&deps)
	}
	sup, err := New(deps)
	if err != nil {
		return nil, err
	}
	return &harness{sup: sup, world: w, rec: rec}, nil
}

// route returns the remaining route of the running trial, current first.
func (h *harness) route() []core.Checkpoint {
	h.sup.mu.Lock()
	defer h.sup.mu.Unlock()
	if !h.sup.state.Running {
		return nil
	}
	return append([]core.Checkpoint{h.sup.state.Current}, h.sup.state.Remaining.Items()...)
}

var errSpawn = errors.New("model not loaded")
