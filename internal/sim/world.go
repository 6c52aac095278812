// Package sim is an in-process stand-in for the game world. It implements
// every collaborator the exam consumes and drives the participant along the
// displayed route.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soz/drivingschool/internal/exam"
	"github.com/soz/drivingschool/pkg/core"
)

// DefaultLocations are the teleport destinations known to the simulator.
var DefaultLocations = map[string]core.Vector4{
	"driving_school": {X: 230.17, Y: 372.40, Z: 106.01, Heading: 159.0},
	"heliport":       {X: -745.28, Y: -1468.77, Z: 5.0},
	"harbour":        {X: -802.47, Y: -1497.16, Z: 0.3},
}

// DefaultSpeed is the autopilot speed in m/s, 72 km/h.
const DefaultSpeed = 20.0

// Options configure a World.
type Options struct {
	FadeDelay time.Duration
	// Speed of the autopilot in m/s, as reported to the exam.
	Speed float64
	// TimeScale fast-forwards movement without changing the reported speed.
	TimeScale float64
	Locations map[string]core.Vector4
	Logger    *slog.Logger
}

// Notification is a message shown to the participant.
type Notification struct {
	Message  string
	Severity core.Severity
}

type entityKind int

const (
	kindPed entityKind = iota
	kindVehicle
)

type entity struct {
	kind     entityKind
	model    string
	position core.Vector3
	plate    string
	health   float64
	seatedIn core.Handle
}

// World is a simulated game world. It is safe for concurrent use.
type World struct {
	opts Options

	mu            sync.Mutex
	nextHandle    core.Handle
	entities      map[core.Handle]*entity
	markers       map[core.Handle]core.MarkerSpec
	indicators    map[core.Handle]core.Vector3
	overlay       bool
	faded         bool
	position      core.Vector3
	occupied      core.Handle
	incapacitated bool
	seatbelt      bool
	phone         bool
	speed         float64
	notifications []Notification
}

// New creates an empty world with the participant at the origin.
func New(opts Options) *World {
	if opts.Locations == nil {
		opts.Locations = DefaultLocations
	}
	if opts.Speed <= 0 {
		opts.Speed = DefaultSpeed
	}
	if opts.TimeScale <= 0 {
		opts.TimeScale = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &World{
		opts:       opts,
		entities:   make(map[core.Handle]*entity),
		markers:    make(map[core.Handle]core.MarkerSpec),
		indicators: make(map[core.Handle]core.Vector3),
		seatbelt:   true,
	}
}

// Collaborators returns the world bundle for exam.Dependencies.
func (w *World) Collaborators() exam.World {
	return exam.World{
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

// Location returns the coordinates of a named teleport destination.
func (w *World) Location(name string) (core.Vector4, bool) {
	loc, ok := w.opts.Locations[name]
	return loc, ok
}

func (w *World) handle() core.Handle {
	w.nextHandle++
	return w.nextHandle
}

// EntitySpawner

func (w *World) CreateInstructor(ctx context.Context, ped core.PedConfig) (core.Handle, error) {
	if err := ctx.Err(); err != nil {
		return core.NoHandle, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.entities[h] = &entity{kind: kindPed, model: ped.Model, position: ped.Coords.XYZ(), health: 1000}
	return h, nil
}

// SpawnTrialVehicle spawns the vehicle and warps the participant into the
// driver seat.
func (w *World) SpawnTrialVehicle(ctx context.Context, model string, at core.Vector4) (core.Handle, error) {
	if err := ctx.Err(); err != nil {
		return core.NoHandle, err
	}
	if model == "" {
		return core.NoHandle, fmt.Errorf("sim: empty vehicle model")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.entities[h] = &entity{kind: kindVehicle, model: model, position: at.XYZ(), health: 1000}
	w.occupied = h
	w.position = at.XYZ()
	return h, nil
}

func (w *World) SetPlateText(_ context.Context, vehicle core.Handle, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[vehicle]
	if !ok || e.kind != kindVehicle {
		return fmt.Errorf("sim: no vehicle %d", vehicle)
	}
	e.plate = text
	return nil
}

func (w *World) SeatPassenger(_ context.Context, ped, vehicle core.Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.entities[ped]
	if !ok || p.kind != kindPed {
		return fmt.Errorf("sim: no ped %d", ped)
	}
	if v, ok := w.entities[vehicle]; !ok || v.kind != kindVehicle {
		return fmt.Errorf("sim: no vehicle %d", vehicle)
	}
	p.seatedIn = vehicle
	return nil
}

func (w *World) DeleteEntity(_ context.Context, h core.Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entities, h)
	if w.occupied == h {
		w.occupied = core.NoHandle
		w.speed = 0
	}
	return nil
}

// PositionGate

func (w *World) FadeOut(ctx context.Context) error {
	if err := w.fadeWait(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	w.faded = true
	w.mu.Unlock()
	return nil
}

func (w *World) FadeIn(ctx context.Context) error {
	if err := w.fadeWait(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	w.faded = false
	w.mu.Unlock()
	return nil
}

func (w *World) fadeWait(ctx context.Context) error {
	if w.opts.FadeDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(w.opts.FadeDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (w *World) TeleportTo(ctx context.Context, location string, onArrived func(context.Context) error) error {
	dest, ok := w.opts.Locations[location]
	if !ok {
		return fmt.Errorf("sim: unknown location %q", location)
	}

	w.mu.Lock()
	w.occupied = core.NoHandle
	w.speed = 0
	w.position = dest.XYZ()
	w.mu.Unlock()
	w.opts.Logger.Debug("Participant teleported", "location", location)

	if onArrived == nil {
		return nil
	}
	return onArrived(ctx)
}

// Notifier

func (w *World) Notify(_ context.Context, message string, severity core.Severity) {
	w.mu.Lock()
	w.notifications = append(w.notifications, Notification{Message: message, Severity: severity})
	w.mu.Unlock()
	w.opts.Logger.Info(message, "severity", severity)
}

// Participant

func (w *World) Position() core.Vector3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position
}

func (w *World) Incapacitated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.incapacitated
}

// WorldDisplay

func (w *World) CreateMarker(spec core.MarkerSpec) core.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.markers[h] = spec
	return h
}

func (w *World) RemoveMarker(h core.Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.markers, h)
}

func (w *World) CreateRouteIndicator(target core.Vector3, _ int) core.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.indicators[h] = target
	return h
}

func (w *World) RemoveRouteIndicator(h core.Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.indicators, h)
}

func (w *World) SetRouteOverlay(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.overlay = enabled
}

// VehicleProbe

func (w *World) BodyHealth(vehicle core.Handle) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entities[vehicle]; ok {
		return e.health
	}
	return 0
}

func (w *World) Speed(vehicle core.Handle) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if vehicle != w.occupied {
		return 0
	}
	return w.speed
}

func (w *World) OccupiedVehicle() core.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.occupied
}

// SeatbeltProvider

func (w *World) SeatbeltOn() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seatbelt
}

// PhoneService

func (w *World) InUse() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phone
}
