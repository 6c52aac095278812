package exam

import (
	"context"

	"github.com/soz/drivingschool/pkg/core"
)

// EntitySpawner creates and removes the trial actors.
// DeleteEntity must accept handles that no longer exist.
type EntitySpawner interface {
	CreateInstructor(ctx context.Context, ped core.PedConfig) (core.Handle, error)
	SpawnTrialVehicle(ctx context.Context, model string, at core.Vector4) (core.Handle, error)
	SetPlateText(ctx context.Context, vehicle core.Handle, text string) error
	SeatPassenger(ctx context.Context, ped, vehicle core.Handle) error
	DeleteEntity(ctx context.Context, h core.Handle) error
}

// PositionGate moves the participant around the world.
// TeleportTo runs onArrived, when non-nil, once the participant is in place
// and returns its error.
type PositionGate interface {
	FadeOut(ctx context.Context) error
	FadeIn(ctx context.Context) error
	TeleportTo(ctx context.Context, location string, onArrived func(context.Context) error) error
}

// Notifier shows textual feedback to the participant.
type Notifier interface {
	Notify(ctx context.Context, message string, severity core.Severity)
}

// Participant exposes the supervised player.
type Participant interface {
	Position() core.Vector3
	Incapacitated() bool
}

// WorldDisplay draws checkpoint markers and the route indicator.
// Remove calls must accept handles that no longer exist.
type WorldDisplay interface {
	CreateMarker(spec core.MarkerSpec) core.Handle
	RemoveMarker(h core.Handle)
	CreateRouteIndicator(target core.Vector3, color int) core.Handle
	RemoveRouteIndicator(h core.Handle)
	SetRouteOverlay(enabled bool)
}

// VehicleProbe reads the state of vehicles for penalty rules.
type VehicleProbe interface {
	// BodyHealth is in [0, 1000].
	BodyHealth(vehicle core.Handle) float64
	// Speed is in km/h.
	Speed(vehicle core.Handle) float64
	// OccupiedVehicle is the vehicle the participant sits in, NoHandle on foot.
	OccupiedVehicle() core.Handle
}

// SeatbeltProvider reports the participant's seatbelt.
type SeatbeltProvider interface {
	SeatbeltOn() bool
}

// PhoneService reports phone usage.
type PhoneService interface {
	InUse() bool
}

// LicenseSink persists granted licenses.
type LicenseSink interface {
	GrantLicense(ctx context.Context, grant core.LicenseGrant) error
}

// TrialObserver is told about every finished trial.
type TrialObserver interface {
	TrialEnded(ctx context.Context, record core.TrialRecord) error
}

// LicenseSinkFunc adapts a function to LicenseSink.
type LicenseSinkFunc func(ctx context.Context, grant core.LicenseGrant) error

// GrantLicense calls f.
func (f LicenseSinkFunc) GrantLicense(ctx context.Context, grant core.LicenseGrant) error {
	return f(ctx, grant)
}

// TrialObserverFunc adapts a function to TrialObserver.
type TrialObserverFunc func(ctx context.Context, record core.TrialRecord) error

// TrialEnded calls f.
func (f TrialObserverFunc) TrialEnded(ctx context.Context, record core.TrialRecord) error {
	return f(ctx, record)
}

// World bundles the collaborators of a trial.
// Vehicles, Seatbelt and Phone are optional; rules that need a missing
// collaborator are left out of the active set.
type World struct {
	Spawner     EntitySpawner
	Gate        PositionGate
	Notifier    Notifier
	Participant Participant
	Display     WorldDisplay
	Vehicles    VehicleProbe
	Seatbelt    SeatbeltProvider
	Phone       PhoneService
}

func (w World) validate() error {
	switch {
	case w.Spawner == nil:
		return errMissing("spawner")
	case w.Gate == nil:
		return errMissing("position gate")
	case w.Notifier == nil:
		return errMissing("notifier")
	case w.Participant == nil:
		return errMissing("participant")
	case w.Display == nil:
		return errMissing("world display")
	}
	return nil
}
