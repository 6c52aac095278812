package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/soz/drivingschool/internal/exam"
	"github.com/soz/drivingschool/pkg/core"
)

// Fault is a misbehavior the simulated participant commits during a trial.
type Fault string

const (
	FaultNone          Fault = ""
	FaultSeatbelt      Fault = "seatbelt"
	FaultPhone         Fault = "phone"
	FaultDamage        Fault = "damage"
	FaultLeaveVehicle  Fault = "leave"
	FaultSpeeding      Fault = "speeding"
	FaultUndrivable    Fault = "undrivable"
	FaultIncapacitated Fault = "incapacitated"
)

// Faults lists every fault a scenario accepts.
var Faults = []Fault{FaultSeatbelt, FaultPhone, FaultDamage, FaultLeaveVehicle, FaultSpeeding, FaultUndrivable, FaultIncapacitated}

// ParseFault resolves a fault name. The empty name is FaultNone.
func ParseFault(s string) (Fault, error) {
	if s == "" || s == "none" {
		return FaultNone, nil
	}
	for _, f := range Faults {
		if string(f) == s {
			return f, nil
		}
	}
	return FaultNone, fmt.Errorf("unknown fault %q", s)
}

// Scenario is one simulated trial.
type Scenario struct {
	License    core.LicenseType
	SpawnPoint core.Vector4
	Location   string
	Fault      Fault
	// FaultAfter is the number of checkpoints reached before the fault.
	FaultAfter int
	Tick       time.Duration
}

// NewRecorder returns an observer that forwards every finished trial to the
// returned channel. The channel holds size records; further ones are dropped.
func NewRecorder(size int) (exam.TrialObserver, <-chan core.TrialRecord) {
	ch := make(chan core.TrialRecord, size)
	return exam.TrialObserverFunc(func(_ context.Context, record core.TrialRecord) error {
		select {
		case ch <- record:
		default:
		}
		return nil
	}), ch
}

// Run plays sc against sup until the trial ends and returns its record.
// sup must have been built on w and report to records. The exam loops are
// driven by a Runner owned by Run.
func Run(ctx context.Context, sup *exam.Supervisor, w *World, sc Scenario, records <-chan core.TrialRecord) (core.TrialRecord, error) {
	if sc.Tick <= 0 {
		sc.Tick = 50 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := exam.NewRunner(sup)
	runner.Start(ctx)
	defer runner.Stop()

	go w.Drive(ctx, sc.Tick)

	if err := sup.Setup(ctx, sc.License, sc.SpawnPoint, sc.Location); err != nil {
		return core.TrialRecord{}, fmt.Errorf("setup: %w", err)
	}
	if sup.Snapshot().Phase != exam.PhaseRunning {
		return core.TrialRecord{}, fmt.Errorf("trial did not start")
	}

	injected := sc.Fault == FaultNone
	ticker := time.NewTicker(sc.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return core.TrialRecord{}, ctx.Err()
		case record := <-records:
			return record, nil
		case <-ticker.C:
			if injected {
				continue
			}
			snap := sup.Snapshot()
			if snap.Monitoring && snap.Reached >= sc.FaultAfter {
				w.inject(sc.Fault, sup)
				injected = true
			}
		}
	}
}

func (w *World) inject(f Fault, sup *exam.Supervisor) {
	w.opts.Logger.Info("Injecting fault", "fault", string(f))

	switch f {
	case FaultSeatbelt:
		w.SetSeatbelt(false)
	case FaultPhone:
		w.SetPhoneInUse(true)
	case FaultDamage:
		w.Damage(w.OccupiedVehicle(), 500)
	case FaultLeaveVehicle:
		w.ExitVehicle()
	case FaultSpeeding:
		w.SetCruiseSpeed(250)
	case FaultUndrivable:
		vehicle := w.OccupiedVehicle()
		w.Damage(vehicle, 1000)
		sup.OnVehicleUndrivable(vehicle, true, true)
	case FaultIncapacitated:
		w.SetIncapacitated(true)
	}
}
