package worker

import (
	"fmt"

	"github.com/soz/drivingschool/internal/dispatcher"
)

// Host commands handled by the exam.
const (
	CommandExamSetup         = ":EXAM:SETUP:"
	CommandVehicleUndrivable = ":VEHICLE:UNDRIVABLE:"
	CommandExamStatus        = ":EXAM:STATUS:"
)

// RegisterHandlers registers all exam handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Setup fades, teleports and spawns - buffered so the host call returns at once
	d.Register(CommandExamSetup, m.handleExamSetup, dispatcher.Buffered(8), dispatcher.Logged())

	// World feed - sync, the supervisor only queues it
	d.Register(CommandVehicleUndrivable, m.handleVehicleUndrivable, dispatcher.Logged())

	// Status query - sync
	d.Register(CommandExamStatus, m.handleExamStatus)
}

func (m *Manager) handleExamSetup(e dispatcher.Event) (any, error) {
	setup, err := m.deps.ParserService.ParseExamSetup(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exam setup: %w", err)
	}

	if err := m.deps.Exam.Setup(m.ctx, setup.License, setup.SpawnPoint, setup.SpawnLocation); err != nil {
		return nil, fmt.Errorf("failed to set up exam: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleVehicleUndrivable(e dispatcher.Event) (any, error) {
	ev, err := m.deps.ParserService.ParseVehicleUndrivable(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse undrivable vehicle: %w", err)
	}

	m.deps.Exam.OnVehicleUndrivable(ev.Handle, ev.IsVehicle, ev.IsDead)
	return nil, nil
}

func (m *Manager) handleExamStatus(_ dispatcher.Event) (any, error) {
	snap := m.deps.Exam.Snapshot()
	if snap.TrialID == "" {
		return snap.Phase.String(), ErrNoTrialRunning
	}
	return fmt.Sprintf("%s|%s|%d/%d|%t", snap.Phase, snap.License, snap.Reached, snap.Total, snap.Monitoring), nil
}
