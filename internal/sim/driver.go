package sim

import (
	"context"
	"math"
	"time"

	"github.com/soz/drivingschool/pkg/core"
)

// Step moves the participant, and the vehicle they sit in, toward the active
// route indicator for dt at the configured speed and time scale. It reports
// whether the participant moved.
func (w *World) Step(dt time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	target, ok := w.activeTarget()
	if !ok || w.incapacitated || w.faded {
		w.speed = 0
		return false
	}

	dist := core.Distance(w.position, target)
	if dist == 0 {
		w.speed = 0
		return false
	}
	travel := w.opts.Speed * w.opts.TimeScale * dt.Seconds()
	if travel >= dist {
		w.position = target
	} else {
		f := travel / dist
		w.position = core.Vector3{
			X: w.position.X + (target.X-w.position.X)*f,
			Y: w.position.Y + (target.Y-w.position.Y)*f,
			Z: w.position.Z + (target.Z-w.position.Z)*f,
		}
	}
	if w.occupied.Valid() {
		w.speed = w.opts.Speed * 3.6
		if v, ok := w.entities[w.occupied]; ok {
			v.position = w.position
		}
	}
	return true
}

// Drive calls Step every tick until ctx is done.
func (w *World) Drive(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Step(tick)
		}
	}
}

// activeTarget is the most recently created route indicator.
func (w *World) activeTarget() (core.Vector3, bool) {
	var best core.Handle
	for h := range w.indicators {
		if h > best {
			best = h
		}
	}
	if !best.Valid() {
		return core.Vector3{}, false
	}
	return w.indicators[best], true
}

// Fault injection

// SetSeatbelt buckles or unbuckles the participant.
func (w *World) SetSeatbelt(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seatbelt = on
}

// SetPhoneInUse starts or ends a phone call.
func (w *World) SetPhoneInUse(inUse bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.phone = inUse
}

// SetIncapacitated knocks the participant out or revives them. A knocked out
// participant falls out of the vehicle.
func (w *World) SetIncapacitated(down bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.incapacitated = down
	if down {
		w.occupied = core.NoHandle
		w.speed = 0
	}
}

// Damage removes amount from the body health of vehicle, down to zero.
func (w *World) Damage(vehicle core.Handle, amount float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entities[vehicle]; ok {
		e.health = math.Max(0, e.health-amount)
	}
}

// ExitVehicle puts the participant on foot.
func (w *World) ExitVehicle() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.occupied = core.NoHandle
	w.speed = 0
}

// SetCruiseSpeed changes the autopilot speed, in km/h.
func (w *World) SetCruiseSpeed(kmh float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opts.Speed = kmh / 3.6
}

// Inspection

// Notifications returns every message shown so far.
func (w *World) Notifications() []Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Notification, len(w.notifications))
	copy(out, w.notifications)
	return out
}

// Entities is the number of spawned entities still in the world.
func (w *World) Entities() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entities)
}

// Markers is the number of markers and route indicators on display.
func (w *World) Markers() (markers, indicators int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.markers), len(w.indicators)
}

// Overlay reports whether the route overlay is enabled.
func (w *World) Overlay() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.overlay
}

// Plate returns the plate text of vehicle.
func (w *World) Plate(vehicle core.Handle) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entities[vehicle]; ok {
		return e.plate
	}
	return ""
}
