package exam

import (
	"context"
	"errors"

	"github.com/soz/drivingschool/pkg/core"
)

// DefaultArmDistance is how far the participant must move from the spawn
// point before penalties are evaluated.
const DefaultArmDistance = 2.0

// Monitor evaluates penalty rules once the participant has left the spawn point.
type Monitor struct {
	catalog     []RuleDescriptor
	armDistance float64
}

// NewMonitor creates a monitor over a rule catalog.
func NewMonitor(rules []RuleDescriptor, armDistance float64) *Monitor {
	if armDistance <= 0 {
		armDistance = DefaultArmDistance
	}
	return &Monitor{catalog: rules, armDistance: armDistance}
}

// ArmIfOffRoute builds the active rule set and starts monitoring the first
// time the participant is further than the arm distance from spawn.
// It reports whether monitoring was armed by this call.
func (m *Monitor) ArmIfOffRoute(st *TrialState, position, spawn core.Vector3) bool {
	if !st.Running || st.Monitoring {
		return false
	}
	if core.Distance(position, spawn) <= m.armDistance {
		return false
	}

	st.Rules = BuildRules(m.catalog, st.Run)
	st.Monitoring = true
	return true
}

// Evaluate runs the active rules in order and returns the first violation.
func (m *Monitor) Evaluate(ctx context.Context, st *TrialState) *Violation {
	if !st.Monitoring {
		return nil
	}

	st.Run.drain()

	for _, r := range st.Rules {
		err := r.Check(ctx)
		if err == nil {
			continue
		}
		var v *Violation
		if errors.As(err, &v) {
			return v
		}
		return &Violation{Rule: r.Name(), Message: err.Error()}
	}
	return nil
}
