package exam

import (
	"context"
	"fmt"

	"github.com/soz/drivingschool/pkg/core"
)

// Rule names, used as the failure reason of a trial.
const (
	RuleUndrivableVehicle = "undrivable_vehicle"
	RuleVehicleDamage     = "vehicle_damage"
	RuleLeftVehicle       = "left_vehicle"
	RuleSeatbelt          = "seatbelt"
	RulePhone             = "phone"
	RuleSpeeding          = "speeding"
)

// Rule is one penalty check, evaluated against the run context.
// A failing check returns a *Violation.
type Rule interface {
	Name() string
	Check(ctx context.Context) error
}

// RuleDescriptor declares a rule of the catalog.
// New may return nil when the run context lacks what the rule reads.
type RuleDescriptor struct {
	Name    string
	Exclude []core.LicenseType
	New     func(rc *RunContext) Rule
}

// Excludes reports whether the rule is left out for license.
func (d RuleDescriptor) Excludes(license core.LicenseType) bool {
	return license.In(d.Exclude)
}

// DefaultRules is the penalty catalog, in evaluation order.
func DefaultRules() []RuleDescriptor {
	return []RuleDescriptor{
		{Name: RuleUndrivableVehicle, New: newUndrivableRule},
		{Name: RuleVehicleDamage, New: newDamageRule},
		{Name: RuleLeftVehicle, New: newLeftVehicleRule},
		{
			Name:    RuleSeatbelt,
			Exclude: []core.LicenseType{core.LicenseMoto, core.LicenseHeli, core.LicenseBoat},
			New:     newSeatbeltRule,
		},
		{Name: RulePhone, New: newPhoneRule},
		{
			Name:    RuleSpeeding,
			Exclude: []core.LicenseType{core.LicenseHeli, core.LicenseBoat},
			New:     newSpeedingRule,
		},
	}
}

// BuildRules instantiates every descriptor not excluding the run's license.
func BuildRules(descriptors []RuleDescriptor, rc *RunContext) []Rule {
	rules := make([]Rule, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Excludes(rc.License) {
			continue
		}
		if r := d.New(rc); r != nil {
			rules = append(rules, r)
		}
	}
	return rules
}

// ruleFunc is a Rule backed by a predicate. failed reports true on a violation.
type ruleFunc struct {
	name    string
	message string
	rc      *RunContext
	failed  func() bool
}

func (r *ruleFunc) Name() string { return r.name }

func (r *ruleFunc) Check(ctx context.Context) error {
	if !r.failed() {
		return nil
	}
	r.rc.World.Notifier.Notify(ctx, r.message, core.SeverityError)
	return &Violation{Rule: r.name, Message: r.message}
}

func newUndrivableRule(rc *RunContext) Rule {
	return &ruleFunc{
		name:    RuleUndrivableVehicle,
		message: "The exam vehicle is wrecked. Exam failed.",
		rc:      rc,
		failed:  func() bool { return rc.Undrivable(rc.Vehicle) },
	}
}

func newDamageRule(rc *RunContext) Rule {
	if rc.World.Vehicles == nil || rc.MinVehicleHealth <= 0 {
		return nil
	}
	return &ruleFunc{
		name:    RuleVehicleDamage,
		message: "The exam vehicle is too damaged. Exam failed.",
		rc:      rc,
		failed: func() bool {
			return rc.World.Vehicles.BodyHealth(rc.Vehicle) < rc.MinVehicleHealth
		},
	}
}

func newLeftVehicleRule(rc *RunContext) Rule {
	if rc.World.Vehicles == nil {
		return nil
	}
	return &ruleFunc{
		name:    RuleLeftVehicle,
		message: "You left the exam vehicle. Exam failed.",
		rc:      rc,
		failed: func() bool {
			return rc.World.Vehicles.OccupiedVehicle() != rc.Vehicle
		},
	}
}

func newSeatbeltRule(rc *RunContext) Rule {
	if rc.World.Seatbelt == nil {
		return nil
	}
	return &ruleFunc{
		name:    RuleSeatbelt,
		message: "You are not wearing your seatbelt. Exam failed.",
		rc:      rc,
		failed:  func() bool { return !rc.World.Seatbelt.SeatbeltOn() },
	}
}

func newPhoneRule(rc *RunContext) Rule {
	if rc.World.Phone == nil {
		return nil
	}
	return &ruleFunc{
		name:    RulePhone,
		message: "You used your phone while driving. Exam failed.",
		rc:      rc,
		failed:  func() bool { return rc.World.Phone.InUse() },
	}
}

func newSpeedingRule(rc *RunContext) Rule {
	limit := rc.Config.SpeedLimit
	if rc.World.Vehicles == nil || limit <= 0 {
		return nil
	}
	return &ruleFunc{
		name:    RuleSpeeding,
		message: fmt.Sprintf("You exceeded the %.0f km/h speed limit. Exam failed.", limit),
		rc:      rc,
		failed: func() bool {
			return rc.World.Vehicles.Speed(rc.Vehicle) > limit
		},
	}
}
