package exam

import (
	"context"
	"testing"

	"github.com/soz/drivingschool/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleNames(rules []Rule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name()
	}
	return names
}

func TestDefaultRules_Order(t *testing.T) {
	var names []string
	for _, d := range DefaultRules() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		RuleUndrivableVehicle,
		RuleVehicleDamage,
		RuleLeftVehicle,
		RuleSeatbelt,
		RulePhone,
		RuleSpeeding,
	}, names)
}

func TestBuildRules_Exclusions(t *testing.T) {
	w := newFakeWorld()

	tests := []struct {
		license    core.LicenseType
		speedLimit float64
		want       []string
	}{
		{core.LicenseCar, 90, []string{RuleUndrivableVehicle, RuleVehicleDamage, RuleLeftVehicle, RuleSeatbelt, RulePhone, RuleSpeeding}},
		{core.LicenseTruck, 80, []string{RuleUndrivableVehicle, RuleVehicleDamage, RuleLeftVehicle, RuleSeatbelt, RulePhone, RuleSpeeding}},
		{core.LicenseMoto, 90, []string{RuleUndrivableVehicle, RuleVehicleDamage, RuleLeftVehicle, RulePhone, RuleSpeeding}},
		{core.LicenseHeli, 0, []string{RuleUndrivableVehicle, RuleVehicleDamage, RuleLeftVehicle, RulePhone}},
		{core.LicenseBoat, 0, []string{RuleUndrivableVehicle, RuleVehicleDamage, RuleLeftVehicle, RulePhone}},
		{core.LicenseCar, 0, []string{RuleUndrivableVehicle, RuleVehicleDamage, RuleLeftVehicle, RuleSeatbelt, RulePhone}},
	}

	for _, tt := range tests {
		t.Run(string(tt.license), func(t *testing.T) {
			cfg := core.LicenseConfig{LicenseType: tt.license, SpeedLimit: tt.speedLimit}
			rc := newRunContext(cfg, 1, w.world(), testOptions())
			assert.Equal(t, tt.want, ruleNames(BuildRules(DefaultRules(), rc)))
		})
	}
}

func TestBuildRules_SkipsMissingCollaborators(t *testing.T) {
	w := newFakeWorld()
	world := w.world()
	world.Vehicles = nil
	world.Seatbelt = nil
	world.Phone = nil

	cfg := core.LicenseConfig{LicenseType: core.LicenseCar, SpeedLimit: 90}
	rc := newRunContext(cfg, 1, world, testOptions())

	assert.Equal(t, []string{RuleUndrivableVehicle}, ruleNames(BuildRules(DefaultRules(), rc)))
}

func TestRule_NotifiesAndReturnsViolation(t *testing.T) {
	w := newFakeWorld()
	w.phone = true
	rc := newRunContext(core.LicenseConfig{LicenseType: core.LicenseCar}, 1, w.world(), testOptions())

	r := newPhoneRule(rc)
	err := r.Check(context.Background())

	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, RulePhone, v.Rule)
	assert.Contains(t, v.Error(), RulePhone)
	require.Len(t, w.notifications, 1)
	assert.Equal(t, core.SeverityError, w.notifications[0].Severity)
	assert.Equal(t, v.Message, w.notifications[0].Message)
}

func TestRunContext_Feed(t *testing.T) {
	w := newFakeWorld()
	opts := testOptions()
	opts.UndrivableFeedSize = 1
	rc := newRunContext(core.LicenseConfig{}, 7, w.world(), opts)

	assert.True(t, rc.report(7))
	assert.False(t, rc.report(8), "feed is full")
	assert.False(t, rc.Undrivable(7), "not drained yet")

	rc.drain()
	assert.True(t, rc.Undrivable(7))
	assert.True(t, rc.report(8))

	rc.close()
	assert.False(t, rc.report(9), "closed feed drops reports")
}
