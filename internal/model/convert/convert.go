// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/soz/drivingschool/internal/model"
	"github.com/soz/drivingschool/pkg/core"
	"gorm.io/datatypes"
)

// routeToJSON converts a route to datatypes.JSON for DB storage.
func routeToJSON(route []core.Vector3) datatypes.JSON {
	if len(route) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(route)
	return datatypes.JSON(data)
}

// CoreToTrial converts a core.TrialRecord to a GORM model.Trial.
func CoreToTrial(r core.TrialRecord) model.Trial {
	return model.Trial{
		TrialID:            r.ID,
		License:            string(r.License),
		Label:              r.Label,
		Outcome:            string(r.Outcome),
		Reason:             r.Reason,
		StartedAt:          r.StartedAt,
		EndedAt:            r.EndedAt,
		CheckpointsReached: r.CheckpointsReached,
		CheckpointsTotal:   r.CheckpointsTotal,
		Route:              routeToJSON(r.Route),
		RouteLength:        r.RouteLength,
		Incapacitated:      r.Incapacitated,
	}
}

// TrialToCore converts a GORM model.Trial back to a core.TrialRecord.
// A route column that does not decode yields an empty route.
func TrialToCore(t model.Trial) core.TrialRecord {
	var route []core.Vector3
	if len(t.Route) > 0 {
		if err := json.Unmarshal(t.Route, &route); err != nil {
			route = nil
		}
	}

	return core.TrialRecord{
		ID:                 t.TrialID,
		License:            core.LicenseType(t.License),
		Label:              t.Label,
		Outcome:            core.Outcome(t.Outcome),
		Reason:             t.Reason,
		StartedAt:          t.StartedAt,
		EndedAt:            t.EndedAt,
		CheckpointsReached: t.CheckpointsReached,
		CheckpointsTotal:   t.CheckpointsTotal,
		Route:              route,
		RouteLength:        t.RouteLength,
		Incapacitated:      t.Incapacitated,
	}
}

// CoreToLicenseGrant converts a core.LicenseGrant to a GORM model.LicenseGrant.
func CoreToLicenseGrant(g core.LicenseGrant) model.LicenseGrant {
	return model.LicenseGrant{
		TrialID:   g.TrialID,
		License:   string(g.License),
		Label:     g.Label,
		GrantedAt: g.GrantedAt,
	}
}

// LicenseGrantToCore converts a GORM model.LicenseGrant to a core.LicenseGrant.
func LicenseGrantToCore(g model.LicenseGrant) core.LicenseGrant {
	return core.LicenseGrant{
		License:   core.LicenseType(g.License),
		Label:     g.Label,
		TrialID:   g.TrialID,
		GrantedAt: g.GrantedAt,
	}
}
