package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SchoolInfo{},
	&Trial{},
	&LicenseGrant{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// SchoolInfo identifies the instance that wrote the history
type SchoolInfo struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:127"`
	Description string `json:"description" gorm:"size:255"`
}

func (*SchoolInfo) TableName() string {
	return "school_infos"
}

////////////////////////
// EXAM MODELS
////////////////////////

// Trial is one finished driving exam
type Trial struct {
	ID                 uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	TrialID            string         `json:"trialId" gorm:"size:36;uniqueIndex:idx_trial_trial_id"`
	License            string         `json:"license" gorm:"size:16;index:idx_trial_license"`
	Label              string         `json:"label" gorm:"size:64"`
	Outcome            string         `json:"outcome" gorm:"size:16;index:idx_trial_outcome"`
	Reason             string         `json:"reason" gorm:"size:64"`
	StartedAt          time.Time      `json:"startedAt" gorm:"index:idx_trial_started_at"`
	EndedAt            time.Time      `json:"endedAt"`
	CheckpointsReached int            `json:"checkpointsReached"`
	CheckpointsTotal   int            `json:"checkpointsTotal"`
	Route              datatypes.JSON `json:"route"` // [{"x":..,"y":..,"z":..}, ...]
	RouteLength        float64        `json:"routeLength"`
	Incapacitated      bool           `json:"incapacitated"`
}

func (*Trial) TableName() string {
	return "trials"
}

// LicenseGrant is written once for every passed trial
type LicenseGrant struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	TrialID   string    `json:"trialId" gorm:"size:36;index:idx_license_grant_trial_id"`
	License   string    `json:"license" gorm:"size:16"`
	Label     string    `json:"label" gorm:"size:64"`
	GrantedAt time.Time `json:"grantedAt"`
}

func (*LicenseGrant) TableName() string {
	return "license_grants"
}
