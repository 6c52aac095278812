// pkg/core/trial.go
package core

import "time"

// Outcome is the terminal result of a trial.
type Outcome string

const (
	OutcomePassed Outcome = "passed"
	OutcomeFailed Outcome = "failed"
)

// TrialRecord summarizes a finished trial.
type TrialRecord struct {
	ID                 string
	License            LicenseType
	Label              string
	Outcome            Outcome
	Reason             string // rule name for failed trials
	StartedAt          time.Time
	EndedAt            time.Time
	CheckpointsReached int
	CheckpointsTotal   int
	Route              []Vector3
	RouteLength        float64
	Incapacitated      bool
}

// Duration is the time between Start and Terminate.
func (r TrialRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// LicenseGrant is emitted once for every passed trial.
type LicenseGrant struct {
	License   LicenseType `json:"license"`
	Label     string      `json:"label"`
	TrialID   string      `json:"trialId"`
	GrantedAt time.Time   `json:"grantedAt"`
}
