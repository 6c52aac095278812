// pkg/core/license.go
package core

import (
	"fmt"
	"strings"
)

// LicenseType is the category of license a trial is taken for.
type LicenseType string

const (
	LicenseCar   LicenseType = "car"
	LicenseTruck LicenseType = "truck"
	LicenseMoto  LicenseType = "moto"
	LicenseHeli  LicenseType = "heli"
	LicenseBoat  LicenseType = "boat"
)

// LicenseTypes lists every known license category.
var LicenseTypes = []LicenseType{LicenseCar, LicenseTruck, LicenseMoto, LicenseHeli, LicenseBoat}

// ParseLicenseType resolves a license category name, case-insensitively.
func ParseLicenseType(s string) (LicenseType, error) {
	lt := LicenseType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range LicenseTypes {
		if lt == known {
			return lt, nil
		}
	}
	return "", fmt.Errorf("unknown license type %q", s)
}

// StrandedUnsafe reports whether a vehicle of this category left in place
// strands the participant (in the air or on water).
func (l LicenseType) StrandedUnsafe() bool {
	return l == LicenseHeli || l == LicenseBoat
}

// In reports whether l is part of set.
func (l LicenseType) In(set []LicenseType) bool {
	for _, s := range set {
		if s == l {
			return true
		}
	}
	return false
}

// Color is an RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// MarkerConfig describes the checkpoint marker geometry for a license.
type MarkerConfig struct {
	Type      int     `json:"type"`
	TypeFinal int     `json:"typeFinal"`
	Size      float64 `json:"size"`
	Color     Color   `json:"color"`
}

// VehicleConfig is the trial vehicle for a license.
type VehicleConfig struct {
	Model string `json:"model"`
}

// LicenseConfig is the immutable configuration of one trial.
type LicenseConfig struct {
	LicenseType     LicenseType   `json:"licenseType"`
	Label           string        `json:"label"`
	Vehicle         VehicleConfig `json:"vehicle"`
	CheckpointCount int           `json:"checkpointCount"`
	Marker          MarkerConfig  `json:"marker"`
	FinalCheckpoint Checkpoint    `json:"finalCheckpoint"`
	// SpeedLimit in km/h, 0 disables the speeding rule.
	SpeedLimit float64 `json:"speedLimit"`
}

// PedConfig describes a non-player actor to spawn.
type PedConfig struct {
	Model       string  `json:"model"`
	Coords      Vector4 `json:"coords"`
	Invincible  bool    `json:"invincible"`
	BlockEvents bool    `json:"blockEvents"`
}
