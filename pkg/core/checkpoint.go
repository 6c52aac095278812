// pkg/core/checkpoint.go
package core

// Checkpoint is a target location of a trial route.
type Checkpoint struct {
	Coords   Vector3       `json:"coords"`
	Message  string        `json:"message,omitempty"`
	Licenses []LicenseType `json:"licenses,omitempty"`
}

// ValidFor reports whether the checkpoint may appear on a route for license.
func (c Checkpoint) ValidFor(license LicenseType) bool {
	return license.In(c.Licenses)
}

// MarkerSpec is a checkpoint marker as handed to the world display.
type MarkerSpec struct {
	Type   int
	Coords Vector3
	Size   float64
	Color  Color
}
