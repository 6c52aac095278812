// pkg/core/types.go
package core

import "math"

// Vector3 is a world position without GIS dependencies.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector4 is a world position with a heading.
type Vector4 struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"`
}

// XYZ drops the heading.
func (v Vector4) XYZ() Vector3 {
	return Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

// Distance returns the euclidean distance between two world positions.
func Distance(a, b Vector3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Handle is an engine-local entity, marker or blip identifier.
// The zero value means "not created".
type Handle int32

// NoHandle is the unset handle.
const NoHandle Handle = 0

// Valid reports whether the handle points at something that was created.
func (h Handle) Valid() bool {
	return h != NoHandle
}

// Severity classifies a notification shown to the participant.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)
