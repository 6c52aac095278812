package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/soz/drivingschool/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// World positions are a flat local frame (metres), not geographic coordinates.
// simplefeatures geometries are used for route shapes; Z is kept for markers.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// parseFloats splits "a,b,c" into floats, requiring between min and max parts.
func parseFloats(coords string, min, max int) ([]float64, error) {
	parts := strings.Split(coords, ",")
	if len(parts) < min || len(parts) > max {
		return nil, ErrInvalidCoordinates
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, ErrInvalidCoordinates
		}
		out[i] = f
	}
	return out, nil
}

// Vector3FromString parses "x,y" or "x,y,z" into a core.Vector3.
func Vector3FromString(coords string) (core.Vector3, error) {
	f, err := parseFloats(coords, 2, 3)
	if err != nil {
		return core.Vector3{}, err
	}
	v := core.Vector3{X: f[0], Y: f[1]}
	if len(f) > 2 {
		v.Z = f[2]
	}
	return v, nil
}

// Vector4FromString parses "x,y,z" or "x,y,z,heading" into a core.Vector4.
func Vector4FromString(coords string) (core.Vector4, error) {
	f, err := parseFloats(coords, 3, 4)
	if err != nil {
		return core.Vector4{}, err
	}
	v := core.Vector4{X: f[0], Y: f[1], Z: f[2]}
	if len(f) > 3 {
		v.Heading = f[3]
	}
	return v, nil
}

// PointFromVector converts a world position into an XYZ point.
func PointFromVector(v core.Vector3) geom.Point {
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: v.X, Y: v.Y},
			Z:    v.Z,
			Type: geom.DimXYZ,
		},
	)
}

// VectorFromPoint is the inverse of PointFromVector. ok is false for an empty point.
func VectorFromPoint(p geom.Point) (v core.Vector3, ok bool) {
	c, ok := p.Coordinates()
	if !ok {
		return v, false
	}
	return core.Vector3{X: c.X, Y: c.Y, Z: c.Z}, true
}
