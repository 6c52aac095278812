package geo

import (
	"github.com/soz/drivingschool/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// RouteLine builds the route polyline through the given positions, starting at
// start. Fewer than two positions overall give an empty line string.
func RouteLine(start core.Vector3, route []core.Vector3) geom.LineString {
	if len(route) == 0 {
		return geom.LineString{}
	}

	flat := make([]float64, 0, (len(route)+1)*3)
	flat = append(flat, start.X, start.Y, start.Z)
	for _, v := range route {
		flat = append(flat, v.X, v.Y, v.Z)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ))
}

// RouteLength is the ground (XY) length of the route from start through every position.
func RouteLength(start core.Vector3, route []core.Vector3) float64 {
	return RouteLine(start, route).Length()
}
