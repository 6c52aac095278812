package catalog

import "github.com/soz/drivingschool/pkg/core"

var (
	roadLicenses = []core.LicenseType{core.LicenseCar, core.LicenseTruck, core.LicenseMoto}
	carOnly      = []core.LicenseType{core.LicenseCar, core.LicenseMoto}
	heliOnly     = []core.LicenseType{core.LicenseHeli}
	boatOnly     = []core.LicenseType{core.LicenseBoat}

	roadMarker = core.MarkerConfig{Type: 45, TypeFinal: 4, Size: 5.0, Color: core.Color{R: 245, G: 191, B: 66, A: 180}}
)

// Default returns the built-in catalog. Each call returns a fresh copy.
func Default() *Catalog {
	return &Catalog{
		Licenses: map[core.LicenseType]core.LicenseConfig{
			core.LicenseCar: {
				LicenseType:     core.LicenseCar,
				Label:           "Permis B",
				Vehicle:         core.VehicleConfig{Model: "dilettante"},
				CheckpointCount: 6,
				Marker:          roadMarker,
				FinalCheckpoint: core.Checkpoint{Coords: core.Vector3{X: 226.61, Y: 373.62, Z: 105.18}, Message: "Park the vehicle in front of the school"},
				SpeedLimit:      90,
			},
			core.LicenseTruck: {
				LicenseType:     core.LicenseTruck,
				Label:           "Permis C",
				Vehicle:         core.VehicleConfig{Model: "benson"},
				CheckpointCount: 5,
				Marker:          core.MarkerConfig{Type: 45, TypeFinal: 4, Size: 7.0, Color: roadMarker.Color},
				FinalCheckpoint: core.Checkpoint{Coords: core.Vector3{X: 213.73, Y: 389.10, Z: 106.33}, Message: "Park the truck in the loading bay"},
				SpeedLimit:      80,
			},
			core.LicenseMoto: {
				LicenseType:     core.LicenseMoto,
				Label:           "Permis A",
				Vehicle:         core.VehicleConfig{Model: "faggio"},
				CheckpointCount: 6,
				Marker:          roadMarker,
				FinalCheckpoint: core.Checkpoint{Coords: core.Vector3{X: 226.61, Y: 373.62, Z: 105.18}},
				SpeedLimit:      90,
			},
			core.LicenseHeli: {
				LicenseType:     core.LicenseHeli,
				Label:           "Licence Helico",
				Vehicle:         core.VehicleConfig{Model: "frogger"},
				CheckpointCount: 4,
				Marker:          core.MarkerConfig{Type: 42, TypeFinal: 44, Size: 12.0, Color: core.Color{R: 66, G: 155, B: 245, A: 180}},
				FinalCheckpoint: core.Checkpoint{Coords: core.Vector3{X: -745.28, Y: -1468.77, Z: 5.0}, Message: "Land on the helipad"},
			},
			core.LicenseBoat: {
				LicenseType:     core.LicenseBoat,
				Label:           "Permis Bateau",
				Vehicle:         core.VehicleConfig{Model: "dinghy"},
				CheckpointCount: 4,
				Marker:          core.MarkerConfig{Type: 1, TypeFinal: 4, Size: 10.0, Color: core.Color{R: 66, G: 245, B: 170, A: 180}},
				FinalCheckpoint: core.Checkpoint{Coords: core.Vector3{X: -802.47, Y: -1497.16, Z: 0.3}, Message: "Dock at the pontoon"},
			},
		},
		Checkpoints: []core.Checkpoint{
			{Coords: core.Vector3{X: 265.12, Y: 338.95, Z: 105.50}, Licenses: roadLicenses},
			{Coords: core.Vector3{X: 398.34, Y: 298.71, Z: 102.98}, Licenses: roadLicenses},
			{Coords: core.Vector3{X: 526.48, Y: 246.09, Z: 103.10}, Message: "Watch out for the traffic lights", Licenses: roadLicenses},
			{Coords: core.Vector3{X: 765.90, Y: 150.71, Z: 80.53}, Licenses: roadLicenses},
			{Coords: core.Vector3{X: 1021.16, Y: -221.92, Z: 69.37}, Message: "Highway ahead, keep to the speed limit", Licenses: roadLicenses},
			{Coords: core.Vector3{X: 635.71, Y: -370.22, Z: 42.96}, Licenses: carOnly},
			{Coords: core.Vector3{X: 214.66, Y: -827.30, Z: 30.72}, Message: "Downtown, pedestrians around", Licenses: carOnly},
			{Coords: core.Vector3{X: -74.65, Y: -1126.09, Z: 25.76}, Licenses: carOnly},
			{Coords: core.Vector3{X: -417.64, Y: -1696.77, Z: 150.0}, Licenses: heliOnly},
			{Coords: core.Vector3{X: 184.13, Y: -1919.63, Z: 180.0}, Message: "Keep your altitude", Licenses: heliOnly},
			{Coords: core.Vector3{X: 1138.73, Y: -1286.11, Z: 160.0}, Licenses: heliOnly},
			{Coords: core.Vector3{X: 703.52, Y: -598.68, Z: 220.0}, Licenses: heliOnly},
			{Coords: core.Vector3{X: -138.01, Y: 206.55, Z: 190.0}, Licenses: heliOnly},
			{Coords: core.Vector3{X: -1022.59, Y: -1649.13, Z: 0.3}, Licenses: boatOnly},
			{Coords: core.Vector3{X: -1389.90, Y: -1894.44, Z: 0.3}, Message: "Open sea, mind the swell", Licenses: boatOnly},
			{Coords: core.Vector3{X: -1731.22, Y: -1269.18, Z: 0.3}, Licenses: boatOnly},
			{Coords: core.Vector3{X: -2081.61, Y: -872.77, Z: 0.3}, Licenses: boatOnly},
			{Coords: core.Vector3{X: -1608.03, Y: -1100.55, Z: 0.3}, Licenses: boatOnly},
		},
		Instructor: core.PedConfig{
			Model:  "a_m_y_business_02",
			Coords: core.Vector4{X: 230.17, Y: 368.88, Z: 106.01, Heading: 159.0},
		},
		StartSpeeches: []Speech{
			{Message: "Welcome to your exam. Follow the checkpoints on your GPS."},
			{Message: "Buckle up before leaving the parking lot.", Exclude: []core.LicenseType{core.LicenseMoto, core.LicenseHeli, core.LicenseBoat}},
			{Message: "Respect the speed limits, I am watching the dashboard.", Include: roadLicenses},
			{Message: "Take off gently and keep a safe altitude.", Include: heliOnly},
			{Message: "Mind the other boats when leaving the harbour.", Include: boatOnly},
			{Message: "Any damage to the vehicle ends the exam immediately."},
		},
		RouteColor:      5,
		PlateText:       "DRIVING",
		DefaultLocation: "driving_school",
	}
}
