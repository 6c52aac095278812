package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soz/drivingschool/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EveryLicenseConfigured(t *testing.T) {
	c := Default()

	for _, lt := range core.LicenseTypes {
		l, ok := c.License(lt)
		require.True(t, ok, "license %s missing", lt)
		assert.Equal(t, lt, l.LicenseType)
		assert.NotEmpty(t, l.Label)
		assert.NotEmpty(t, l.Vehicle.Model)
		assert.Positive(t, l.CheckpointCount)
		assert.Positive(t, l.Marker.Size)
		assert.NotEmpty(t, c.CheckpointsFor(lt), "no checkpoints for %s", lt)
	}
}

func TestDefault_ReturnsFreshCopy(t *testing.T) {
	a := Default()
	a.PlateText = "CHANGED"
	a.Licenses[core.LicenseCar] = core.LicenseConfig{}

	b := Default()
	assert.Equal(t, "DRIVING", b.PlateText)
	assert.Equal(t, "Permis B", b.Licenses[core.LicenseCar].Label)
}

func TestCheckpointsFor_FiltersByLicense(t *testing.T) {
	c := &Catalog{
		Checkpoints: []core.Checkpoint{
			{Coords: core.Vector3{X: 1}, Licenses: []core.LicenseType{core.LicenseCar}},
			{Coords: core.Vector3{X: 2}, Licenses: []core.LicenseType{core.LicenseBoat}},
			{Coords: core.Vector3{X: 3}, Licenses: []core.LicenseType{core.LicenseCar, core.LicenseBoat}},
			{Coords: core.Vector3{X: 4}},
		},
	}

	cars := c.CheckpointsFor(core.LicenseCar)
	require.Len(t, cars, 2)
	assert.Equal(t, 1.0, cars[0].Coords.X)
	assert.Equal(t, 3.0, cars[1].Coords.X)

	assert.Empty(t, c.CheckpointsFor(core.LicenseHeli))
}

func TestSpeechesFor_IncludeExclude(t *testing.T) {
	c := &Catalog{
		StartSpeeches: []Speech{
			{Message: "all"},
			{Message: "not boat", Exclude: []core.LicenseType{core.LicenseBoat}},
			{Message: "boat only", Include: []core.LicenseType{core.LicenseBoat}},
		},
	}

	assert.Equal(t, []string{"all", "not boat"}, c.SpeechesFor(core.LicenseCar))
	assert.Equal(t, []string{"all", "boat only"}, c.SpeechesFor(core.LicenseBoat))
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	cfg := `{
		"plateText": "EXAM",
		"defaultLocation": "city_hall"
	}`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "EXAM", c.PlateText)
	assert.Equal(t, "city_hall", c.DefaultLocation)
	assert.Equal(t, "Permis B", c.Licenses[core.LicenseCar].Label)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading catalog file")
}
