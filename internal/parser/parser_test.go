package parser

import (
	"log/slog"
	"testing"

	"github.com/soz/drivingschool/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(slog.Default())
}

func TestNewParser(t *testing.T) {
	p := newTestParser()
	require.NotNil(t, p)
}

func TestParseIntFromFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "32", 32, false},
		{"zero", "0", 0, false},
		{"negative integer", "-1", -1, false},
		{"float with decimals", "32.00", 32, false},
		{"negative float", "-1.00", -1, false},
		{"large integer", "65535", 65535, false},
		{"fractional rejects", "10.99", 0, true},
		{"empty string", "", 0, true},
		{"non-numeric", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIntFromFloat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseExamSetup(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		input   []string
		want    ExamSetup
		wantErr bool
	}{
		{
			name:  "packed",
			input: []string{"car|215.5,-1400.2,29.3,90|driving_school"},
			want: ExamSetup{
				License:       core.LicenseCar,
				SpawnPoint:    core.Vector4{X: 215.5, Y: -1400.2, Z: 29.3, Heading: 90},
				SpawnLocation: "driving_school",
			},
		},
		{
			name:  "split with brackets and quotes",
			input: []string{`"Boat"`, "[-800,-1500,0]", `"marina"`},
			want: ExamSetup{
				License:       core.LicenseBoat,
				SpawnPoint:    core.Vector4{X: -800, Y: -1500, Z: 0},
				SpawnLocation: "marina",
			},
		},
		{
			name:  "no location",
			input: []string{"heli|1,2,3"},
			want: ExamSetup{
				License:    core.LicenseHeli,
				SpawnPoint: core.Vector4{X: 1, Y: 2, Z: 3},
			},
		},
		{name: "unknown license", input: []string{"plane|1,2,3|x"}, wantErr: true},
		{name: "bad point", input: []string{"car|1,2|x"}, wantErr: true},
		{name: "too few fields", input: []string{"car"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseExamSetup(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVehicleUndrivable(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		input   []string
		want    VehicleUndrivable
		wantErr bool
	}{
		{
			name:  "packed",
			input: []string{"42|true|false"},
			want:  VehicleUndrivable{Handle: 42, IsVehicle: true, IsDead: false},
		},
		{
			name:  "float handle",
			input: []string{"42.00", "true", "true"},
			want:  VehicleUndrivable{Handle: 42, IsVehicle: true, IsDead: true},
		},
		{
			name:  "handle only",
			input: []string{"7"},
			want:  VehicleUndrivable{Handle: 7, IsVehicle: true, IsDead: true},
		},
		{
			name:  "largest handle",
			input: []string{"2147483647|true|true"},
			want:  VehicleUndrivable{Handle: 2147483647, IsVehicle: true, IsDead: true},
		},
		{name: "empty", input: []string{""}, wantErr: true},
		{name: "no args", input: []string{}, wantErr: true},
		{name: "bad handle", input: []string{"abc|true|true"}, wantErr: true},
		{name: "bad flag", input: []string{"1|maybe|true"}, wantErr: true},
		{name: "handle above int32", input: []string{"4294967397|true|true"}, wantErr: true},
		{name: "handle below int32", input: []string{"-2147483649|true|true"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseVehicleUndrivable(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
