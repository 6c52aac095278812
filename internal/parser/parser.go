package parser

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/soz/drivingschool/internal/geo"
	"github.com/soz/drivingschool/internal/util"
	"github.com/soz/drivingschool/pkg/core"
)

// parseIntFromFloat parses a string that may be an integer or float into int64.
// Script hosts often serialize every number as a float ("42.00").
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// ExamSetup is a parsed :EXAM:SETUP: command.
type ExamSetup struct {
	License       core.LicenseType
	SpawnPoint    core.Vector4
	SpawnLocation string
}

// VehicleUndrivable is a parsed :VEHICLE:UNDRIVABLE: world event.
type VehicleUndrivable struct {
	Handle    core.Handle
	IsVehicle bool
	IsDead    bool
}

// Parser provides pure []string -> domain struct conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseExamSetup parses "license|x,y,z[,heading]|spawnLocation".
// The spawn location falls back to an empty name, which lets the
// supervisor use the catalog default.
func (p *Parser) ParseExamSetup(data []string) (ExamSetup, error) {
	var setup ExamSetup

	data = util.CleanArgs(util.SplitArgs(data))
	if len(data) < 2 {
		return setup, fmt.Errorf("exam setup: expected at least 2 fields, got %d", len(data))
	}

	license, err := core.ParseLicenseType(data[0])
	if err != nil {
		return setup, fmt.Errorf("exam setup: %w", err)
	}
	setup.License = license

	point, err := geo.Vector4FromString(util.TrimBrackets(data[1]))
	if err != nil {
		p.logger.Error("Error parsing spawn point", "data", data[1], "error", err)
		return setup, fmt.Errorf("exam setup: spawn point: %w", err)
	}
	setup.SpawnPoint = point

	if len(data) > 2 {
		setup.SpawnLocation = strings.TrimSpace(data[2])
	}

	p.logger.Debug("Parsed exam setup",
		"license", setup.License,
		"spawnLocation", setup.SpawnLocation)

	return setup, nil
}

// ParseVehicleUndrivable parses "handle|isVehicle|isDead".
// Missing flags default to a dead vehicle.
func (p *Parser) ParseVehicleUndrivable(data []string) (VehicleUndrivable, error) {
	ev := VehicleUndrivable{IsVehicle: true, IsDead: true}

	data = util.CleanArgs(util.SplitArgs(data))
	if len(data) < 1 || data[0] == "" {
		return ev, fmt.Errorf("vehicle undrivable: missing handle")
	}

	handle, err := parseIntFromFloat(data[0])
	if err != nil {
		return ev, fmt.Errorf("vehicle undrivable: handle: %w", err)
	}
	if handle < math.MinInt32 || handle > math.MaxInt32 {
		return ev, fmt.Errorf("vehicle undrivable: handle %d out of range", handle)
	}
	ev.Handle = core.Handle(handle)

	if len(data) > 1 {
		if ev.IsVehicle, err = strconv.ParseBool(data[1]); err != nil {
			return ev, fmt.Errorf("vehicle undrivable: isVehicle: %w", err)
		}
	}
	if len(data) > 2 {
		if ev.IsDead, err = strconv.ParseBool(data[2]); err != nil {
			return ev, fmt.Errorf("vehicle undrivable: isDead: %w", err)
		}
	}

	return ev, nil
}
