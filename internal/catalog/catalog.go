// Package catalog holds the driving school configuration: licenses, the
// checkpoint catalog routes are drawn from, the instructor and the speeches
// given at the start of a trial.
package catalog

import (
	"fmt"

	"github.com/soz/drivingschool/pkg/core"
	"github.com/spf13/viper"
)

// Speech is an instructor line shown when a trial starts.
// Include restricts it to the listed licenses, Exclude removes it for them.
type Speech struct {
	Message string             `json:"message"`
	Include []core.LicenseType `json:"include,omitempty"`
	Exclude []core.LicenseType `json:"exclude,omitempty"`
}

// Catalog is the full driving school configuration.
type Catalog struct {
	Licenses        map[core.LicenseType]core.LicenseConfig `json:"licenses"`
	Checkpoints     []core.Checkpoint                       `json:"checkpoints"`
	Instructor      core.PedConfig                          `json:"instructor"`
	StartSpeeches   []Speech                                `json:"startSpeeches"`
	RouteColor      int                                     `json:"routeColor"`
	PlateText       string                                  `json:"plateText"`
	DefaultLocation string                                  `json:"defaultLocation"`
}

// License returns the configuration for a license category.
func (c *Catalog) License(lt core.LicenseType) (core.LicenseConfig, bool) {
	l, ok := c.Licenses[lt]
	return l, ok
}

// CheckpointsFor returns the catalog entries eligible for a license, in catalog order.
func (c *Catalog) CheckpointsFor(lt core.LicenseType) []core.Checkpoint {
	out := make([]core.Checkpoint, 0, len(c.Checkpoints))
	for _, cp := range c.Checkpoints {
		if cp.ValidFor(lt) {
			out = append(out, cp)
		}
	}
	return out
}

// SpeechesFor returns the start speech lines for a license, in order.
func (c *Catalog) SpeechesFor(lt core.LicenseType) []string {
	var out []string
	for _, s := range c.StartSpeeches {
		if len(s.Exclude) > 0 && lt.In(s.Exclude) {
			continue
		}
		if len(s.Include) > 0 && !lt.In(s.Include) {
			continue
		}
		out = append(out, s.Message)
	}
	return out
}

// Load reads a catalog override file on top of the defaults.
// Keys missing from the file keep their default value.
func Load(path string) (*Catalog, error) {
	c := Default()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("error decoding catalog file: %w", err)
	}

	for lt, l := range c.Licenses {
		if l.LicenseType == "" {
			l.LicenseType = lt
			c.Licenses[lt] = l
		}
	}
	return c, nil
}
