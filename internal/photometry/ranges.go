package photometry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stellar-backend/internal/models"
)

// Interval is a closed range [Lo, Hi]
type Interval struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// Contains reports whether v lies within the closed interval
func (iv Interval) Contains(v float64) bool {
	return iv.Lo <= v && v <= iv.Hi
}

// ColorRanges maps each color index to its physically plausible interval.
// Values are copied on construction and never mutated afterwards.
type ColorRanges struct {
	bounds [4]Interval
}

// DefaultColorRanges returns the SDSS stellar-locus bounds
func DefaultColorRanges() ColorRanges {
	return ColorRanges{bounds: [4]Interval{
		{Lo: -0.5, Hi: 2.8}, // u_g
		{Lo: -0.4, Hi: 1.6}, // g_r
		{Lo: -0.4, Hi: 1.3}, // r_i
		{Lo: -0.4, Hi: 1.1}, // i_z
	}}
}

// NewColorRanges builds ranges from a name-keyed map. All four color indices
// must be present and each interval must have Lo <= Hi.
func NewColorRanges(m map[string]Interval) (ColorRanges, error) {
	var cr ColorRanges
	for i, name := range models.ColorNames {
		iv, ok := m[name]
		if !ok {
			return ColorRanges{}, fmt.Errorf("missing range for %s", name)
		}
		if iv.Lo > iv.Hi {
			return ColorRanges{}, fmt.Errorf("range for %s has lo %.3f > hi %.3f", name, iv.Lo, iv.Hi)
		}
		cr.bounds[i] = iv
	}
	if len(m) != len(models.ColorNames) {
		return ColorRanges{}, fmt.Errorf("expected %d color ranges, got %d", len(models.ColorNames), len(m))
	}
	return cr, nil
}

// LoadColorRanges reads a YAML override of the form
//
//	u_g: {lo: -0.5, hi: 2.8}
//
// An empty path yields the defaults.
func LoadColorRanges(path string) (ColorRanges, error) {
	if path == "" {
		return DefaultColorRanges(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ColorRanges{}, fmt.Errorf("failed to read color ranges: %w", err)
	}

	var raw map[string]Interval
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ColorRanges{}, fmt.Errorf("failed to parse color ranges: %w", err)
	}

	return NewColorRanges(raw)
}

// Interval returns the bounds for the named color index
func (cr ColorRanges) Interval(name string) (Interval, bool) {
	for i, n := range models.ColorNames {
		if n == name {
			return cr.bounds[i], true
		}
	}
	return Interval{}, false
}

// Validate checks every component against its interval. It never fails:
// out-of-range colors only produce warnings, in component order.
func (cr ColorRanges) Validate(x models.ColorVector) (bool, []string) {
	valid := true
	warnings := []string{}

	for i, value := range x {
		if !cr.bounds[i].Contains(value) {
			valid = false
			warnings = append(warnings, fmt.Sprintf("%s=%.2f outside SDSS range", models.ColorNames[i], value))
		}
	}

	return valid, warnings
}
