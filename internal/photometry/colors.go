// Package photometry derives color indices from broadband magnitudes and
// checks them against the color ranges the bundles were trained on.
package photometry

import (
	"errors"
	"fmt"
	"math"

	"stellar-backend/internal/models"
)

// ErrNonFinite is returned when a magnitude, or a color derived from finite
// magnitudes, is NaN or infinite
var ErrNonFinite = errors.New("value is not a finite number")

// DeriveColors converts five magnitudes into the four adjacent-band color
// indices in model input order.
func DeriveColors(m models.RawMagnitudes) (models.ColorVector, error) {
	bands := []struct {
		name  string
		value float64
	}{
		{"U", m.U}, {"G", m.G}, {"R", m.R}, {"I", m.I}, {"Z", m.Z},
	}
	for _, b := range bands {
		if math.IsNaN(b.value) || math.IsInf(b.value, 0) {
			return models.ColorVector{}, fmt.Errorf("%s: %w", b.name, ErrNonFinite)
		}
	}

	x := models.ColorVector{
		m.U - m.G,
		m.G - m.R,
		m.R - m.I,
		m.I - m.Z,
	}
	// finite magnitudes near the float64 limit can still overflow
	for i, v := range x {
		if math.IsInf(v, 0) {
			return models.ColorVector{}, fmt.Errorf("%s: %w", models.ColorNames[i], ErrNonFinite)
		}
	}
	return x, nil
}
