package models

import "time"

// Color index names in model input order. Every bundle was exported expecting
// exactly this ordering.
const (
	ColorUG = "u_g"
	ColorGR = "g_r"
	ColorRI = "r_i"
	ColorIZ = "i_z"
)

// ColorNames lists the color indices in ColorVector order
var ColorNames = [4]string{ColorUG, ColorGR, ColorRI, ColorIZ}

// RawMagnitudes holds one observation in the five SDSS bands
type RawMagnitudes struct {
	U float64 `json:"U"`
	G float64 `json:"G"`
	R float64 `json:"R"`
	I float64 `json:"I"`
	Z float64 `json:"Z"`
}

// ColorVector is the ordered tuple (u_g, g_r, r_i, i_z)
type ColorVector [4]float64

// Slice returns a copy of the vector as a slice
func (c ColorVector) Slice() []float64 {
	out := make([]float64, len(c))
	copy(out, c[:])
	return out
}

// ColorInfluence is the per-color share (percent) of the temperature model's
// local sensitivity
type ColorInfluence struct {
	UG float64 `json:"u-g"`
	GR float64 `json:"g-r"`
	RI float64 `json:"r-i"`
	IZ float64 `json:"i-z"`
}

// PredictionResponse is the full result of one inference call.
// Field names are part of the public contract with existing clients.
type PredictionResponse struct {
	UG float64 `json:"u_g"`
	GR float64 `json:"g_r"`
	RI float64 `json:"r_i"`
	IZ float64 `json:"i_z"`

	ValidColors bool     `json:"valid_colors"`
	Warnings    []string `json:"warnings"`

	Teff            float64 `json:"Teff"`
	TeffUncertainty float64 `json:"Teff_uncertainty"`

	MetallicityClass      string `json:"Metallicity_Class"`
	MetallicityConfidence int    `json:"Metallicity_confidence"`

	SpectralType       string `json:"Spectral_Type"`
	SpectralConfidence int    `json:"Spectral_confidence"`

	LifeSupportingStar       string `json:"Life_Supporting_Star"`
	LifeSupportingConfidence int    `json:"Life_Supporting_confidence"`

	PredictionReliability string `json:"Prediction_reliability"`

	ColorInfluence ColorInfluence `json:"color_influence"`
}

// PhotometryRequest is the MQTT request envelope. RequestID is taken from the
// topic when absent from the payload.
type PhotometryRequest struct {
	RequestID string `json:"request_id,omitempty"`
	RawMagnitudes
}

// PhotometryResult is published back over MQTT for every request
type PhotometryResult struct {
	RequestID string              `json:"request_id"`
	Timestamp time.Time           `json:"timestamp"`
	Result    *PredictionResponse `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
}
