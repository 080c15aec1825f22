package ml

import (
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
)

// StandardScaler centers and scales each feature: z = (x - mean) / scale
type StandardScaler struct {
	Mean  []float64 `mapstructure:"mean" json:"mean"`
	Scale []float64 `mapstructure:"scale" json:"scale"`
}

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("standard scaler expects %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		// zero-variance features are left centered but unscaled
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// IdentityScaler passes features through unchanged
type IdentityScaler struct{}

func (IdentityScaler) Transform(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	copy(out, x)
	return out, nil
}

// LinearModel represents a linear regression model
type LinearModel struct {
	Coefficients []float64 `mapstructure:"coefficients" json:"coefficients"`
	Intercept    float64   `mapstructure:"intercept" json:"intercept"`
}

func (m *LinearModel) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Coefficients) {
		return 0, fmt.Errorf("linear model expects %d features, got %d", len(m.Coefficients), len(x))
	}
	score := m.Intercept
	for i, coef := range m.Coefficients {
		score += coef * x[i]
	}
	return score, nil
}

// SoftmaxModel is a multinomial linear classifier. Predict returns the index
// of the class with the highest logit.
type SoftmaxModel struct {
	Coefficients [][]float64 `mapstructure:"coefficients" json:"coefficients"`
	Intercepts   []float64   `mapstructure:"intercepts" json:"intercepts"`
}

func (m *SoftmaxModel) Predict(x []float64) (float64, error) {
	best, bestScore := -1, math.Inf(-1)
	for k, row := range m.Coefficients {
		if len(row) != len(x) {
			return 0, fmt.Errorf("softmax class %d expects %d features, got %d", k, len(row), len(x))
		}
		score := m.Intercepts[k]
		for i, coef := range row {
			score += coef * x[i]
		}
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("softmax model produced no finite score")
	}
	return float64(best), nil
}

// ConstantModel always predicts the same value
type ConstantModel struct {
	Value float64 `mapstructure:"value" json:"value"`
}

func (m *ConstantModel) Predict(_ []float64) (float64, error) {
	return m.Value, nil
}

// LabelEncoder decodes class codes 0..n-1 into class names
type LabelEncoder struct {
	Classes []string `mapstructure:"classes" json:"classes"`
}

func (e *LabelEncoder) Decode(code float64) (string, error) {
	idx := int(code)
	if float64(idx) != code || idx < 0 || idx >= len(e.Classes) {
		return "", fmt.Errorf("label code %v outside encoder classes [0, %d)", code, len(e.Classes))
	}
	return e.Classes[idx], nil
}

// NewScaler builds a scaler of the given kind from decoded parameters
func NewScaler(kind string, params map[string]any) (Scaler, error) {
	switch kind {
	case KindStandardScaler:
		var s StandardScaler
		if err := mapstructure.Decode(params, &s); err != nil {
			return nil, err
		}
		if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
			return nil, fmt.Errorf("standard scaler needs equal-length mean and scale, got %d and %d", len(s.Mean), len(s.Scale))
		}
		return &s, nil
	case KindIdentityScaler:
		return IdentityScaler{}, nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid scaler kind", kind)
	}
}

// NewPredictor builds a predictor of the given kind from decoded parameters
func NewPredictor(kind string, params map[string]any) (Predictor, error) {
	switch kind {
	case KindLinear:
		var m LinearModel
		if err := mapstructure.Decode(params, &m); err != nil {
			return nil, err
		}
		if len(m.Coefficients) == 0 {
			return nil, fmt.Errorf("linear model has no coefficients")
		}
		return &m, nil
	case KindSoftmax:
		var m SoftmaxModel
		if err := mapstructure.Decode(params, &m); err != nil {
			return nil, err
		}
		if len(m.Coefficients) == 0 || len(m.Coefficients) != len(m.Intercepts) {
			return nil, fmt.Errorf("softmax model needs one intercept per class, got %d classes and %d intercepts",
				len(m.Coefficients), len(m.Intercepts))
		}
		return &m, nil
	case KindForest:
		var f ForestModel
		if err := mapstructure.Decode(params, &f); err != nil {
			return nil, err
		}
		if err := f.validate(); err != nil {
			return nil, err
		}
		return &f, nil
	case KindConstant:
		var m ConstantModel
		if err := mapstructure.Decode(params, &m); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid predictor kind", kind)
	}
}

// NewDecoder builds a label decoder of the given kind from decoded parameters
func NewDecoder(kind string, params map[string]any) (Decoder, error) {
	switch kind {
	case KindLabelEncoder:
		var e LabelEncoder
		if err := mapstructure.Decode(params, &e); err != nil {
			return nil, err
		}
		if len(e.Classes) == 0 {
			return nil, fmt.Errorf("label encoder has no classes")
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid decoder kind", kind)
	}
}
