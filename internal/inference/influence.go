package inference

import (
	"fmt"
	"math"

	"stellar-backend/internal/models"
)

// RegressionModel is what the influence estimator needs from a bundle
type RegressionModel interface {
	Predict(x models.ColorVector) (float64, error)
}

// FeatureInfluence estimates each color's share of the model's local
// sensitivity at x by forward finite differences with step delta. Shares are
// percentages rounded to one decimal. A locally flat model yields an equal
// split.
func FeatureInfluence(m RegressionModel, x models.ColorVector, delta float64) ([4]float64, error) {
	base, err := m.Predict(x)
	if err != nil {
		return [4]float64{}, fmt.Errorf("base prediction: %w", err)
	}

	var impacts [4]float64
	total := 0.0
	for i := range x {
		xp := x
		xp[i] += delta
		perturbed, err := m.Predict(xp)
		if err != nil {
			return [4]float64{}, fmt.Errorf("perturbed prediction for %s: %w", models.ColorNames[i], err)
		}
		impacts[i] = math.Abs(perturbed - base)
		total += impacts[i]
	}

	if total == 0 {
		return [4]float64{25, 25, 25, 25}, nil
	}

	var shares [4]float64
	for i, impact := range impacts {
		shares[i] = math.Round(impact/total*100*10) / 10
	}
	return shares, nil
}
