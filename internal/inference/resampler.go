package inference

import (
	"math/rand"

	"stellar-backend/internal/models"
)

// Defaults for photometric noise propagation
const (
	DefaultNoiseSigma    = 0.02
	DefaultSampleCount   = 30
	DefaultInfluenceStep = 0.02
)

// Resampler perturbs a color vector with zero-mean Gaussian noise
type Resampler struct {
	sigma float64
	n     int
	seed  int64
}

// NewResampler creates a resampler drawing n samples with standard deviation
// sigma. A negative seed uses a non-deterministic source; any other seed makes
// every call reproduce the same noise.
func NewResampler(sigma float64, n int, seed int64) *Resampler {
	return &Resampler{sigma: sigma, n: n, seed: seed}
}

// Sample returns n independently perturbed copies of x. Each call owns its own
// generator so concurrent calls never share seed state.
func (r *Resampler) Sample(x models.ColorVector) []models.ColorVector {
	var rng *rand.Rand
	if r.seed >= 0 {
		rng = rand.New(rand.NewSource(r.seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	samples := make([]models.ColorVector, r.n)
	for i := range samples {
		for j, v := range x {
			samples[i][j] = v + rng.NormFloat64()*r.sigma
		}
	}
	return samples
}
