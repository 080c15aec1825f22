// Package inference turns derived colors into calibrated predictions by
// propagating photometric noise through each model bundle.
package inference

import (
	"context"
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"stellar-backend/internal/ml"
	"stellar-backend/internal/models"
	"stellar-backend/internal/photometry"
)

// Config holds the uncertainty-estimation parameters
type Config struct {
	NoiseSigma    float64
	SampleCount   int
	InfluenceStep float64
	Seed          int64
	Ranges        photometry.ColorRanges
}

// DefaultConfig returns the production parameters with a non-deterministic seed
func DefaultConfig() Config {
	return Config{
		NoiseSigma:    DefaultNoiseSigma,
		SampleCount:   DefaultSampleCount,
		InfluenceStep: DefaultInfluenceStep,
		Seed:          -1,
		Ranges:        photometry.DefaultColorRanges(),
	}
}

// Engine runs the full prediction pipeline. It holds only read-only state and
// is safe for concurrent use.
type Engine struct {
	ranges    photometry.ColorRanges
	resampler *Resampler
	step      float64

	registry     *ml.Registry
	teff         *ml.Bundle
	metallicity  *ml.Bundle
	spectral     *ml.Bundle
	habitability *ml.Bundle
}

// NewEngine binds the engine to the bundles of registry
func NewEngine(registry *ml.Registry, cfg Config) (*Engine, error) {
	if cfg.SampleCount <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", cfg.SampleCount)
	}
	if cfg.NoiseSigma < 0 {
		return nil, fmt.Errorf("noise sigma must not be negative, got %v", cfg.NoiseSigma)
	}
	if cfg.InfluenceStep <= 0 {
		return nil, fmt.Errorf("influence step must be positive, got %v", cfg.InfluenceStep)
	}

	e := &Engine{
		ranges:    cfg.Ranges,
		resampler: NewResampler(cfg.NoiseSigma, cfg.SampleCount, cfg.Seed),
		step:      cfg.InfluenceStep,
		registry:  registry,
	}

	for _, bind := range []struct {
		name string
		dst  **ml.Bundle
	}{
		{ml.BundleTemperature, &e.teff},
		{ml.BundleMetallicity, &e.metallicity},
		{ml.BundleSpectral, &e.spectral},
		{ml.BundleHabitability, &e.habitability},
	} {
		b, err := registry.Bundle(bind.name)
		if err != nil {
			return nil, err
		}
		*bind.dst = b
	}

	return e, nil
}

// Registry returns the bundles the engine was built from
func (e *Engine) Registry() *ml.Registry {
	return e.registry
}

// Predict derives colors from m, validates them, and runs every bundle over a
// shared noisy sample set. Any model failure aborts the whole request; no
// partial response is returned.
func (e *Engine) Predict(ctx context.Context, m models.RawMagnitudes) (*models.PredictionResponse, error) {
	x, err := photometry.DeriveColors(m)
	if err != nil {
		return nil, invalidInput(err)
	}

	resp, err := e.predict(ctx, x)
	if err != nil {
		log.Printf("Engine: Prediction failed for colors %v: %v", x, err)
		return nil, predictionFailed(err)
	}
	return resp, nil
}

func (e *Engine) predict(ctx context.Context, x models.ColorVector) (*models.PredictionResponse, error) {
	valid, warnings := e.ranges.Validate(x)
	samples := e.resampler.Sample(x)

	var (
		teff                         RegressionEstimate
		metallicity, spectral, habit ClassVote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(func() error {
		values := make([]float64, len(samples))
		for i, s := range samples {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := e.teff.Predict(s)
			if err != nil {
				return err
			}
			values[i] = v
		}
		teff = ReduceRegression(values)
		return nil
	}))
	for _, job := range []struct {
		bundle *ml.Bundle
		out    *ClassVote
	}{
		{e.metallicity, &metallicity},
		{e.spectral, &spectral},
		{e.habitability, &habit},
	} {
		g.Go(guard(func() error {
			labels := make([]string, len(samples))
			for i, s := range samples {
				if err := gctx.Err(); err != nil {
					return err
				}
				l, err := job.bundle.Label(s)
				if err != nil {
					return err
				}
				labels[i] = l
			}
			*job.out = ReduceClassification(labels)
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var influence [4]float64
	err := guard(func() error {
		var err error
		influence, err = FeatureInfluence(e.teff, x, e.step)
		return err
	})()
	if err != nil {
		return nil, fmt.Errorf("feature influence: %w", err)
	}

	if err := checkFinite(teff, influence); err != nil {
		return nil, err
	}

	overall := OverallConfidence(metallicity.Confidence, spectral.Confidence, habit.Confidence)

	return &models.PredictionResponse{
		UG: x[0],
		GR: x[1],
		RI: x[2],
		IZ: x[3],

		ValidColors: valid,
		Warnings:    warnings,

		Teff:            teff.Mean,
		TeffUncertainty: teff.StdDev,

		MetallicityClass:      metallicity.Label,
		MetallicityConfidence: metallicity.Confidence,

		SpectralType:       spectral.Label,
		SpectralConfidence: spectral.Confidence,

		LifeSupportingStar:       habit.Label,
		LifeSupportingConfidence: habit.Confidence,

		PredictionReliability: ReliabilityLabel(overall),

		ColorInfluence: models.ColorInfluence{
			UG: influence[0],
			GR: influence[1],
			RI: influence[2],
			IZ: influence[3],
		},
	}, nil
}

// checkFinite rejects numeric outputs that cannot be represented in a response
func checkFinite(teff RegressionEstimate, influence [4]float64) error {
	if !isFinite(teff.Mean) {
		return fmt.Errorf("temperature estimate is not finite: %v", teff.Mean)
	}
	if !isFinite(teff.StdDev) {
		return fmt.Errorf("temperature uncertainty is not finite: %v", teff.StdDev)
	}
	for i, v := range influence {
		if !isFinite(v) {
			return fmt.Errorf("influence of %s is not finite: %v", models.ColorNames[i], v)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// guard converts a panic inside an opaque model into an error
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("model panicked: %v", r)
			}
		}()
		return fn()
	}
}
