package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"stellar-backend/internal/inference"
	"stellar-backend/internal/ml"
	"stellar-backend/internal/models"
	"stellar-backend/internal/photometry"
)

type predictOptions struct {
	magnitudes models.RawMagnitudes
	modelDir   string
	rangesPath string
	seed       int64
	sigma      float64
	samples    int
}

func newPredictCommand() *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict stellar properties from U, G, R, I, Z magnitudes",
		Example: `  stellarctl predict --U 19.5 --G 18.9 --R 18.6 --I 18.5 --Z 18.4
  stellarctl predict --models ./model --seed 7 --U 20 --G 19 --R 18.5 --I 18 --Z 17.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.magnitudes.U, "U", 0, "u-band magnitude")
	f.Float64Var(&opts.magnitudes.G, "G", 0, "g-band magnitude")
	f.Float64Var(&opts.magnitudes.R, "R", 0, "r-band magnitude")
	f.Float64Var(&opts.magnitudes.I, "I", 0, "i-band magnitude")
	f.Float64Var(&opts.magnitudes.Z, "Z", 0, "z-band magnitude")
	f.StringVar(&opts.modelDir, "models", "./model", "Directory containing the model bundles")
	f.StringVar(&opts.rangesPath, "ranges", "", "YAML file overriding the valid color ranges")
	f.Int64Var(&opts.seed, "seed", -1, "Random seed for resampling (negative for non-deterministic)")
	f.Float64Var(&opts.sigma, "sigma", inference.DefaultNoiseSigma, "Standard deviation of the per-color noise")
	f.IntVar(&opts.samples, "samples", inference.DefaultSampleCount, "Number of resampled color vectors")

	for _, band := range []string{"U", "G", "R", "I", "Z"} {
		_ = cmd.MarkFlagRequired(band)
	}

	return cmd
}

func runPredict(cmd *cobra.Command, opts *predictOptions) error {
	registry, err := ml.LoadRegistry(opts.modelDir)
	if err != nil {
		return fmt.Errorf("loading bundles: %w", err)
	}

	ranges, err := photometry.LoadColorRanges(opts.rangesPath)
	if err != nil {
		return fmt.Errorf("loading color ranges: %w", err)
	}

	cfg := inference.DefaultConfig()
	cfg.Seed = opts.seed
	cfg.NoiseSigma = opts.sigma
	cfg.SampleCount = opts.samples
	cfg.Ranges = ranges

	engine, err := inference.NewEngine(registry, cfg)
	if err != nil {
		return err
	}

	resp, err := engine.Predict(cmd.Context(), opts.magnitudes)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
