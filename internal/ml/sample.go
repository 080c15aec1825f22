package ml

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"stellar-backend/internal/models"
)

// sampleScaler approximates the SDSS stellar locus; all sample bundles share it
var sampleScaler = StandardScaler{
	Mean:  []float64{1.20, 0.45, 0.18, 0.08},
	Scale: []float64{0.50, 0.30, 0.20, 0.15},
}

// g_r thresholds in scaled space: raw 0.0, 0.3, 0.55, 1.0
const (
	splitAF = -1.5
	splitFG = -0.5
	splitGK = 1.0 / 3.0
	splitKM = 11.0 / 6.0
)

// CreateSampleBundles writes a coherent demonstration bundle set under dir.
// The models are hand-set, not trained; use them to run the service without
// real exports.
func CreateSampleBundles(dir string) error {
	leaf := func(width, class int) []float64 {
		v := make([]float64, width)
		v[class] = 1
		return v
	}
	internal := func(width int) []float64 { return make([]float64, width) }

	spectral := ForestModel{
		Objective: ObjectiveClassification,
		Features:  len(models.ColorNames),
		Trees: []Tree{{
			ChildrenLeft:  []int{1, 3, 7, 5, -1, -1, -1, -1, -1},
			ChildrenRight: []int{2, 4, 8, 6, -1, -1, -1, -1, -1},
			Feature:       []int{1, 1, 1, 1, -2, -2, -2, -2, -2},
			Threshold:     []float64{splitGK, splitFG, splitKM, splitAF, -2, -2, -2, -2, -2},
			Value: [][]float64{
				internal(5), internal(5), internal(5), internal(5),
				leaf(5, 2), // G
				leaf(5, 0), // A
				leaf(5, 1), // F
				leaf(5, 3), // K
				leaf(5, 4), // M
			},
		}},
	}

	habitability := ForestModel{
		Objective: ObjectiveClassification,
		Features:  len(models.ColorNames),
		Trees: []Tree{{
			ChildrenLeft:  []int{1, -1, 3, -1, -1},
			ChildrenRight: []int{2, -1, 4, -1, -1},
			Feature:       []int{1, -2, 1, -2, -2},
			Threshold:     []float64{splitFG, -2, splitKM, -2, -2},
			Value: [][]float64{
				internal(2),
				leaf(2, 0), // hotter than F: No
				internal(2),
				leaf(2, 1), // FGK: Yes
				leaf(2, 0), // M: No
			},
		}},
	}

	sets := []struct {
		manifest Manifest
		files    map[string]any
	}{
		{
			manifest: Manifest{
				Name:      BundleTemperature,
				Task:      TaskRegression,
				Scaler:    ComponentRef{Kind: KindStandardScaler, File: "scaler.json"},
				Predictor: ComponentRef{Kind: KindLinear, File: "model.json"},
			},
			files: map[string]any{
				"scaler.json": sampleScaler,
				"model.json": LinearModel{
					Coefficients: []float64{-300, -900, -250, -100},
					Intercept:    5800,
				},
			},
		},
		{
			manifest: Manifest{
				Name:      BundleMetallicity,
				Task:      TaskClassification,
				Scaler:    ComponentRef{Kind: KindStandardScaler, File: "scaler.json"},
				Predictor: ComponentRef{Kind: KindSoftmax, File: "model.json"},
				Decoder:   &ComponentRef{Kind: KindLabelEncoder, File: "label_encoder.json"},
			},
			files: map[string]any{
				"scaler.json": sampleScaler,
				"model.json": SoftmaxModel{
					Coefficients: [][]float64{
						{-2.0, 0.5, 0, 0},
						{0, 0, 0, 0},
						{2.0, -0.5, 0, 0},
					},
					Intercepts: []float64{0, 1, 0},
				},
				"label_encoder.json": LabelEncoder{Classes: []string{"Metal-poor", "Solar", "Metal-rich"}},
			},
		},
		{
			manifest: Manifest{
				Name:      BundleSpectral,
				Task:      TaskClassification,
				Scaler:    ComponentRef{Kind: KindStandardScaler, File: "scaler.json"},
				Predictor: ComponentRef{Kind: KindForest, File: "model.json"},
				Decoder:   &ComponentRef{Kind: KindLabelEncoder, File: "label_encoder.json"},
			},
			files: map[string]any{
				"scaler.json":        sampleScaler,
				"model.json":         spectral,
				"label_encoder.json": LabelEncoder{Classes: []string{"A", "F", "G", "K", "M"}},
			},
		},
		{
			manifest: Manifest{
				Name:      BundleHabitability,
				Task:      TaskClassification,
				Scaler:    ComponentRef{Kind: KindStandardScaler, File: "scaler.json"},
				Predictor: ComponentRef{Kind: KindForest, File: "model.json"},
				Decoder:   &ComponentRef{Kind: KindLabelEncoder, File: "label_encoder.json"},
			},
			files: map[string]any{
				"scaler.json":        sampleScaler,
				"model.json":         habitability,
				"label_encoder.json": LabelEncoder{Classes: []string{"No", "Yes"}},
			},
		},
	}

	for _, set := range sets {
		set.manifest.Features = models.ColorNames[:]
		bundleDir := filepath.Join(dir, set.manifest.Name)
		if err := os.MkdirAll(bundleDir, 0755); err != nil {
			return fmt.Errorf("failed to create bundle directory: %w", err)
		}

		manifest, err := yaml.Marshal(set.manifest)
		if err != nil {
			return fmt.Errorf("failed to marshal manifest: %w", err)
		}
		if err := os.WriteFile(filepath.Join(bundleDir, ManifestFile), manifest, 0644); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}

		for name, v := range set.files {
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal %s: %w", name, err)
			}
			if err := os.WriteFile(filepath.Join(bundleDir, name), data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", name, err)
			}
		}
	}

	log.Printf("Created sample bundles at %s", dir)
	return nil
}

// HasBundles reports whether dir already contains a manifest for every
// required bundle
func HasBundles(dir string) bool {
	for _, req := range RequiredBundles {
		if _, err := os.Stat(filepath.Join(dir, req.Name, ManifestFile)); err != nil {
			return false
		}
	}
	return true
}
