package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"stellar-backend/internal/models"
)

// ManifestFile is the bundle descriptor expected in every bundle directory
const ManifestFile = "bundle.yaml"

// ComponentRef names a component kind and the JSON file holding its parameters
type ComponentRef struct {
	Kind string `yaml:"kind"`
	File string `yaml:"file,omitempty"`
}

// Manifest describes one bundle directory
type Manifest struct {
	Name      string        `yaml:"name"`
	Task      Task          `yaml:"task"`
	Features  []string      `yaml:"features"`
	Scaler    ComponentRef  `yaml:"scaler"`
	Predictor ComponentRef  `yaml:"predictor"`
	Decoder   *ComponentRef `yaml:"decoder,omitempty"`
}

// LoadBundle reads dir/bundle.yaml and the component files it references
func LoadBundle(dir string) (*Bundle, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if !slices.Equal(m.Features, models.ColorNames[:]) {
		return nil, fmt.Errorf("bundle %s: features %v do not match input order %v", m.Name, m.Features, models.ColorNames)
	}

	params, err := readParams(dir, m.Scaler)
	if err != nil {
		return nil, err
	}
	scaler, err := NewScaler(m.Scaler.Kind, params)
	if err != nil {
		return nil, fmt.Errorf("bundle %s scaler: %w", m.Name, err)
	}

	params, err = readParams(dir, m.Predictor)
	if err != nil {
		return nil, err
	}
	predictor, err := NewPredictor(m.Predictor.Kind, params)
	if err != nil {
		return nil, fmt.Errorf("bundle %s predictor: %w", m.Name, err)
	}

	var decoder Decoder
	if m.Decoder != nil {
		params, err = readParams(dir, *m.Decoder)
		if err != nil {
			return nil, err
		}
		decoder, err = NewDecoder(m.Decoder.Kind, params)
		if err != nil {
			return nil, fmt.Errorf("bundle %s decoder: %w", m.Name, err)
		}
	}

	b, err := NewBundle(m.Name, m.Task, scaler, predictor, decoder)
	if err != nil {
		return nil, err
	}
	b.info.Scaler = m.Scaler.Kind
	b.info.Predictor = m.Predictor.Kind
	if m.Decoder != nil {
		b.info.Decoder = m.Decoder.Kind
	}

	// probe once so a malformed export fails at startup rather than per request
	if _, err := b.Predict(models.ColorVector{}); err != nil {
		return nil, fmt.Errorf("bundle %s failed probe prediction: %w", m.Name, err)
	}
	return b, nil
}

func readParams(dir string, ref ComponentRef) (map[string]any, error) {
	if ref.Kind == "" {
		return nil, fmt.Errorf("component kind is required")
	}
	if ref.File == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, ref.File))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref.File, err)
	}

	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", ref.File, err)
	}
	return params, nil
}
