package ml

import (
	"fmt"
	"strconv"

	"stellar-backend/internal/models"
)

// Bundle pairs a feature scaler with a trained predictor and, for
// classification, a label decoder. A Bundle is never mutated after
// construction and may be shared by any number of goroutines.
type Bundle struct {
	name      string
	task      Task
	scaler    Scaler
	predictor Predictor
	decoder   Decoder
	info      BundleInfo
}

// BundleInfo describes a loaded bundle
type BundleInfo struct {
	Name      string `json:"name"`
	Task      Task   `json:"task"`
	Scaler    string `json:"scaler,omitempty"`
	Predictor string `json:"predictor,omitempty"`
	Decoder   string `json:"decoder,omitempty"`
}

// NewBundle validates and assembles a bundle. Regression bundles must not
// carry a decoder.
func NewBundle(name string, task Task, scaler Scaler, predictor Predictor, decoder Decoder) (*Bundle, error) {
	if name == "" {
		return nil, fmt.Errorf("bundle name is required")
	}
	if task != TaskRegression && task != TaskClassification {
		return nil, fmt.Errorf("bundle %s: unknown task %q", name, task)
	}
	if scaler == nil || predictor == nil {
		return nil, fmt.Errorf("bundle %s: scaler and predictor are required", name)
	}
	if task == TaskRegression && decoder != nil {
		return nil, fmt.Errorf("bundle %s: regression bundles cannot have a label decoder", name)
	}

	return &Bundle{
		name:      name,
		task:      task,
		scaler:    scaler,
		predictor: predictor,
		decoder:   decoder,
		info:      BundleInfo{Name: name, Task: task},
	}, nil
}

// Name returns the registry key of the bundle
func (b *Bundle) Name() string { return b.name }

// Task reports whether the bundle regresses a value or predicts a class
func (b *Bundle) Task() Task { return b.task }

// Info returns the bundle description, including component kinds when the
// bundle was loaded from disk
func (b *Bundle) Info() BundleInfo { return b.info }

// Predict scales x and runs it through the predictor
func (b *Bundle) Predict(x models.ColorVector) (float64, error) {
	scaled, err := b.scaler.Transform(x.Slice())
	if err != nil {
		return 0, fmt.Errorf("%s scaler: %w", b.name, err)
	}
	y, err := b.predictor.Predict(scaled)
	if err != nil {
		return 0, fmt.Errorf("%s predictor: %w", b.name, err)
	}
	return y, nil
}

// Label predicts x and decodes the result into a class name. Without a
// decoder the class code itself is the label.
func (b *Bundle) Label(x models.ColorVector) (string, error) {
	code, err := b.Predict(x)
	if err != nil {
		return "", err
	}
	if b.decoder == nil {
		return strconv.FormatFloat(code, 'f', -1, 64), nil
	}
	label, err := b.decoder.Decode(code)
	if err != nil {
		return "", fmt.Errorf("%s decoder: %w", b.name, err)
	}
	return label, nil
}
