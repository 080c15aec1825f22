package ml

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
)

// Bundle names, which double as directory names under the model root
const (
	BundleTemperature  = "teff"
	BundleMetallicity  = "metallicity"
	BundleSpectral     = "spectral"
	BundleHabitability = "habitability"
)

// RequiredBundles lists every bundle the prediction engine needs, with its task
var RequiredBundles = []struct {
	Name string
	Task Task
}{
	{BundleTemperature, TaskRegression},
	{BundleMetallicity, TaskClassification},
	{BundleSpectral, TaskClassification},
	{BundleHabitability, TaskClassification},
}

// ErrBundleNotFound is returned when a registry has no bundle of the given name
var ErrBundleNotFound = errors.New("bundle not found")

// Registry is the read-only set of bundles loaded at startup. It exposes no
// way to add or replace bundles once built.
type Registry struct {
	bundles map[string]*Bundle
}

// NewRegistry builds a registry and checks that every required bundle is
// present with the expected task
func NewRegistry(bundles ...*Bundle) (*Registry, error) {
	m := make(map[string]*Bundle, len(bundles))
	for _, b := range bundles {
		if b == nil {
			return nil, fmt.Errorf("nil bundle")
		}
		if _, dup := m[b.Name()]; dup {
			return nil, fmt.Errorf("duplicate bundle %s", b.Name())
		}
		m[b.Name()] = b
	}

	for _, req := range RequiredBundles {
		b, ok := m[req.Name]
		if !ok {
			return nil, fmt.Errorf("missing required bundle %s", req.Name)
		}
		if b.Task() != req.Task {
			return nil, fmt.Errorf("bundle %s must be %s, got %s", req.Name, req.Task, b.Task())
		}
	}

	return &Registry{bundles: m}, nil
}

// LoadRegistry loads each required bundle from dir/<name>
func LoadRegistry(dir string) (*Registry, error) {
	bundles := make([]*Bundle, 0, len(RequiredBundles))
	for _, req := range RequiredBundles {
		b, err := LoadBundle(filepath.Join(dir, req.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to load bundle %s: %w", req.Name, err)
		}
		log.Printf("Registry: Loaded %s bundle (%s, scaler=%s, predictor=%s)",
			b.Name(), b.Task(), b.info.Scaler, b.info.Predictor)
		bundles = append(bundles, b)
	}
	return NewRegistry(bundles...)
}

// Bundle returns the named bundle
func (r *Registry) Bundle(name string) (*Bundle, error) {
	b, ok := r.bundles[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrBundleNotFound)
	}
	return b, nil
}

// Bundles returns bundle descriptions sorted by name
func (r *Registry) Bundles() []BundleInfo {
	infos := make([]BundleInfo, 0, len(r.bundles))
	for _, b := range r.bundles {
		infos = append(infos, b.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
