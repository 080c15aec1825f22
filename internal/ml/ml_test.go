package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-backend/internal/models"
)

func TestStandardScaler(t *testing.T) {
	s := &StandardScaler{Mean: []float64{1, 2, 3, 4}, Scale: []float64{2, 0, 1, 4}}

	out, err := s.Transform([]float64{3, 5, 3, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 0, -1}, out)

	_, err = s.Transform([]float64{1, 2})
	assert.Error(t, err)
}

func TestLinearModel(t *testing.T) {
	m := &LinearModel{Coefficients: []float64{1, 2, 3, 4}, Intercept: 10}

	y, err := m.Predict([]float64{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 20.0, y)
}

func TestSoftmaxModel_Argmax(t *testing.T) {
	m := &SoftmaxModel{
		Coefficients: [][]float64{{1, 0}, {0, 1}, {-1, -1}},
		Intercepts:   []float64{0, 0, 0},
	}

	code, err := m.Predict([]float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, code)

	code, err = m.Predict([]float64{-3, -2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, code)
}

func TestLabelEncoder(t *testing.T) {
	e := &LabelEncoder{Classes: []string{"A", "F", "G"}}

	label, err := e.Decode(2)
	require.NoError(t, err)
	assert.Equal(t, "G", label)

	for _, bad := range []float64{-1, 3, 1.5} {
		_, err := e.Decode(bad)
		assert.Error(t, err, "code %v", bad)
	}
}

func TestForestModel(t *testing.T) {
	stump := func(threshold float64, left, right []float64) Tree {
		return Tree{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{0, -2, -2},
			Threshold:     []float64{threshold, -2, -2},
			Value:         [][]float64{make([]float64, len(left)), left, right},
		}
	}

	t.Run("regression averages trees", func(t *testing.T) {
		f, err := NewPredictor(KindForest, map[string]any{
			"objective":  ObjectiveRegression,
			"n_features": 1,
			"trees": []any{
				map[string]any{
					"children_left":  []any{1.0, -1.0, -1.0},
					"children_right": []any{2.0, -1.0, -1.0},
					"feature":        []any{0.0, -2.0, -2.0},
					"threshold":      []any{0.0, -2.0, -2.0},
					"value":          []any{[]any{0.0}, []any{100.0}, []any{200.0}},
				},
				map[string]any{
					"children_left":  []any{-1.0},
					"children_right": []any{-1.0},
					"feature":        []any{-2.0},
					"threshold":      []any{-2.0},
					"value":          []any{[]any{300.0}},
				},
			},
		})
		require.NoError(t, err)

		y, err := f.Predict([]float64{-1})
		require.NoError(t, err)
		assert.Equal(t, 200.0, y)

		y, err = f.Predict([]float64{1})
		require.NoError(t, err)
		assert.Equal(t, 250.0, y)
	})

	t.Run("classification sums normalized votes", func(t *testing.T) {
		f := &ForestModel{
			Objective: ObjectiveClassification,
			Features:  1,
			Trees: []Tree{
				stump(0, []float64{10, 0}, []float64{0, 10}),
				stump(5, []float64{3, 1}, []float64{0, 4}),
			},
		}
		require.NoError(t, f.validate())

		code, err := f.Predict([]float64{1})
		require.NoError(t, err)
		assert.Equal(t, 1.0, code)

		code, err = f.Predict([]float64{-1})
		require.NoError(t, err)
		assert.Equal(t, 0.0, code)
	})

	t.Run("rejects backward children", func(t *testing.T) {
		f := &ForestModel{
			Objective: ObjectiveRegression,
			Features:  1,
			Trees: []Tree{{
				ChildrenLeft:  []int{0, -1},
				ChildrenRight: []int{1, -1},
				Feature:       []int{0, -2},
				Threshold:     []float64{0, -2},
				Value:         [][]float64{{0}, {1}},
			}},
		}
		assert.ErrorContains(t, f.validate(), "invalid children")
	})

	t.Run("rejects unknown objective", func(t *testing.T) {
		_, err := NewPredictor(KindForest, map[string]any{"objective": "ranking", "n_features": 1})
		assert.Error(t, err)
	})
}

func TestFactories_UnknownKind(t *testing.T) {
	_, err := NewScaler("minmax", nil)
	assert.ErrorContains(t, err, "not a valid scaler kind")

	_, err = NewPredictor("svm", nil)
	assert.ErrorContains(t, err, "not a valid predictor kind")

	_, err = NewDecoder("onehot", nil)
	assert.ErrorContains(t, err, "not a valid decoder kind")
}

func TestNewBundle(t *testing.T) {
	_, err := NewBundle(BundleTemperature, TaskRegression, IdentityScaler{}, &ConstantModel{Value: 1}, &LabelEncoder{Classes: []string{"x"}})
	assert.ErrorContains(t, err, "regression bundles cannot have a label decoder")

	_, err = NewBundle("x", "ranking", IdentityScaler{}, &ConstantModel{}, nil)
	assert.Error(t, err)

	b, err := NewBundle(BundleSpectral, TaskClassification, IdentityScaler{}, &ConstantModel{Value: 3}, nil)
	require.NoError(t, err)

	label, err := b.Label(models.ColorVector{})
	require.NoError(t, err)
	assert.Equal(t, "3", label)
}

func stubRegistryBundles(t *testing.T) []*Bundle {
	t.Helper()
	var bundles []*Bundle
	for _, req := range RequiredBundles {
		var dec Decoder
		if req.Task == TaskClassification {
			dec = &LabelEncoder{Classes: []string{"A"}}
		}
		b, err := NewBundle(req.Name, req.Task, IdentityScaler{}, &ConstantModel{}, dec)
		require.NoError(t, err)
		bundles = append(bundles, b)
	}
	return bundles
}

func TestNewRegistry(t *testing.T) {
	bundles := stubRegistryBundles(t)

	r, err := NewRegistry(bundles...)
	require.NoError(t, err)

	b, err := r.Bundle(BundleSpectral)
	require.NoError(t, err)
	assert.Equal(t, BundleSpectral, b.Name())

	_, err = r.Bundle("feh")
	assert.True(t, errors.Is(err, ErrBundleNotFound))

	assert.Len(t, r.Bundles(), len(RequiredBundles))

	_, err = NewRegistry(bundles[1:]...)
	assert.ErrorContains(t, err, "missing required bundle teff")

	_, err = NewRegistry(append(bundles, bundles[0])...)
	assert.ErrorContains(t, err, "duplicate bundle")
}

func TestNewRegistry_WrongTask(t *testing.T) {
	bundles := stubRegistryBundles(t)
	teff, err := NewBundle(BundleTemperature, TaskClassification, IdentityScaler{}, &ConstantModel{}, nil)
	require.NoError(t, err)
	bundles[0] = teff

	_, err = NewRegistry(bundles...)
	assert.ErrorContains(t, err, "bundle teff must be regression")
}

func TestCreateSampleBundles_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, HasBundles(dir))

	require.NoError(t, CreateSampleBundles(dir))
	assert.True(t, HasBundles(dir))

	r, err := LoadRegistry(dir)
	require.NoError(t, err)

	infos := r.Bundles()
	require.Len(t, infos, 4)
	assert.Equal(t, BundleInfo{Name: BundleHabitability, Task: TaskClassification, Scaler: KindStandardScaler, Predictor: KindForest, Decoder: KindLabelEncoder}, infos[0])

	// g_r = 0.45 sits at the scaler mean: a G star in the habitable band
	x := models.ColorVector{1.2, 0.45, 0.18, 0.08}

	spectral, err := r.Bundle(BundleSpectral)
	require.NoError(t, err)
	label, err := spectral.Label(x)
	require.NoError(t, err)
	assert.Equal(t, "G", label)

	habitable, err := r.Bundle(BundleHabitability)
	require.NoError(t, err)
	label, err = habitable.Label(x)
	require.NoError(t, err)
	assert.Equal(t, "Yes", label)

	metal, err := r.Bundle(BundleMetallicity)
	require.NoError(t, err)
	label, err = metal.Label(x)
	require.NoError(t, err)
	assert.Equal(t, "Solar", label)

	teff, err := r.Bundle(BundleTemperature)
	require.NoError(t, err)
	y, err := teff.Predict(x)
	require.NoError(t, err)
	assert.InDelta(t, 5800.0, y, 1e-9)
}

func TestLoadBundle_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CreateSampleBundles(dir))
	teffDir := filepath.Join(dir, BundleTemperature)

	t.Run("missing manifest", func(t *testing.T) {
		_, err := LoadBundle(t.TempDir())
		assert.ErrorContains(t, err, "failed to read manifest")
	})

	t.Run("feature order mismatch", func(t *testing.T) {
		manifest := `name: teff
task: regression
features: [g_r, u_g, r_i, i_z]
scaler: {kind: identity}
predictor: {kind: constant, file: model.json}
`
		require.NoError(t, os.WriteFile(filepath.Join(teffDir, ManifestFile), []byte(manifest), 0644))
		_, err := LoadBundle(teffDir)
		assert.ErrorContains(t, err, "do not match input order")
	})

	t.Run("probe catches wrong width", func(t *testing.T) {
		manifest := `name: teff
task: regression
features: [u_g, g_r, r_i, i_z]
scaler: {kind: identity}
predictor: {kind: linear, file: narrow.json}
`
		require.NoError(t, os.WriteFile(filepath.Join(teffDir, "narrow.json"), []byte(`{"coefficients": [1, 2], "intercept": 0}`), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(teffDir, ManifestFile), []byte(manifest), 0644))
		_, err := LoadBundle(teffDir)
		assert.ErrorContains(t, err, "failed probe prediction")
	})
}
