package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-backend/internal/inference"
	"stellar-backend/internal/ml"
	"stellar-backend/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, ml.CreateSampleBundles(dir))
	registry, err := ml.LoadRegistry(dir)
	require.NoError(t, err)

	cfg := inference.DefaultConfig()
	cfg.Seed = 1
	engine, err := inference.NewEngine(registry, cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(engine, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestPredict_Success(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/predict", "/predict/"} {
		resp, out := post(t, srv.URL+path, `{"U": 19.5, "G": 18.9, "R": 18.6, "I": 18.5, "Z": 18.4}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		assert.Equal(t, true, out["valid_colors"])
		assert.Equal(t, []any{}, out["warnings"])
		assert.InDelta(t, 0.6, out["u_g"], 1e-9)
		assert.Contains(t, out, "Teff")
		assert.Contains(t, out, "Prediction_reliability")
		assert.Contains(t, out["color_influence"], "g-r")
	}
}

func TestPredict_OutOfRangeWarns(t *testing.T) {
	srv := newTestServer(t)

	resp, out := post(t, srv.URL+"/predict/", `{"U": 20, "G": 19, "R": 18.5, "I": 18, "Z": 15.5}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out["valid_colors"])
	assert.Equal(t, []any{"i_z=2.50 outside SDSS range"}, out["warnings"])
}

func TestPredict_EchoesRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := post(t, srv.URL+"/predict", `{"request_id": "obs-9", "U": 19.5, "G": 18.9, "R": 18.6, "I": 18.5, "Z": 18.4}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "obs-9", resp.Header.Get("X-Request-ID"))
}

func TestPredict_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"not json", `{"U": 19.5,`, http.StatusBadRequest},
		{"missing field", `{"U": 19.5, "G": 18.9, "R": 18.6, "I": 18.5}`, http.StatusUnprocessableEntity},
		{"non numeric", `{"U": "19.5", "G": 18.9, "R": 18.6, "I": 18.5, "Z": 18.4}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, srv.URL+"/predict/", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, out["detail"])
		})
	}
}

type failingEngine struct {
	err error
}

func (f failingEngine) Predict(context.Context, models.RawMagnitudes) (*models.PredictionResponse, error) {
	return nil, f.err
}

func (f failingEngine) Registry() *ml.Registry { return nil }

func TestPredict_EngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", &inference.PredictionError{Kind: inference.ErrInvalidInput, Msg: "U: magnitude is not a finite number"}, http.StatusUnprocessableEntity},
		{"model failure", &inference.PredictionError{Kind: inference.ErrPrediction, Msg: "spectral predictor: boom"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/predict/", strings.NewReader(`{"U": 1, "G": 1, "R": 1, "I": 1, "Z": 1}`))

			NewHandler(failingEngine{err: tt.err}, nil).Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var out errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
			assert.Equal(t, tt.err.Error(), out.Detail)
		})
	}
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/predict")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthAndModels(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, healthResponse{Status: "ok", MQTT: MQTTDisabled}, health)

	resp, err = http.Get(srv.URL + "/models")
	require.NoError(t, err)
	defer resp.Body.Close()

	var infos []ml.BundleInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, 4)
	assert.Equal(t, ml.BundleTemperature, infos[3].Name)
	assert.Equal(t, ml.TaskRegression, infos[3].Task)
}

type brokerState bool

func (b brokerState) IsConnected() bool { return bool(b) }

func TestHealth_ReportsBrokerState(t *testing.T) {
	tests := []struct {
		name   string
		broker BrokerStatus
		want   string
	}{
		{"disabled", nil, MQTTDisabled},
		{"connected", brokerState(true), MQTTConnected},
		{"disconnected", brokerState(false), MQTTDisconnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(failingEngine{}, tt.broker).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			var out healthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
			assert.Equal(t, "ok", out.Status)
			assert.Equal(t, tt.want, out.MQTT)
		})
	}
}

func TestPredict_OverflowingColorsAreRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, out := post(t, srv.URL+"/predict/", `{"U": 1.7e308, "G": -1.7e308, "R": 18.6, "I": 18.5, "Z": 18.4}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, out["detail"], "u_g")
}

type infiniteEngine struct{}

func (infiniteEngine) Predict(context.Context, models.RawMagnitudes) (*models.PredictionResponse, error) {
	return &models.PredictionResponse{Teff: math.Inf(1), Warnings: []string{}}, nil
}

func (infiniteEngine) Registry() *ml.Registry { return nil }

func TestWriteJSON_UnencodableValueIsServerError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"U": 1, "G": 1, "R": 1, "I": 1, "Z": 1}`))

	NewHandler(infiniteEngine{}, nil).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Contains(t, out.Detail, "unsupported value")
}
