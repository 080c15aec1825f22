package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"stellar-backend/internal/inference"
	"stellar-backend/internal/ml"
	"stellar-backend/internal/models"
	"stellar-backend/internal/validation"
)

// maxBodyBytes bounds request bodies; a magnitude request is a few dozen bytes
const maxBodyBytes = 64 << 10

// Predictor is the inference capability the handler needs
type Predictor interface {
	Predict(ctx context.Context, m models.RawMagnitudes) (*models.PredictionResponse, error)
	Registry() *ml.Registry
}

// BrokerStatus reports the state of the optional MQTT transport
type BrokerStatus interface {
	IsConnected() bool
}

type Handler struct {
	engine Predictor
	broker BrokerStatus
}

// NewHandler creates the API handler. broker may be nil when MQTT is disabled.
func NewHandler(engine Predictor, broker BrokerStatus) *Handler {
	return &Handler{engine: engine, broker: broker}
}

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("POST /predict/", h.Predict)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /models", h.Models)
	return mux
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Predict runs the full pipeline for one set of magnitudes
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	req, err := validation.DecodeRequest(body)
	if err != nil {
		if errors.Is(err, validation.ErrSchema) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)

	resp, err := h.engine.Predict(r.Context(), req.RawMagnitudes)
	if err != nil {
		log.Printf("API: Prediction %s failed: %v", requestID, err)
		if errors.Is(err, inference.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	log.Printf("API: Prediction %s completed (type=%s, reliability=%s)", requestID, resp.SpectralType, resp.PredictionReliability)
	writeJSON(w, http.StatusOK, resp)
}

// Health MQTT states
const (
	MQTTDisabled     = "disabled"
	MQTTConnected    = "connected"
	MQTTDisconnected = "disconnected"
)

type healthResponse struct {
	Status string `json:"status"`
	MQTT   string `json:"mqtt"`
}

// Health reports liveness and the MQTT transport state. A dropped broker
// connection does not fail the check since HTTP predictions still work.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	state := MQTTDisabled
	if h.broker != nil {
		state = MQTTDisconnected
		if h.broker.IsConnected() {
			state = MQTTConnected
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", MQTT: state})
}

// Models lists the loaded bundles
func (h *Handler) Models(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Registry().Bundles())
}

// writeJSON encodes v before committing the status line so an unencodable
// value turns into a 500 instead of an empty 200
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("API: Failed to encode response: %v", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Detail: "failed to encode response: " + err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Printf("API: Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
