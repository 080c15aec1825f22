package services

import (
	"context"
	"log"
	"sync"
	"time"

	"stellar-backend/internal/models"
)

// Predictor runs the inference pipeline for one observation
type Predictor interface {
	Predict(ctx context.Context, m models.RawMagnitudes) (*models.PredictionResponse, error)
}

// PredictionService consumes photometry requests from the subscriber, runs
// them through the engine and emits a result for each one
type PredictionService struct {
	engine  Predictor
	workers int

	// Input channel (written by the MQTT subscriber)
	RequestChan chan *models.PhotometryRequest
	// Output channel (read by the MQTT publisher)
	ResultChan chan *models.PhotometryResult
}

// PredictionServiceConfig holds configuration for the prediction service
type PredictionServiceConfig struct {
	Workers     int // Concurrent predictions
	ChannelSize int // Size of request and result channels
}

// DefaultPredictionServiceConfig returns default configuration
func DefaultPredictionServiceConfig() PredictionServiceConfig {
	return PredictionServiceConfig{
		Workers:     4,
		ChannelSize: 100,
	}
}

// NewPredictionService creates a new prediction service with its channels
func NewPredictionService(engine Predictor, config PredictionServiceConfig) *PredictionService {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &PredictionService{
		engine:      engine,
		workers:     config.Workers,
		RequestChan: make(chan *models.PhotometryRequest, config.ChannelSize),
		ResultChan:  make(chan *models.PhotometryResult, config.ChannelSize),
	}
}

// Start runs the worker pool until the context is cancelled or the request
// channel is closed. ResultChan is closed once every worker has exited.
func (ps *PredictionService) Start(ctx context.Context) {
	log.Printf("PredictionService: Starting %d workers...", ps.workers)

	var wg sync.WaitGroup
	for id := range ps.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps.worker(ctx, id)
		}()
	}

	wg.Wait()
	close(ps.ResultChan)
	log.Println("PredictionService: Shutdown complete")
}

func (ps *PredictionService) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-ps.RequestChan:
			if !ok {
				return
			}
			ps.emit(ctx, ps.process(ctx, id, req))
		}
	}
}

func (ps *PredictionService) process(ctx context.Context, id int, req *models.PhotometryRequest) *models.PhotometryResult {
	result := &models.PhotometryResult{
		RequestID: req.RequestID,
		Timestamp: time.Now(),
	}

	resp, err := ps.engine.Predict(ctx, req.RawMagnitudes)
	if err != nil {
		log.Printf("PredictionService: Worker %d failed request %s: %v", id, req.RequestID, err)
		result.Error = err.Error()
		return result
	}

	log.Printf("PredictionService: Worker %d completed request %s (Teff=%.0fK, type=%s, reliability=%s)",
		id, req.RequestID, resp.Teff, resp.SpectralType, resp.PredictionReliability)
	result.Result = resp
	return result
}

// emit sends a result downstream (non-blocking with timeout)
func (ps *PredictionService) emit(ctx context.Context, result *models.PhotometryResult) {
	select {
	case ps.ResultChan <- result:
	case <-ctx.Done():
	case <-time.After(1 * time.Second):
		log.Printf("PredictionService: Warning - Result channel full, dropping result for %s", result.RequestID)
	}
}
