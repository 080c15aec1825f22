package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests rejected before any model runs
	ErrInvalidInput = errors.New("invalid input")
	// ErrPrediction marks any failure while running the models
	ErrPrediction = errors.New("prediction failed")
)

// PredictionError carries the failure class and the underlying message
type PredictionError struct {
	Kind error
	Msg  string
}

func (e *PredictionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *PredictionError) Unwrap() error { return e.Kind }

func invalidInput(err error) error {
	return &PredictionError{Kind: ErrInvalidInput, Msg: err.Error()}
}

func predictionFailed(err error) error {
	return &PredictionError{Kind: ErrPrediction, Msg: err.Error()}
}
