package mqtt

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-backend/internal/models"
	"stellar-backend/internal/validation"
)

func TestExtractRequestID(t *testing.T) {
	assert.Equal(t, "obs-42", extractRequestID("photometry/obs-42/request"))
	assert.Equal(t, "x", extractRequestID("photometry/x"))
	assert.Empty(t, extractRequestID("photometry"))
}

func TestFormatTopic(t *testing.T) {
	assert.Equal(t, "photometry/obs-42/result", formatTopic("photometry/{request_id}/result", "obs-42"))
	assert.Equal(t, "results/all", formatTopic("results/all", "obs-42"))
}

func TestSubscriberDecode(t *testing.T) {
	s := NewSubscriber(nil, SubscriberConfig{RequestTopic: "photometry/+/request"}, nil)

	t.Run("id from topic", func(t *testing.T) {
		req, err := s.decode("photometry/obs-1/request", []byte(`{"U": 19.5, "G": 18.9, "R": 18.6, "I": 18.5, "Z": 18.4}`))
		require.NoError(t, err)
		assert.Equal(t, "obs-1", req.RequestID)
		assert.Equal(t, 18.9, req.G)
	})

	t.Run("id from payload wins", func(t *testing.T) {
		req, err := s.decode("photometry/obs-1/request", []byte(`{"request_id": "mine", "U": 19.5, "G": 18.9, "R": 18.6, "I": 18.5, "Z": 18.4}`))
		require.NoError(t, err)
		assert.Equal(t, "mine", req.RequestID)
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := s.decode("photometry/obs-1/request", []byte(`{"U": 19.5}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, validation.ErrSchema))
	})

	t.Run("generated id", func(t *testing.T) {
		req, err := s.decode("photometry", []byte(`{"U": 19.5, "G": 18.9, "R": 18.6, "I": 18.5, "Z": 18.4}`))
		require.NoError(t, err)
		_, err = uuid.Parse(req.RequestID)
		assert.NoError(t, err)
	})
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions(ClientConfig{
		Broker:   "tcp://broker.local:1883",
		ClientID: "stellar-backend",
		Username: "observatory",
		Password: "secret",
	})

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "broker.local:1883", opts.Servers[0].Host)
	assert.Equal(t, "stellar-backend", opts.ClientID)
	assert.Equal(t, "observatory", opts.Username)
	assert.Equal(t, "secret", opts.Password)
	assert.False(t, opts.Order)
	assert.True(t, opts.AutoReconnect)
	assert.Equal(t, int64(60), opts.KeepAlive)
	assert.NotNil(t, opts.OnConnectionLost)
	assert.NotNil(t, opts.DefaultPublishHandler)
}

func TestEncodeResult(t *testing.T) {
	ts := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	t.Run("result", func(t *testing.T) {
		payload, err := encodeResult(&models.PhotometryResult{
			RequestID: "obs-1",
			Timestamp: ts,
			Result:    &models.PredictionResponse{Teff: 5800, Warnings: []string{}},
		})
		require.NoError(t, err)

		var out models.PhotometryResult
		require.NoError(t, json.Unmarshal(payload, &out))
		require.NotNil(t, out.Result)
		assert.Equal(t, 5800.0, out.Result.Teff)
		assert.Empty(t, out.Error)
	})

	t.Run("unencodable result becomes error", func(t *testing.T) {
		payload, err := encodeResult(&models.PhotometryResult{
			RequestID: "obs-2",
			Timestamp: ts,
			Result:    &models.PredictionResponse{Teff: math.Inf(1)},
		})
		require.NoError(t, err)

		var out models.PhotometryResult
		require.NoError(t, json.Unmarshal(payload, &out))
		assert.Equal(t, "obs-2", out.RequestID)
		assert.Nil(t, out.Result)
		assert.Contains(t, out.Error, "unsupported value")
	})
}
