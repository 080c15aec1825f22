package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"stellar-backend/internal/models"
)

// Publisher handles MQTT publishing from channels
type Publisher struct {
	client mqtt.Client

	// Input channel (read by publisher, written by the prediction service)
	ResultChan chan *models.PhotometryResult

	resultTopic string // e.g., "photometry/{request_id}/result"
}

// PublisherConfig holds configuration for MQTT publisher
type PublisherConfig struct {
	ResultTopic string
}

// NewPublisher creates a new MQTT publisher with channels
func NewPublisher(
	client mqtt.Client,
	config PublisherConfig,
	resultChan chan *models.PhotometryResult,
) *Publisher {
	return &Publisher{
		client:      client,
		ResultChan:  resultChan,
		resultTopic: config.ResultTopic,
	}
}

// Start begins publishing prediction results from the channel
// Runs until context is cancelled or channel is closed
func (p *Publisher) Start(ctx context.Context) {
	log.Println("MQTT Publisher: Starting...")

	for {
		select {
		case <-ctx.Done():
			log.Println("MQTT Publisher: Context cancelled, shutting down...")
			return

		case res, ok := <-p.ResultChan:
			if !ok {
				log.Println("MQTT Publisher: Result channel closed, shutting down...")
				return
			}

			if err := p.publishResult(res); err != nil {
				log.Printf("Error publishing prediction result: %v", err)
			}
		}
	}
}

func (p *Publisher) publishResult(res *models.PhotometryResult) error {
	payload, err := encodeResult(res)
	if err != nil {
		return err
	}

	topic := formatTopic(p.resultTopic, res.RequestID)

	token := p.client.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish prediction result: %w", token.Error())
	}

	log.Printf("Published prediction result %s to topic: %s", res.RequestID, topic)
	return nil
}

// encodeResult marshals res. A result that cannot be encoded is replaced by an
// error envelope so the requester still receives an answer.
func encodeResult(res *models.PhotometryResult) ([]byte, error) {
	payload, err := json.Marshal(res)
	if err == nil {
		return payload, nil
	}

	log.Printf("Error encoding prediction result %s: %v", res.RequestID, err)
	fallback := &models.PhotometryResult{
		RequestID: res.RequestID,
		Timestamp: res.Timestamp,
		Error:     "failed to encode prediction result: " + err.Error(),
	}
	payload, err = json.Marshal(fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction result: %w", err)
	}
	return payload, nil
}

// formatTopic replaces the {request_id} placeholder with the actual request ID
func formatTopic(topicPattern, requestID string) string {
	return strings.ReplaceAll(topicPattern, "{request_id}", requestID)
}
