package mqtt

import (
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"stellar-backend/internal/models"
	"stellar-backend/internal/validation"
)

// Subscriber handles MQTT subscriptions and writes photometry requests to a channel
type Subscriber struct {
	client mqtt.Client

	// Output channel (written by subscriber, read by the prediction service)
	RequestChan chan *models.PhotometryRequest

	requestTopic string
}

// SubscriberConfig holds configuration for MQTT subscriber
type SubscriberConfig struct {
	RequestTopic string // e.g., "photometry/+/request"
}

// NewSubscriber creates a new MQTT subscriber with channels
func NewSubscriber(
	client mqtt.Client,
	config SubscriberConfig,
	requestChan chan *models.PhotometryRequest,
) *Subscriber {
	return &Subscriber{
		client:       client,
		RequestChan:  requestChan,
		requestTopic: config.RequestTopic,
	}
}

// SubscribeAll subscribes to the configured request topic
func (s *Subscriber) SubscribeAll() error {
	if s.requestTopic == "" {
		return nil
	}

	token := s.client.Subscribe(s.requestTopic, 1, s.handleRequest)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to request topic: %w", token.Error())
	}
	log.Printf("Subscribed to photometry request topic: %s", s.requestTopic)
	return nil
}

// handleRequest decodes a photometry request and writes it to the channel
func (s *Subscriber) handleRequest(client mqtt.Client, msg mqtt.Message) {
	req, err := s.decode(msg.Topic(), msg.Payload())
	if err != nil {
		log.Printf("Error decoding photometry request on %s: %v", msg.Topic(), err)
		return
	}

	log.Printf("Received photometry request %s", req.RequestID)

	// Write to channel (non-blocking with timeout)
	select {
	case s.RequestChan <- req:
	case <-time.After(1 * time.Second):
		log.Printf("Warning: Request channel full, dropping request %s", req.RequestID)
	}
}

// decode validates the payload. A missing request ID is taken from the topic,
// or generated when the topic carries none.
func (s *Subscriber) decode(topic string, payload []byte) (*models.PhotometryRequest, error) {
	req, err := validation.DecodeRequest(payload)
	if err != nil {
		return nil, err
	}

	if req.RequestID == "" {
		req.RequestID = extractRequestID(topic)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req, nil
}

// extractRequestID extracts the request ID from an MQTT topic
// Example: "photometry/obs-42/request" -> "obs-42"
func extractRequestID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
