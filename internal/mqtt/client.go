// Package mqtt carries photometry requests and prediction results over an
// MQTT broker.
package mqtt

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// connectTimeout bounds the initial broker handshake at startup
const connectTimeout = 10 * time.Second

// Client owns the broker connection shared by the request subscriber and the
// result publisher. It also reports connection state to the HTTP health check.
type Client struct {
	client mqtt.Client
	broker string
}

// ClientConfig holds MQTT client configuration
type ClientConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// clientOptions builds the paho options for the prediction service. Results
// are published from several workers, so per-topic ordering is not required.
func clientOptions(config ClientConfig) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetDefaultPublishHandler(func(_ mqtt.Client, msg mqtt.Message) {
		log.Printf("MQTT: Ignoring message on unsubscribed topic %s", msg.Topic())
	})
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Printf("MQTT: Connected to %s", config.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("MQTT: Lost connection to %s, predictions over MQTT paused: %v", config.Broker, err)
	})
	return opts
}

// NewClient connects to the broker. A broker that cannot be reached at
// startup is fatal for the MQTT transport; later drops reconnect automatically.
func NewClient(config ClientConfig) (*Client, error) {
	client := mqtt.NewClient(clientOptions(config))

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return &Client{client: client, broker: config.Broker}, nil
}

// Native returns the underlying paho client for the subscriber and publisher
func (c *Client) Native() mqtt.Client {
	return c.client
}

// IsConnected reports whether the broker connection is currently up
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects, allowing in-flight result publishes a short grace period
func (c *Client) Close() {
	c.client.Disconnect(250)
	log.Printf("MQTT: Disconnected from %s", c.broker)
}
