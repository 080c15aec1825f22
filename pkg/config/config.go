package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Configuration
	HTTPAddr string

	// Model Bundle Configuration
	ModelDir        string
	ModelBootstrap  bool
	ColorRangesPath string

	// Uncertainty Estimation
	NoiseSigma    float64
	SampleCount   int
	InfluenceStep float64
	RandomSeed    int64

	// MQTT Configuration
	MQTTEnabled  bool
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	// MQTT topics
	MQTTTopicRequest string
	MQTTTopicResult  string

	// Worker pool for MQTT-originated predictions
	PredictionWorkers int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		// HTTP Configuration
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),

		// Model Bundle Configuration
		ModelDir:        getEnv("MODEL_DIR", "./model"),
		ModelBootstrap:  getEnvBool("MODEL_BOOTSTRAP", false),
		ColorRangesPath: getEnv("COLOR_RANGES_PATH", ""),

		// Uncertainty Estimation
		NoiseSigma:    getEnvFloat("NOISE_SIGMA", 0.02),
		SampleCount:   getEnvInt("SAMPLE_COUNT", 30),
		InfluenceStep: getEnvFloat("INFLUENCE_STEP", 0.02),
		RandomSeed:    int64(getEnvInt("RANDOM_SEED", -1)),

		// MQTT Configuration
		MQTTEnabled:  getEnvBool("MQTT_ENABLED", false),
		MQTTBroker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "stellar-backend"),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),

		MQTTTopicRequest: getEnv("MQTT_TOPIC_REQUEST", "photometry/+/request"),
		MQTTTopicResult:  getEnv("MQTT_TOPIC_RESULT", "photometry/{request_id}/result"),

		PredictionWorkers: getEnvInt("PREDICTION_WORKERS", 4),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: failed to parse %s as float, using default: %v", key, err)
		return defaultValue
	}
	return floatValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}
