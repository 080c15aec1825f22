package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"stellar-backend/internal/api"
	"stellar-backend/internal/inference"
	"stellar-backend/internal/ml"
	"stellar-backend/internal/mqtt"
	"stellar-backend/internal/photometry"
	"stellar-backend/internal/services"
	"stellar-backend/pkg/config"
)

func main() {
	log.Println("Starting Stellar Prediction Service...")

	// Load configuration
	cfg := config.Load()

	// === Model bundles ===
	if cfg.ModelBootstrap && !ml.HasBundles(cfg.ModelDir) {
		log.Printf("No model bundles found in %s, writing sample bundles...", cfg.ModelDir)
		if err := ml.CreateSampleBundles(cfg.ModelDir); err != nil {
			log.Fatalf("Failed to create sample bundles: %v", err)
		}
	}

	registry, err := ml.LoadRegistry(cfg.ModelDir)
	if err != nil {
		log.Fatalf("Failed to load model bundles: %v", err)
	}

	ranges, err := photometry.LoadColorRanges(cfg.ColorRangesPath)
	if err != nil {
		log.Fatalf("Failed to load color ranges: %v", err)
	}

	engine, err := inference.NewEngine(registry, inference.Config{
		NoiseSigma:    cfg.NoiseSigma,
		SampleCount:   cfg.SampleCount,
		InfluenceStep: cfg.InfluenceStep,
		Seed:          cfg.RandomSeed,
		Ranges:        ranges,
	})
	if err != nil {
		log.Fatalf("Failed to initialize inference engine: %v", err)
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// === Optional MQTT transport ===
	var broker api.BrokerStatus
	if cfg.MQTTEnabled {
		mqttClient, err := startMQTT(ctx, g, cfg, engine)
		if err != nil {
			log.Fatalf("Failed to initialize MQTT transport: %v", err)
		}
		defer mqttClient.Close()
		broker = mqttClient
	}

	// === HTTP API ===
	server := api.NewServer(cfg.HTTPAddr, api.NewHandler(engine, broker))
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})

	// === Log startup info ===
	log.Println("=== Stellar Prediction Service is running ===")
	log.Printf("HTTP address: %s", cfg.HTTPAddr)
	log.Printf("Model directory: %s", cfg.ModelDir)
	log.Printf("Uncertainty: sigma=%.3f, samples=%d, influence step=%.3f",
		cfg.NoiseSigma, cfg.SampleCount, cfg.InfluenceStep)
	if cfg.MQTTEnabled {
		log.Printf("MQTT Topics:")
		log.Printf("  - Request: %s", cfg.MQTTTopicRequest)
		log.Printf("  - Result:  %s", cfg.MQTTTopicResult)
	}
	log.Println("Press Ctrl+C to exit...")

	if err := g.Wait(); err != nil {
		log.Fatalf("Service stopped with error: %v", err)
	}

	log.Println("Shutdown complete. Goodbye!")
}

// startMQTT connects to the broker and wires subscriber, prediction service
// and publisher through their channels
func startMQTT(ctx context.Context, g *errgroup.Group, cfg *config.Config, engine *inference.Engine) (*mqtt.Client, error) {
	log.Println("Connecting to MQTT broker...")
	mqttClient, err := mqtt.NewClient(mqtt.ClientConfig{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	})
	if err != nil {
		return nil, err
	}

	serviceConfig := services.DefaultPredictionServiceConfig()
	serviceConfig.Workers = cfg.PredictionWorkers
	predictionService := services.NewPredictionService(engine, serviceConfig)

	subscriber := mqtt.NewSubscriber(
		mqttClient.Native(),
		mqtt.SubscriberConfig{RequestTopic: cfg.MQTTTopicRequest},
		predictionService.RequestChan,
	)
	if err := subscriber.SubscribeAll(); err != nil {
		mqttClient.Close()
		return nil, err
	}

	publisher := mqtt.NewPublisher(
		mqttClient.Native(),
		mqtt.PublisherConfig{ResultTopic: cfg.MQTTTopicResult},
		predictionService.ResultChan,
	)

	g.Go(func() error {
		predictionService.Start(ctx)
		return nil
	})
	g.Go(func() error {
		publisher.Start(ctx)
		return nil
	})

	return mqttClient, nil
}
