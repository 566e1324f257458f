package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderintake/internal/api"
	"orderintake/internal/cloud"
	"orderintake/internal/config"
	"orderintake/internal/database"
	"orderintake/internal/interpreter"
	"orderintake/internal/inventory"
	"orderintake/internal/logger"
	"orderintake/internal/metrics"
	"orderintake/internal/models/providers"
	"orderintake/internal/monitoring"
	"orderintake/internal/pipeline"
	"orderintake/internal/queue"
	"orderintake/internal/sufficiency"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	seed        = flag.Bool("seed", false, "Seed the ingredient inventory before serving")
)

func main() {
	flag.Parse()

	// Initialize context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}
	if *seed {
		cfg.Database.Seed = true
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	awsCfg, err := loadAWS(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	// Initialize LLM
	completer, err := initializeLLM(ctx, cfg, awsCfg)
	if err != nil {
		log.Fatal("Failed to initialize LLM", zap.Error(err))
	}

	// Initialize inventory
	current, store, err := initializeInventory(ctx, cfg, awsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize inventory", zap.Error(err))
	}
	defer database.CloseDB()

	var sister inventory.Source
	if cfg.Inventory.SisterURL != "" {
		sister = inventory.NewSisterClient(cfg.Inventory.SisterURL, cfg.Inventory.SisterTimeout, log)
	} else {
		log.Warn("No sister restaurant URL configured; sister orders will report every ingredient unavailable")
	}

	policy, err := sufficiency.ParsePolicy(cfg.Inventory.ShortfallPolicy)
	if err != nil {
		log.Fatal("Invalid shortfall policy", zap.Error(err))
	}

	// Initialize metrics collector
	collector := metrics.NewCollector()
	monitor := monitoring.NewMonitor()

	processor := pipeline.NewProcessor(pipeline.Deps{
		Interpreter: interpreter.New(completer, log),
		Inventory:   inventory.NewSelector(current, sister),
		Checker:     sufficiency.NewChecker(policy),
		Pricing: pipeline.Pricing{
			BasePrice: decimal.NewFromFloat(cfg.Pricing.BasePrice),
			PerKgRate: decimal.NewFromFloat(cfg.Pricing.PerKgRate),
		},
		Fulfillment: pipeline.Fulfillment{
			DeliveryEnabled: cfg.Fulfillment.DeliveryEnabled,
			PickupOffset:    cfg.Fulfillment.PickupOffset,
			DeliveryOffset:  cfg.Fulfillment.DeliveryOffset,
		},
		Metrics: collector,
		Monitor: monitor,
		Logger:  log,
	})

	// Initialize API server
	var inventoryStore api.InventoryStore
	if store != nil {
		inventoryStore = store
	}
	orderAPI := api.NewOrderAPI(processor, inventoryStore, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		JWTSecret:   cfg.Server.JWTSecret,
		Monitor:     monitor,
		Logger:      log,
	})

	// Start metrics server
	metricsServer := newMetricsServer(cfg.Server.MetricsPort, collector)
	go func() {
		log.Info("Starting metrics server", zap.Int("port", cfg.Server.MetricsPort))
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server error", zap.Error(err))
		}
	}()

	// Start Kafka consumer
	var consumer *queue.Consumer
	var producer *queue.Producer
	if cfg.Kafka.Enabled {
		consumer, producer, err = startQueue(cfg, processor, log)
		if err != nil {
			log.Fatal("Failed to start Kafka consumer", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: orderAPI.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				log.Error("Kafka consumer shutdown error", zap.Error(err))
			}
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				log.Error("Kafka producer shutdown error", zap.Error(err))
			}
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server shutdown error", zap.Error(err))
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("API server shutdown error", zap.Error(err))
		}

		cancel()
	}()

	// Start server
	log.Info("Starting API server", zap.Int("port", cfg.Server.Port))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("API server error", zap.Error(err))
	}
}

// loadAWS returns the AWS configuration when a component needs it
func loadAWS(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if cfg.Inventory.Backend != config.BackendDynamoDB && cfg.LLM.APIKeyParam == "" {
		return aws.Config{}, nil
	}
	return cloud.LoadConfig(ctx, cloud.Options{
		Region:          cfg.AWS.Region,
		Endpoint:        cfg.AWS.Endpoint,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	})
}

func initializeLLM(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (providers.Completer, error) {
	apiKey := cfg.LLM.APIKey
	if apiKey == "" && cfg.LLM.APIKeyParam != "" {
		params := cloud.NewParameterStore(cloud.NewSSMClient(awsCfg, cfg.AWS.Endpoint))
		key, err := params.Get(ctx, cfg.LLM.APIKeyParam)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key parameter: %w", err)
		}
		apiKey = key
	}

	return providers.New(providers.Options{
		Type:    providers.ProviderType(cfg.LLM.Provider),
		Model:   cfg.LLM.Model,
		APIKey:  apiKey,
		BaseURL: cfg.LLM.BaseURL,
		Settings: providers.Settings{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			JSONMode:    cfg.LLM.JSONMode,
		},
		AzureEndpoint:   cfg.LLM.AzureEndpoint,
		AzureDeployment: cfg.LLM.AzureDeployment,
	})
}

// initializeInventory builds the current restaurant's source. The store is
// returned separately when the inventory endpoints can be served from it.
func initializeInventory(ctx context.Context, cfg *config.Config, awsCfg aws.Config, log *zap.Logger) (inventory.Source, *inventory.StoreSource, error) {
	switch cfg.Inventory.Backend {
	case config.BackendStore:
		if err := database.InitDB(cfg.Database.Driver, cfg.Database.DSN); err != nil {
			return nil, nil, err
		}
		db := database.GetDB()
		if cfg.Database.Seed {
			n, err := database.Seed(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to seed inventory: %w", err)
			}
			log.Info("Seeded ingredient inventory", zap.Int("inserted", n))
		}
		store := inventory.NewStoreSource(db, log)
		return store, store, nil

	case config.BackendDynamoDB:
		client := cloud.NewDynamoClient(awsCfg, cfg.AWS.Endpoint)
		if cfg.Database.Seed {
			if err := database.SeedDynamo(ctx, client, cfg.AWS.DynamoDBTable); err != nil {
				return nil, nil, fmt.Errorf("failed to seed DynamoDB table: %w", err)
			}
			log.Info("Seeded DynamoDB inventory", zap.String("table", cfg.AWS.DynamoDBTable))
		}
		return inventory.NewDynamoSource(client, cfg.AWS.DynamoDBTable, log), nil, nil

	case config.BackendStatic:
		table := cfg.Inventory.Static
		if len(table) == 0 {
			table = inventory.DefaultStaticInventory
		}
		return inventory.NewStaticSource(table), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown inventory backend: %s", cfg.Inventory.Backend)
	}
}

func newMetricsServer(port int, collector *metrics.Collector) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	metricsRouter := gin.New()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{})))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}
}

func startQueue(cfg *config.Config, processor *pipeline.Processor, log *zap.Logger) (*queue.Consumer, *queue.Producer, error) {
	producer, err := queue.NewProducer(cfg.Kafka.Brokers, log)
	if err != nil {
		return nil, nil, err
	}

	handler := queue.NewOrderHandler(processor, producer, cfg.Kafka.ResultTopic, log)
	consumer, err := queue.NewConsumer(queue.ConsumerConfig{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		ConsumerGroup: cfg.Kafka.GroupID,
	}, handler, log)
	if err != nil {
		producer.Close()
		return nil, nil, err
	}

	if err := consumer.Start(); err != nil {
		producer.Close()
		return nil, nil, err
	}
	return consumer, producer, nil
}
