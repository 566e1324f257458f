// Package config loads the service configuration from a YAML file, an
// optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Inventory backends for the current restaurant.
const (
	BackendStore    = "store"
	BackendDynamoDB = "dynamodb"
	BackendStatic   = "static"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	LLM         LLMConfig         `yaml:"llm"`
	Database    DatabaseConfig    `yaml:"database"`
	Inventory   InventoryConfig   `yaml:"inventory"`
	AWS         AWSConfig         `yaml:"aws"`
	Pricing     PricingConfig     `yaml:"pricing"`
	Fulfillment FulfillmentConfig `yaml:"fulfillment"`
	Kafka       KafkaConfig       `yaml:"kafka"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	MetricsPort int      `yaml:"metrics_port"`
	CORSOrigins []string `yaml:"cors_origins"`
	// JWTSecret protects the inventory write endpoints when set.
	JWTSecret string `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	// APIKeyParam names an SSM parameter holding the key.
	APIKeyParam     string  `yaml:"api_key_param"`
	BaseURL         string  `yaml:"base_url"`
	AzureEndpoint   string  `yaml:"azure_endpoint"`
	AzureDeployment string  `yaml:"azure_deployment"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	JSONMode        bool    `yaml:"json_mode"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Seed   bool   `yaml:"seed"`
}

type InventoryConfig struct {
	Backend         string          `yaml:"backend"`
	ShortfallPolicy string          `yaml:"shortfall_policy"`
	SisterURL       string          `yaml:"sister_url"`
	SisterTimeout   time.Duration   `yaml:"sister_timeout"`
	Static          map[string]bool `yaml:"static"`
}

type AWSConfig struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	DynamoDBTable   string `yaml:"dynamodb_table"`
}

type PricingConfig struct {
	BasePrice float64 `yaml:"base_price"`
	PerKgRate float64 `yaml:"per_kg_rate"`
}

type FulfillmentConfig struct {
	DeliveryEnabled bool          `yaml:"delivery_enabled"`
	PickupOffset    time.Duration `yaml:"pickup_offset"`
	DeliveryOffset  time.Duration `yaml:"delivery_offset"`
}

type KafkaConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Brokers     []string `yaml:"brokers"`
	Topic       string   `yaml:"topic"`
	ResultTopic string   `yaml:"result_topic"`
	GroupID     string   `yaml:"group_id"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			MetricsPort: 9090,
			CORSOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info"},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			MaxTokens: 1024,
			JSONMode:  true,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "orders.db",
		},
		Inventory: InventoryConfig{
			Backend:         BackendStore,
			ShortfallPolicy: "first_failure",
			SisterTimeout:   10 * time.Second,
		},
		AWS: AWSConfig{
			Region:        "us-east-1",
			DynamoDBTable: "Ingredients",
		},
		Pricing: PricingConfig{
			BasePrice: 10.0,
			PerKgRate: 0.5,
		},
		Fulfillment: FulfillmentConfig{
			PickupOffset:   30 * time.Minute,
			DeliveryOffset: 45 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:       "customer-messages",
			ResultTopic: "order-results",
			GroupID:     "order-intake",
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies the .env
// file and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("USE_DYNAMODB"); ok {
		use, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid USE_DYNAMODB: %w", err)
		}
		if use {
			c.Inventory.Backend = BackendDynamoDB
		} else if c.Inventory.Backend == BackendDynamoDB {
			c.Inventory.Backend = BackendStatic
		}
	}
	if v, ok := os.LookupEnv("DELIVERY_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DELIVERY_ENABLED: %w", err)
		}
		c.Fulfillment.DeliveryEnabled = enabled
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.APIKeyParam, "OPENAI_API_KEY_PARAM_NAME")
	setString(&c.LLM.AzureEndpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Inventory.SisterURL, "SISTER_RESTAURANT_API_URL")
	setString(&c.AWS.Region, "AWS_REGION")
	setString(&c.AWS.Endpoint, "AWS_ENDPOINT_URL")
	setString(&c.AWS.DynamoDBTable, "DYNAMODB_TABLE_NAME")
	setString(&c.Server.JWTSecret, "JWT_SECRET")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", c.Server.MetricsPort)
	}

	switch c.Inventory.Backend {
	case BackendStore:
		if c.Database.Driver == "" || c.Database.DSN == "" {
			return fmt.Errorf("database driver and dsn are required for the store backend")
		}
	case BackendDynamoDB:
		if c.AWS.DynamoDBTable == "" {
			return fmt.Errorf("aws.dynamodb_table is required for the dynamodb backend")
		}
	case BackendStatic:
	default:
		return fmt.Errorf("unknown inventory backend %q", c.Inventory.Backend)
	}

	switch c.LLM.Provider {
	case "openai", "github_models", "azure":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	if c.Pricing.BasePrice < 0 || c.Pricing.PerKgRate < 0 {
		return fmt.Errorf("prices must not be negative")
	}
	if c.Fulfillment.PickupOffset < 0 || c.Fulfillment.DeliveryOffset < 0 {
		return fmt.Errorf("fulfillment offsets must not be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka is enabled but no brokers are configured")
	}
	return nil
}
