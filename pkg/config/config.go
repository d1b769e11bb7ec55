// Package config loads application configuration from file and
// environment via viper.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/teamtrace/relato/pkg/embedder"
	"github.com/teamtrace/relato/pkg/inference"
	"github.com/teamtrace/relato/pkg/retrieval"
	"github.com/teamtrace/relato/pkg/store"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Store configuration
	Store StoreConfig `mapstructure:"store"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Inference configuration
	Inference inference.Config `mapstructure:"inference"`

	// Retrieval configuration
	Retrieval retrieval.Config `mapstructure:"retrieval"`

	// Evaluation configuration
	Evaluation EvaluationConfig `mapstructure:"evaluation"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// StoreConfig holds storage backend configuration
type StoreConfig struct {
	Driver   string `mapstructure:"driver"` // memory, neo4j, postgres, badger
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`

	Postgres store.PostgresConfig `mapstructure:"postgres"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"` // openai
	APIKey   string `mapstructure:"api_key"`

	embedder.Config `mapstructure:",squash"`
}

// EvaluationConfig holds evaluation sweep configuration
type EvaluationConfig struct {
	SinkDriver     string `mapstructure:"sink_driver"` // postgres, parquet, none
	SinkDSN        string `mapstructure:"sink_dsn"`
	ParquetPath    string `mapstructure:"parquet_path"`
	RunCachePath   string `mapstructure:"run_cache_path"`
	GroundTruth    string `mapstructure:"ground_truth"`
	WithEmbeddings bool   `mapstructure:"with_embeddings"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// BreakerSettings converts the config into embedder breaker settings.
func (c CircuitBreakerConfig) BreakerSettings() embedder.BreakerSettings {
	settings := embedder.DefaultBreakerSettings()
	if c.MaxRequests > 0 {
		settings.MaxRequests = c.MaxRequests
	}
	if c.Interval > 0 {
		settings.Interval = time.Duration(c.Interval) * time.Second
	}
	if c.Timeout > 0 {
		settings.Timeout = time.Duration(c.Timeout) * time.Second
	}
	if c.ReadyToTripRatio > 0 {
		settings.ReadyToTripRatio = c.ReadyToTripRatio
	}
	return settings
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Store defaults
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("store.uri", "")
	viper.SetDefault("store.username", "")
	viper.SetDefault("store.password", "")
	viper.SetDefault("store.database", "")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", embedder.DefaultModel)
	viper.SetDefault("embedding.batch_size", embedder.DefaultBatchSize)

	// Inference defaults
	viper.SetDefault("inference.similarity_threshold", 0.7)
	viper.SetDefault("inference.keyword_overlap_threshold", 0.3)
	viper.SetDefault("inference.use_semantic_similarity", true)
	viper.SetDefault("inference.semantic_weight", 0.7)
	viper.SetDefault("inference.include_inferred", true)

	// Retrieval defaults
	viper.SetDefault("retrieval.similarity_threshold", 0.3)
	viper.SetDefault("retrieval.chunk_limit", 20)
	viper.SetDefault("retrieval.include_relations", true)
	viper.SetDefault("retrieval.relation_depth", 1)

	// Evaluation defaults
	viper.SetDefault("evaluation.sink_driver", "parquet")

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.relato/telemetry", home))
		viper.SetDefault("evaluation.parquet_path", fmt.Sprintf("%s/.relato/evaluation", home))
		viper.SetDefault("evaluation.run_cache_path", fmt.Sprintf("%s/.relato/runs", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Embedding credentials
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Embedding.BaseURL = baseURL
	}

	// Store credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Store.Driver = "neo4j"
		config.Store.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Store.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Store.Password = pass
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		config.Store.Driver = "postgres"
		config.Store.URI = dsn
	}

	// Generic store settings
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		config.Store.Driver = driver
	}
	if uri := os.Getenv("STORE_URI"); uri != "" {
		config.Store.URI = uri
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Evaluation settings
	if dsn := os.Getenv("EVALUATION_SINK_DSN"); dsn != "" {
		config.Evaluation.SinkDriver = "postgres"
		config.Evaluation.SinkDSN = dsn
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
