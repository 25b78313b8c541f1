package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config for the whole application
type Config struct {
	App       AppConfig
	API       APIConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Kafka     KafkaConfig
	Valuation ValuationConfig
	Generator GeneratorConfig
	Metrics   MetricsConfig
}

// General application configuration
type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
}

// Configuration for the API server
type APIConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Configuration for the database
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Username        string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Configuration for the Redis market-data cache
type CacheConfig struct {
	Enabled bool
	Addr    string
	TTL     time.Duration
}

// Configuration for Kafka
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	Topic        string
	GroupID      string
	MaxRetries   int
	BatchTimeout time.Duration
}

// Configuration for valuation batch runs
type ValuationConfig struct {
	Workers int
}

// Configuration for the synthetic data generator
type GeneratorConfig struct {
	Seed       int64
	Bonds      int
	CurveDays  int
	MaxTenor   int
	BaseYield  float64
	YieldSlope float64
}

// Configuration for metrics
type MetricsConfig struct {
	Enabled bool
}

// Loads the configuration from a file and environment variables
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("BOND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "bond-risk-lab")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.log_level", "info")

	// API defaults
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.read_timeout", "10s")
	viper.SetDefault("api.write_timeout", "10s")
	viper.SetDefault("api.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "bondrisk")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 50)
	viper.SetDefault("database.conn_max_lifetime", "30m")

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.addr", "localhost:6379")
	viper.SetDefault("cache.ttl", "5m")

	// Kafka defaults
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "bond.risk.metrics")
	viper.SetDefault("kafka.group_id", "bond-risk-group")
	viper.SetDefault("kafka.max_retries", 3)
	viper.SetDefault("kafka.batch_timeout", "100ms")

	// Valuation defaults
	viper.SetDefault("valuation.workers", 8)

	// Generator defaults
	viper.SetDefault("generator.seed", 42)
	viper.SetDefault("generator.bonds", 100)
	viper.SetDefault("generator.curve_days", 30)
	viper.SetDefault("generator.max_tenor", 30)
	viper.SetDefault("generator.base_yield", 0.05)
	viper.SetDefault("generator.yield_slope", 0.002)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}

func GetConfigPath() string {
	configPath := os.Getenv("BOND_CONFIG_PATH")
	if configPath != "" {
		return configPath
	}

	return "./config/config.yaml"
}
