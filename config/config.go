package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Blob      BlobConfig
	ML        MLConfig
	Platforms PlatformsConfig
	Matching  MatchingConfig
	Tasks     TasksConfig
	Cache     CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds bearer-token authentication configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// DatabaseConfig holds Postgres configuration
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds Redis configuration, used when the task store or cache
// is configured as "redis"
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BlobConfig holds blob storage configuration
type BlobConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Container string `mapstructure:"container"`
	SASToken  string `mapstructure:"sas_token"`
}

// MLConfig holds model endpoint configuration
type MLConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

// PlatformsConfig holds the per-platform adapter base URLs. A platform
// without a base URL gets no adapter and is silently skipped by matching.
type PlatformsConfig struct {
	BaseURLs map[string]string `mapstructure:"base_urls"`
}

// MatchingConfig holds product matching configuration
type MatchingConfig struct {
	MinRelevanceThreshold float64 `mapstructure:"min_relevance_threshold"`
}

// TasksConfig holds background task configuration
type TasksConfig struct {
	Store         string        `mapstructure:"store"` // "memory" or "redis"
	MaxConcurrent int64         `mapstructure:"max_concurrent"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "redis"
	TTL  time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/wyoiwyget/")

	// Environment variable settings
	v.SetEnvPrefix("WYOIWYGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8001")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:3001"})

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Blob defaults
	v.SetDefault("blob.container", "wyoiwyget-assets")

	// Matching defaults
	v.SetDefault("matching.min_relevance_threshold", 0.3)

	// Task defaults
	v.SetDefault("tasks.store", "memory")
	v.SetDefault("tasks.max_concurrent", 5)
	v.SetDefault("tasks.timeout", "300s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set WYOIWYGET_AUTH_JWT_SECRET)")
	}

	if config.Tasks.Store != "memory" && config.Tasks.Store != "redis" {
		return fmt.Errorf("task store must be 'memory' or 'redis', got: %s", config.Tasks.Store)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if (config.Tasks.Store == "redis" || config.Cache.Type == "redis") && config.Redis.Addr == "" {
		return fmt.Errorf("Redis address is required when a redis-backed store is configured")
	}

	if config.Matching.MinRelevanceThreshold < 0 || config.Matching.MinRelevanceThreshold >= 1 {
		return fmt.Errorf("matching threshold must be in [0, 1), got: %.2f", config.Matching.MinRelevanceThreshold)
	}

	if config.Tasks.MaxConcurrent <= 0 {
		return fmt.Errorf("tasks.max_concurrent must be positive, got: %d", config.Tasks.MaxConcurrent)
	}

	return nil
}
