package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config contains all configuration for the gateway service
type Config struct {
	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Service-specific configuration
	Gateway GatewayConfig `yaml:"gateway"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`
}

// LogConfig contains gateway-specific logging configuration
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" default:"json"`
	Debug  bool   `yaml:"debug" env:"DEBUG" default:"false"`
}

// ConfigureZerolog configures zerolog based on the log configuration
func (c *LogConfig) ConfigureZerolog() {
	level := zerolog.InfoLevel
	if c.Debug {
		level = zerolog.DebugLevel
	} else {
		switch strings.ToLower(c.Level) {
		case "trace":
			level = zerolog.TraceLevel
		case "debug":
			level = zerolog.DebugLevel
		case "info":
			level = zerolog.InfoLevel
		case "warn", "warning":
			level = zerolog.WarnLevel
		case "error":
			level = zerolog.ErrorLevel
		case "fatal":
			level = zerolog.FatalLevel
		case "panic":
			level = zerolog.PanicLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}

// DatabaseConfig contains gateway-specific database configuration
type DatabaseConfig struct {
	Driver string `yaml:"driver" default:"sqlite3"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL" default:"file:./gateway.db"`

	// SeedDemoData controls explicit startup seeding of the demo accounts and
	// device keys. There is no lazy fixture initialization anywhere else.
	SeedDemoData bool `yaml:"seed_demo_data" env:"SEED_DEMO_DATA" default:"false"`
}

// AuthConfig contains gateway-specific authentication configuration
type AuthConfig struct {
	JWTSecretKey string        `yaml:"-" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" default:"1h"`
}

// GatewayConfig contains gateway-specific configuration
type GatewayConfig struct {
	// Server configuration
	Host string `yaml:"host" env:"GATEWAY_HOST" default:"0.0.0.0"`
	Port int    `yaml:"port" env:"GATEWAY_PORT" default:"8080"`

	// Per-request store timeout; a store call that outlives this surfaces as
	// an Unavailable error to the caller.
	StoreTimeout time.Duration `yaml:"store_timeout" default:"10s"`

	// Metrics collection
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig configures the periodic metrics collector
type MetricsConfig struct {
	Enabled            bool          `yaml:"enabled" default:"true"`
	CollectionInterval time.Duration `yaml:"collection_interval" default:"30s"`
}

// Load loads the gateway configuration from multiple sources
func Load(configFile, envFile string) (*Config, error) {
	cfg := &Config{}

	loader := NewConfigLoader(LoaderConfig{
		ConfigFile:      configFile,
		EnvironmentFile: envFile,
		ServiceName:     "gateway",
	})

	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load gateway configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gateway configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	if len(c.Auth.JWTSecretKey) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters long")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway port must be between 1 and 65535")
	}

	if c.Gateway.StoreTimeout <= 0 {
		return fmt.Errorf("store timeout must be positive")
	}

	if c.Gateway.Metrics.Enabled && c.Gateway.Metrics.CollectionInterval <= 0 {
		return fmt.Errorf("metrics collection interval must be positive")
	}

	return nil
}

// GetListenAddress returns the address the gateway should listen on
func (c *Config) GetListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Gateway.Host, c.Gateway.Port)
}
