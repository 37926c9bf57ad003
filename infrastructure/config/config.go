// Package config provides configuration loading and parsing for framing-go.
package config

import (
	"errors"
	"time"
)

// Errors returned by configuration loading.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidFormat     = errors.New("invalid config format")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrValidationFailed  = errors.New("config validation failed")
	ErrMissingEnvVar     = errors.New("missing environment variable")
)

// Config is the root configuration document.
type Config struct {
	Completion CompletionConfig `yaml:"completion" json:"completion"`
	Resilience ResilienceConfig `yaml:"resilience" json:"resilience"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Notion     NotionConfig     `yaml:"notion" json:"notion"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// CompletionConfig configures the completion service client.
type CompletionConfig struct {
	APIKey         string `yaml:"api_key" json:"api_key"`
	BaseURL        string `yaml:"base_url" json:"base_url"`
	Model          string `yaml:"model" json:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// ResilienceConfig configures the protection around completion calls.
type ResilienceConfig struct {
	MaxConcurrent                int `yaml:"max_concurrent" json:"max_concurrent"`
	CircuitBreakerThreshold      int `yaml:"circuit_breaker_threshold" json:"circuit_breaker_threshold"`
	CircuitBreakerTimeoutSeconds int `yaml:"circuit_breaker_timeout_seconds" json:"circuit_breaker_timeout_seconds"`
	TimeoutSeconds               int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// StorageConfig selects and configures the session store backend.
type StorageConfig struct {
	// Backend is one of: memory, badger, sqlite, redis.
	Backend string `yaml:"backend" json:"backend"`

	Badger BadgerConfig `yaml:"badger" json:"badger"`
	SQLite SQLiteConfig `yaml:"sqlite" json:"sqlite"`
	Redis  RedisConfig  `yaml:"redis" json:"redis"`
}

// BadgerConfig configures the BadgerDB session store.
type BadgerConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// SQLiteConfig configures the SQLite session store.
type SQLiteConfig struct {
	DSN string `yaml:"dsn" json:"dsn"`
}

// RedisConfig configures the Redis session store.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// NotionConfig configures the record store and keyword database.
type NotionConfig struct {
	Token             string `yaml:"token" json:"token"`
	RecordDatabaseID  string `yaml:"record_database_id" json:"record_database_id"`
	KeywordDatabaseID string `yaml:"keyword_database_id" json:"keyword_database_id"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Address             string `yaml:"address" json:"address"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds" json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds" json:"write_timeout_seconds"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns a configuration with sensible defaults: in-memory session
// storage, console logging, the public completion endpoint.
func Default() *Config {
	return &Config{
		Completion: CompletionConfig{
			Model:          "gpt-4o",
			TimeoutSeconds: 120,
		},
		Resilience: ResilienceConfig{
			MaxConcurrent:                10,
			CircuitBreakerThreshold:      5,
			CircuitBreakerTimeoutSeconds: 30,
			TimeoutSeconds:               120,
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Server: ServerConfig{
			Address:             ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "memory", "badger", "sqlite", "redis":
	default:
		return errors.Join(ErrValidationFailed,
			errors.New("storage.backend must be one of: memory, badger, sqlite, redis"))
	}

	if c.Completion.TimeoutSeconds < 0 || c.Resilience.TimeoutSeconds < 0 {
		return errors.Join(ErrValidationFailed, errors.New("timeouts must be non-negative"))
	}

	return nil
}

// CompletionTimeout returns the completion timeout as a duration.
func (c *CompletionConfig) CompletionTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
