package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the deliberation engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database password, LLM API key) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// LLM completion service configuration
	LLM LLMConfig `yaml:"llm"`

	// Pipeline background worker configuration
	Workers WorkerConfig `yaml:"workers"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"deliberation"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"deliberation_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// LLM provider identifiers accepted by LLMConfig.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// LLMConfig holds configuration for the LLM completion service.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`

	// BaseURL is the API base URL. Empty means the provider's default.
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`

	// Model is the default model used by all pipeline stages.
	Model string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`

	// APIKey is the provider API key. Secret - env only.
	APIKey string `yaml:"-" env:"LLM_API_KEY"`
}

// WorkerConfig holds dispatcher and LLM concurrency settings.
type WorkerConfig struct {
	// QueueSize bounds the number of queued pipeline tasks. Triggers beyond
	// this are rejected rather than buffered without limit.
	QueueSize int `yaml:"queue_size" env:"WORKER_QUEUE_SIZE" env-default:"256"`

	// Concurrency is the number of pipeline tasks executed in parallel.
	Concurrency int `yaml:"concurrency" env:"WORKER_CONCURRENCY" env-default:"4"`

	// MaxConcurrentLLMCalls bounds parallel LLM requests inside a single
	// task (relevance scoring batches).
	MaxConcurrentLLMCalls int `yaml:"max_concurrent_llm_calls" env:"WORKER_MAX_LLM_CALLS" env-default:"8"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// If config.yaml does not exist, configuration comes from the environment alone.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Workers.QueueSize < 1 {
		return fmt.Errorf("worker queue_size must be positive, got %d", c.Workers.QueueSize)
	}
	if c.Workers.Concurrency < 1 {
		return fmt.Errorf("worker concurrency must be positive, got %d", c.Workers.Concurrency)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
