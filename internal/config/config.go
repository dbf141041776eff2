// Package config loads process configuration from the environment. It is
// read only by the cmd/ entry points.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

// Config holds every setting used by the service and the terminal client.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// ParamPrefix enables loading the OpenAI key from SSM when OPENAI_API_KEY is unset.
	ParamPrefix string       `env:"PARAM_PREFIX"`
	OpenAI      OpenAIConfig `envPrefix:"OPENAI_"`

	State StateConfig

	ChatURL string `env:"CHAT_URL" envDefault:"http://localhost:8080"`
}

type OpenAIConfig struct {
	APIKey  string        `env:"API_KEY"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model   string        `env:"MODEL" envDefault:"gpt-3.5-turbo"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

type StateConfig struct {
	Backend       string `env:"STATE_BACKEND" envDefault:"file"`
	Dir           string `env:"STATE_DIR" envDefault:".doc-chat"`
	Table         string `env:"STATE_TABLE"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	BootstrapFile string `env:"BOOTSTRAP_FILE"`
}

// Load reads an optional .env file and then the environment. A missing
// OpenAI key is not an error here: the answer service reports it per request.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.State.Backend = strings.ToLower(strings.TrimSpace(c.State.Backend))
	if c.State.Backend == "" {
		c.State.Backend = BackendFile
	}
	switch c.State.Backend {
	case BackendFile, BackendMemory, BackendRedis:
	case BackendDynamoDB:
		if strings.TrimSpace(c.State.Table) == "" {
			return errors.New("config: STATE_TABLE is required when STATE_BACKEND=dynamodb")
		}
	default:
		return fmt.Errorf("config: unknown STATE_BACKEND %q", c.State.Backend)
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("config: OPENAI_TIMEOUT must be positive, got %s", c.OpenAI.Timeout)
	}
	return nil
}

// CredentialConfigured reports whether some key source is set.
func (c *Config) CredentialConfigured() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != "" || strings.TrimSpace(c.ParamPrefix) != ""
}

// NewLogger builds the process logger: JSON to stderr at LOG_LEVEL.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
