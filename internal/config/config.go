// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the server.
type Config struct {
	Host   string `env:"HOST,default=0.0.0.0"`
	Port   int    `env:"PORT,default=8080"`
	DBPath string `env:"DB_PATH,default=data/meetings.db"`

	JWTSecret         string        `env:"JWT_SECRET,default=dev-secret-change-me"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	GroqAPIKey      string        `env:"GROQ_API_KEY"`
	GroqBaseURL     string        `env:"GROQ_BASE_URL"`
	GroqModel       string        `env:"GROQ_MODEL"`
	AnalysisTimeout time.Duration `env:"ANALYSIS_TIMEOUT,default=30s"`

	ReplayLimit int `env:"REPLAY_LIMIT,default=256"`

	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB,default=50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS,default=3"`
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.ReplayLimit <= 0 {
		return nil, fmt.Errorf("REPLAY_LIMIT must be positive, got %d", cfg.ReplayLimit)
	}
	return &cfg, nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
