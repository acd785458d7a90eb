package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port              int    `env:"PORT" envDefault:"8080"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	RedisURL          string `env:"REDIS_URL,required"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	MaxCodeTTLMinutes int    `env:"MAX_CODE_TTL_MINUTES" envDefault:"10080"`
	RetentionDays     int    `env:"CODE_RETENTION_DAYS" envDefault:"180"`
	SkipMigrations    bool   `env:"SKIP_MIGRATIONS" envDefault:"false"`
}

// MaxCodeTTL caps how far in the future an access code may expire.
// The default is one week.
func (c *Config) MaxCodeTTL() time.Duration {
	return time.Duration(c.MaxCodeTTLMinutes) * time.Minute
}

// Retention returns how long expired access codes are kept as history
// before the retention job purges them. Zero disables purging.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if c.MaxCodeTTLMinutes <= 0 {
		return fmt.Errorf("MAX_CODE_TTL_MINUTES must be positive")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("CODE_RETENTION_DAYS must not be negative")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
