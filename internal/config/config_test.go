package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("MaxCodeTTL converts minutes to duration", func(t *testing.T) {
		cfg := &Config{MaxCodeTTLMinutes: 90}
		assert.Equal(t, 90*time.Minute, cfg.MaxCodeTTL())
	})

	t.Run("Retention converts days to duration", func(t *testing.T) {
		cfg := &Config{RetentionDays: 30}
		assert.Equal(t, 30*24*time.Hour, cfg.Retention())
	})
}

func TestValidate(t *testing.T) {
	t.Run("accepts sane values", func(t *testing.T) {
		cfg := &Config{MaxCodeTTLMinutes: 60, RetentionDays: 180}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects non-positive max TTL", func(t *testing.T) {
		cfg := &Config{MaxCodeTTLMinutes: 0, RetentionDays: 180}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects negative retention", func(t *testing.T) {
		cfg := &Config{MaxCodeTTLMinutes: 60, RetentionDays: -1}
		assert.Error(t, cfg.Validate())
	})

	t.Run("allows zero retention to disable purging", func(t *testing.T) {
		cfg := &Config{MaxCodeTTLMinutes: 60, RetentionDays: 0}
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":                 os.Getenv("PORT"),
		"DATABASE_URL":         os.Getenv("DATABASE_URL"),
		"REDIS_URL":            os.Getenv("REDIS_URL"),
		"MAX_CODE_TTL_MINUTES": os.Getenv("MAX_CODE_TTL_MINUTES"),
		"CODE_RETENTION_DAYS":  os.Getenv("CODE_RETENTION_DAYS"),
		"LOG_LEVEL":            os.Getenv("LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Unsetenv("PORT")
		os.Unsetenv("MAX_CODE_TTL_MINUTES")
		os.Unsetenv("CODE_RETENTION_DAYS")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
		assert.Equal(t, 10080, cfg.MaxCodeTTLMinutes)
		assert.Equal(t, 180, cfg.RetentionDays)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("PORT", "3000")
		os.Setenv("MAX_CODE_TTL_MINUTES", "120")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 120, cfg.MaxCodeTTLMinutes)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")
		os.Setenv("REDIS_URL", "redis://localhost:6379")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails without required REDIS_URL", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Unsetenv("REDIS_URL")

		_, err := Load()
		assert.Error(t, err)
	})
}
