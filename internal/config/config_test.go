package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "orders_database", cfg.DB.Name)
	assert.Equal(t, "HS256", cfg.Auth.TokenAlgorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL())
	assert.Equal(t, "bcrypt", cfg.Auth.PasswordHashAlgo)
	assert.False(t, cfg.Redis.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL_MINUTES", "5")
	t.Setenv("TOKEN_ALGORITHM", "HS512")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", ":memory:")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL())
	assert.Equal(t, "HS512", cfg.Auth.TokenAlgorithm)
	assert.Equal(t, ":memory:", cfg.DB.DSN())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "TOKEN_SECRET=from-file\nHTTP_PORT=9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Auth.TokenSecret)
	assert.Equal(t, "9090", cfg.App.HTTPPort)
}

func TestDatabaseConfig_DSN_Postgres(t *testing.T) {
	c := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "pw",
		Name:     "store",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db user=app password=pw dbname=store port=5432 sslmode=disable", c.DSN())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DB:  DatabaseConfig{Driver: DriverPostgres, Host: "localhost", Name: "store"},
			App: AppConfig{Env: "development", HTTPPort: "8081", ShutdownTimeoutSeconds: 10},
			Auth: AuthConfig{
				TokenSecret:      "secret",
				TokenAlgorithm:   "HS256",
				TokenTTLMinutes:  30,
				PasswordHashAlgo: "bcrypt",
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }, "unsupported DB_DRIVER"},
		{"empty secret", func(c *Config) { c.Auth.TokenSecret = "" }, "TOKEN_SECRET is required"},
		{"default secret in production", func(c *Config) {
			c.App.Env = "production"
			c.Auth.TokenSecret = DefaultTokenSecret
		}, "must be overridden in production"},
		{"asymmetric algorithm", func(c *Config) { c.Auth.TokenAlgorithm = "RS256" }, "unsupported TOKEN_ALGORITHM"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTLMinutes = 0 }, "TOKEN_TTL_MINUTES"},
		{"unknown hash", func(c *Config) { c.Auth.PasswordHashAlgo = "md5" }, "PASSWORD_HASH_ALGO"},
		{"redis without ttl", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.CacheTTL = 0
		}, "REDIS_CACHE_TTL"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
