package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CI", "ENV", "CONFIG_FILE", "SERVER_PORT", "SERVER_HOST", "STORE_BACKEND",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"REDIS_URL", "REDIS_HOST", "RATE_LIMIT", "RATE_LIMIT_WINDOW", "LOG_FORMAT",
		"SNAPSHOT_BUCKET", "SNAPSHOT_FILE", "SEED_ENABLED", "CORS_ALLOWED_ORIGINS",
	} {
		if old, ok := os.LookupEnv(name); ok {
			t.Cleanup(func() { os.Setenv(name, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(name) })
		}
		os.Unsetenv(name)
	}
	t.Setenv("SECRETS_DIR", t.TempDir())
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.SeedEnabled)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SEED_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.True(t, cfg.RedisEnabled())
	assert.False(t, cfg.SeedEnabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "host=db port=5432 user=postgres password=postgres dbname=recipes sslmode=disable", cfg.PostgresDSN())
}

func TestLoadConfigSecretsOverrideEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("DB_PASSWORD", "from-env")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("from-secret\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.DBPassword)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "recipes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: \"7070\"\nlog_format: json\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:     Development,
			ServerPort:      "8080",
			ShutdownTimeout: time.Second,
			StoreBackend:    BackendMemory,
			RateLimit:       10,
			RateLimitWindow: time.Minute,
			LogFormat:       "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.ServerPort = "http" }, "SERVER_PORT"},
		{"unknown backend", func(c *Config) { c.StoreBackend = "mongo" }, "STORE_BACKEND"},
		{"sqlite without path", func(c *Config) { c.StoreBackend = BackendSQLite }, "SQLITE_PATH"},
		{"production postgres without password", func(c *Config) {
			c.Environment = Production
			c.StoreBackend = BackendPostgres
			c.DBHost, c.DBPort, c.DBUser, c.DBName = "db", "5432", "u", "n"
		}, "DB_PASSWORD"},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }, "RATE_LIMIT"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"bad cors origin", func(c *Config) { c.CORSAllowedOrigins = []string{"localhost:5173"} }, "CORS_ALLOWED_ORIGINS"},
		{"snapshot with sqlite", func(c *Config) {
			c.StoreBackend = BackendSQLite
			c.SQLitePath = "x.db"
			c.SnapshotFile = "snap.yaml"
		}, "snapshots require the memory backend"},
		{"two snapshot targets", func(c *Config) {
			c.SnapshotFile = "snap.yaml"
			c.SnapshotBucket = "bucket"
			c.SnapshotKey = "key"
		}, "SNAPSHOT_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
