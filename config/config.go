package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration

	// Store configuration
	StoreBackend string
	SQLitePath   string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Rate limiting of mutating recipe routes
	RateLimit       int
	RateLimitWindow time.Duration

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	// Seeding
	SeedEnabled bool
	SeedFile    string

	// Snapshots of the memory store
	SnapshotBucket string
	SnapshotKey    string
	SnapshotRegion string
	SnapshotFile   string
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN returns the lib/pq connection string for the configured database
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a Redis server was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// LoadConfig creates a new Config instance with values from environment variables,
// an optional config file and Docker secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := fromViper(v)
	cfg.Environment = env

	// Sensitive values come from Docker secrets outside of CI
	if env != CI {
		loadSecrets(cfg)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("SQLITE_PATH", "recipes.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "recipes")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT", 60)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SEED_ENABLED", true)
	v.SetDefault("SNAPSHOT_KEY", "recipes/snapshot.yaml")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:         v.GetString("SERVER_PORT"),
		ServerHost:         v.GetString("SERVER_HOST"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
		StoreBackend:       strings.ToLower(v.GetString("STORE_BACKEND")),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSL_MODE"),
		RedisHost:          v.GetString("REDIS_HOST"),
		RedisPort:          v.GetString("REDIS_PORT"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		RedisURL:           v.GetString("REDIS_URL"),
		RateLimit:          v.GetInt("RATE_LIMIT"),
		RateLimitWindow:    v.GetDuration("RATE_LIMIT_WINDOW"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		SeedEnabled:        v.GetBool("SEED_ENABLED"),
		SeedFile:           v.GetString("SEED_FILE"),
		SnapshotBucket:     v.GetString("SNAPSHOT_BUCKET"),
		SnapshotKey:        v.GetString("SNAPSHOT_KEY"),
		SnapshotRegion:     v.GetString("AWS_REGION"),
		SnapshotFile:       v.GetString("SNAPSHOT_FILE"),
	}
}

// loadSecrets overrides sensitive values with Docker secrets when present
func loadSecrets(cfg *Config) {
	if s := readSecret("db_password"); s != "" {
		cfg.DBPassword = s
	}
	if s := readSecret("redis_password"); s != "" {
		cfg.RedisPassword = s
	}
	if s := readSecret("redis_url"); s != "" {
		cfg.RedisURL = s
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
