package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requirements lists the settings that must be non-empty per environment
// when the postgres backend is selected
var requirements = map[Environment][]string{
	Development: {"DB_HOST", "DB_PORT", "DB_USER", "DB_NAME"},
	Test:        {"DB_HOST", "DB_PORT", "DB_USER", "DB_NAME"},
	CI:          {"DB_HOST", "DB_PORT", "DB_USER", "DB_NAME", "DB_PASSWORD"},
	Production:  {"DB_HOST", "DB_PORT", "DB_USER", "DB_NAME", "DB_PASSWORD"},
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		add("SERVER_PORT", fmt.Sprintf("invalid port %q", cfg.ServerPort))
	}
	if cfg.ShutdownTimeout <= 0 {
		add("SHUTDOWN_TIMEOUT", "must be positive")
	}

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for the sqlite backend")
		}
	case BackendPostgres:
		values := map[string]string{
			"DB_HOST":     cfg.DBHost,
			"DB_PORT":     cfg.DBPort,
			"DB_USER":     cfg.DBUser,
			"DB_NAME":     cfg.DBName,
			"DB_PASSWORD": cfg.DBPassword,
		}
		env := cfg.Environment
		if env == "" {
			env = GetEnvironment()
		}
		for _, name := range requirements[env] {
			if values[name] == "" {
				add(name, "is required for the postgres backend")
			}
		}
	default:
		add("STORE_BACKEND", fmt.Sprintf("unknown backend %q", cfg.StoreBackend))
	}

	if cfg.RateLimit < 0 {
		add("RATE_LIMIT", "must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateLimitWindow <= 0 {
		add("RATE_LIMIT_WINDOW", "must be positive when rate limiting is enabled")
	}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			add("CORS_ALLOWED_ORIGINS", fmt.Sprintf("invalid origin %q", origin))
		}
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		add("LOG_FORMAT", fmt.Sprintf("unknown format %q", cfg.LogFormat))
	}

	if cfg.SnapshotBucket != "" || cfg.SnapshotFile != "" {
		if cfg.SnapshotBucket != "" && cfg.SnapshotFile != "" {
			add("SNAPSHOT_FILE", "cannot be combined with SNAPSHOT_BUCKET")
		}
		if cfg.StoreBackend != BackendMemory {
			add("STORE_BACKEND", "snapshots require the memory backend")
		}
		if cfg.SnapshotBucket != "" && cfg.SnapshotKey == "" {
			add("SNAPSHOT_KEY", "is required with SNAPSHOT_BUCKET")
		}
	}

	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("invalid configuration:\n%s", strings.Join(msgs, "\n"))
}
