package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Engine    EngineConfig
	Sources   SourcesConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// EngineConfig controls the prediction engine cache and validation floor.
type EngineConfig struct {
	CacheTTL      time.Duration // 0 disables caching
	MinDataPoints int
}

// SourcesConfig selects and tunes the forecast connectors.
type SourcesConfig struct {
	Enabled           []string // metaculus, polymarket, manifold, file
	FixturePath       string
	Timeout           time.Duration
	Concurrency       int
	MetaculusBaseURL  string
	PolymarketBaseURL string
	ManifoldBaseURL   string
}

// DatabaseConfig selects the prediction history backend.
type DatabaseConfig struct {
	Driver string // sqlite or postgres
	Path   string // sqlite file
	URL    string // postgres connection string
}

// SchedulerConfig controls periodic prediction runs.
type SchedulerConfig struct {
	Interval time.Duration // 0 disables the scheduler
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultCacheTTL      = 300 * time.Second
	defaultMinDataPoints = 1

	defaultSources           = "metaculus,polymarket,manifold"
	defaultSourceTimeout     = 20 * time.Second
	defaultSourceConcurrency = 3

	defaultDatabaseDriver = "sqlite"
	defaultDatabasePath   = "ai_predictions.db"
)

var knownSources = map[string]bool{
	"metaculus":  true,
	"polymarket": true,
	"manifold":   true,
	"file":       true,
}

// Load reads configuration from environment variables, applying defaults for
// unset values. Malformed values are reported as "invalid X:" errors.
func Load() (Config, error) {
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Engine: EngineConfig{
			CacheTTL:      defaultCacheTTL,
			MinDataPoints: defaultMinDataPoints,
		},
		Sources: SourcesConfig{
			FixturePath:       os.Getenv("SOURCES_FIXTURE_PATH"),
			Timeout:           defaultSourceTimeout,
			Concurrency:       defaultSourceConcurrency,
			MetaculusBaseURL:  os.Getenv("METACULUS_BASE_URL"),
			PolymarketBaseURL: os.Getenv("POLYMARKET_BASE_URL"),
			ManifoldBaseURL:   os.Getenv("MANIFOLD_BASE_URL"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", defaultDatabaseDriver),
			Path:   getEnv("DATABASE_PATH", defaultDatabasePath),
			URL:    os.Getenv("DATABASE_URL"),
		},
	}

	durations := []struct {
		key    string
		target *time.Duration
		unit   time.Duration
	}{
		{"SERVER_READ_TIMEOUT_SECONDS", &cfg.Server.ReadTimeout, time.Second},
		{"SERVER_WRITE_TIMEOUT_SECONDS", &cfg.Server.WriteTimeout, time.Second},
		{"SERVER_SHUTDOWN_TIMEOUT_SECONDS", &cfg.Server.ShutdownTimeout, time.Second},
		{"CACHE_TTL_SECONDS", &cfg.Engine.CacheTTL, time.Second},
		{"SOURCES_TIMEOUT_SECONDS", &cfg.Sources.Timeout, time.Second},
		{"PREDICTION_INTERVAL_MINUTES", &cfg.Scheduler.Interval, time.Minute},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		n, err := parseNonNegative(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = time.Duration(n) * d.unit
	}

	if v := os.Getenv("MIN_DATA_POINTS"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MIN_DATA_POINTS: %w", err)
		}
		cfg.Engine.MinDataPoints = n
	}

	if v := os.Getenv("SOURCES_CONCURRENCY"); v != "" {
		n, err := parsePositive(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SOURCES_CONCURRENCY: %w", err)
		}
		cfg.Sources.Concurrency = n
	}

	sources, err := parseSources(getEnv("SOURCES", defaultSources))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SOURCES: %w", err)
	}
	cfg.Sources.Enabled = sources
	if contains(sources, "file") && cfg.Sources.FixturePath == "" {
		return Config{}, fmt.Errorf("invalid SOURCES: 'file' requires SOURCES_FIXTURE_PATH")
	}

	switch cfg.Database.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Database.URL == "" {
			url, err := cloudSQLURL()
			if err != nil {
				return Config{}, fmt.Errorf("invalid DATABASE_DRIVER: %w", err)
			}
			cfg.Database.URL = url
		}
		if cfg.Database.URL == "" {
			return Config{}, fmt.Errorf("invalid DATABASE_DRIVER: postgres requires DATABASE_URL or INSTANCE_CONNECTION_NAME")
		}
	default:
		return Config{}, fmt.Errorf("invalid DATABASE_DRIVER: must be 'sqlite' or 'postgres'")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	return cfg, nil
}

func parseSources(raw string) ([]string, error) {
	var sources []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if !knownSources[name] {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		if !contains(sources, name) {
			sources = append(sources, name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	return sources, nil
}

func parseNonNegative(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return n, nil
}

func parsePositive(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
