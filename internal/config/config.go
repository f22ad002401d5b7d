package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for aqimap.
type Config struct {
	HTTP      HTTPConfig
	Cache     CacheConfig
	Providers ProviderConfig
	Logging   LoggingConfig
	// Seed, when set, makes synthetic AQI draws reproducible.
	Seed *uint64
	// MetricsAddr serves /metrics when non-empty.
	MetricsAddr string
}

// HTTPConfig controls boundary retrieval.
type HTTPConfig struct {
	// Timeout of 0 means no deadline; provider failure is status/parse based.
	Timeout  time.Duration
	ProxyURL string
}

// CacheConfig selects the local payload cache used as the fallback tier.
type CacheConfig struct {
	Backend   string // sqlite, redis or none
	Path      string
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
}

// ProviderConfig overrides the built-in provider lists. Empty keeps defaults.
type ProviderConfig struct {
	Province []string
	State    []string
}

type LoggingConfig struct {
	Level string
	Path  string
}

// Load reads .env (if present) and AQIMAP_* environment variables.
func Load() (*Config, error) {
	// A missing .env is normal; variables may come from the environment.
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Timeout:  getDurationEnv("AQIMAP_HTTP_TIMEOUT", 0),
			ProxyURL: getEnv("AQIMAP_PROXY", ""),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(getEnv("AQIMAP_CACHE", "sqlite")),
			Path:      getEnv("AQIMAP_CACHE_PATH", defaultCachePath()),
			RedisAddr: getEnv("AQIMAP_REDIS_ADDR", "localhost:6379"),
			RedisDB:   getIntEnv("AQIMAP_REDIS_DB", 0),
			TTL:       getDurationEnv("AQIMAP_CACHE_TTL", 7*24*time.Hour),
		},
		Providers: ProviderConfig{
			Province: getListEnv("AQIMAP_PROVINCE_PROVIDERS"),
			State:    getListEnv("AQIMAP_STATE_PROVIDERS"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Path:  getEnv("AQIMAP_LOG", ""),
		},
		MetricsAddr: getEnv("AQIMAP_METRICS_ADDR", ""),
	}

	if s := os.Getenv("AQIMAP_SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("AQIMAP_SEED: %w", err)
		}
		cfg.Seed = &seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "sqlite":
		if c.Cache.Path == "" {
			return fmt.Errorf("AQIMAP_CACHE_PATH is required for the sqlite cache")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("AQIMAP_REDIS_ADDR is required for the redis cache")
		}
	case "none":
	default:
		return fmt.Errorf("unknown cache backend %q (sqlite, redis, none)", c.Cache.Backend)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("AQIMAP_HTTP_TIMEOUT must not be negative")
	}
	return nil
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "aqimap", "boundaries.db")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
