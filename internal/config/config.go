// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Cache backend names accepted by FITTRACK_CACHE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DBPath        string
	CacheBackend  string
	RedisURL      string
	RemoteURL     string
	OwnerID       string
	WeatherURL    string
	ProbeInterval time.Duration
}

// HasWeatherService returns true when a weather service URL is configured.
func (c *Config) HasWeatherService() bool {
	return c.WeatherURL != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. FITTRACK_REMOTE_URL and FITTRACK_OWNER_ID are required. Optional
// variables with defaults: FITTRACK_LISTEN_ADDR (127.0.0.1:8080),
// FITTRACK_DB_PATH (fittrack.db), FITTRACK_CACHE_BACKEND (sqlite),
// FITTRACK_PROBE_INTERVAL (30s). FITTRACK_REDIS_URL is required only when
// the redis backend is selected; FITTRACK_WEATHER_URL enables the weather
// endpoint when set.
func Load() (*Config, error) {
	remoteURL := os.Getenv("FITTRACK_REMOTE_URL")
	if remoteURL == "" {
		return nil, fmt.Errorf("FITTRACK_REMOTE_URL is required")
	}

	ownerID := os.Getenv("FITTRACK_OWNER_ID")
	if ownerID == "" {
		return nil, fmt.Errorf("FITTRACK_OWNER_ID is required")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("FITTRACK_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "fittrack.db"
	if v, ok := os.LookupEnv("FITTRACK_DB_PATH"); ok {
		dbPath = v
	}

	backend := BackendSQLite
	if v, ok := os.LookupEnv("FITTRACK_CACHE_BACKEND"); ok {
		switch v {
		case BackendSQLite, BackendRedis, BackendMemory:
			backend = v
		default:
			return nil, fmt.Errorf("FITTRACK_CACHE_BACKEND has invalid value %q: expected sqlite, redis, or memory", v)
		}
	}

	redisURL := os.Getenv("FITTRACK_REDIS_URL")
	if backend == BackendRedis && redisURL == "" {
		return nil, fmt.Errorf("FITTRACK_REDIS_URL is required when FITTRACK_CACHE_BACKEND is redis")
	}

	probeInterval := 30 * time.Second
	if v, ok := os.LookupEnv("FITTRACK_PROBE_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("FITTRACK_PROBE_INTERVAL has invalid duration %q: %w", v, err)
		}
		probeInterval = parsed
	}

	return &Config{
		ListenAddr:    listenAddr,
		DBPath:        dbPath,
		CacheBackend:  backend,
		RedisURL:      redisURL,
		RemoteURL:     remoteURL,
		OwnerID:       ownerID,
		WeatherURL:    os.Getenv("FITTRACK_WEATHER_URL"),
		ProbeInterval: probeInterval,
	}, nil
}
