package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	AgentAddr      string
	Login          string
	Password       string
	Strategy       string
	SearchWorkers  int
	SearchBudget   time.Duration
	ReconnectDelay time.Duration
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	SpectatorAddr  string
}

// Load reads configuration from environment variables with sensible defaults.
// Storage and the spectator server stay disabled unless their variables are set.
func Load() *Config {
	return &Config{
		AgentAddr:      envOrDefault("AGENT_ADDR", "127.0.0.1:7877"),
		Login:          envOrDefault("AGENT_LOGIN", "progiv-go-main"),
		Password:       os.Getenv("AGENT_PASSWORD"),
		Strategy:       envOrDefault("STRATEGY", "search"),
		SearchWorkers:  envInt("SEARCH_WORKERS", runtime.NumCPU()),
		SearchBudget:   envDuration("SEARCH_BUDGET", 100*time.Millisecond),
		ReconnectDelay: envDuration("RECONNECT_DELAY", 100*time.Millisecond),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      envOrDefault("JWT_SECRET", "dev-secret-change-me"),
		SpectatorAddr:  os.Getenv("SPECTATOR_ADDR"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", fallback).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warn().Str("key", key).Str("value", v).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}
