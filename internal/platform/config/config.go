package config

import (
	"os"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean and deployments stay twelve-factor.
type Server struct {
	Addr string

	// DatabaseURL selects the Postgres store when set; the in-memory store
	// is used otherwise (development and tests).
	DatabaseURL string

	// WhitelistPath points at the newline-delimited list of valid
	// observation strings. The file is loaded once at startup.
	WhitelistPath string

	// RedisURL optionally backs the whitelist with Redis. Empty means the
	// whitelist stays purely in-process.
	RedisURL string

	ShutdownTimeout   time.Duration
	RequestTimeout    time.Duration
	ReadHeaderTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:            getEnv("CYCLETRACKER_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		WhitelistPath:   getEnv("WHITELIST_PATH", "valid-observations.txt"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ShutdownTimeout:   10 * time.Second,
		RequestTimeout:    30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
