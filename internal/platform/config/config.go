package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig
	AdminToken  string
	SeedFile    string
}

// RedisConfig holds connection tuning for the optional Redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. The store backend is chosen by what is configured: GUESTLIST_DB_URL
// selects Postgres, GUESTLIST_REDIS_URL selects Redis, neither selects the
// in-memory store.
func FromEnv() Server {
	addr := os.Getenv("GUESTLIST_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	adminToken := os.Getenv("GUESTLIST_ADMIN_TOKEN")
	if adminToken == "" {
		// Use a default for development - should be overridden in production
		adminToken = "dev-admin-token-change-in-production"
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("GUESTLIST_DB_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("GUESTLIST_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		AdminToken: adminToken,
		SeedFile:   os.Getenv("GUESTLIST_SEED_FILE"),
	}
}
