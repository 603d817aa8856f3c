package config

import (
	"math/big"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	RedisURL    string
	DatabaseURL string // postgres archive; takes precedence over SQLite
	SQLitePath  string // sqlite archive; empty disables it when DatabaseURL is also empty

	// Matchmaking lifecycle
	RateLimit     time.Duration
	QueueTimeout  time.Duration
	RoomTimeout   time.Duration
	Visibility    time.Duration
	BlockTTL      time.Duration // 0 = blocks never expire
	SweepInterval time.Duration

	// Elite queue eligibility
	EliteRPCURL       string
	EliteTokenAddress string
	EliteMinBalance   *big.Int
	EliteCacheTTL     time.Duration

	// Admin
	AdminKeyHash string // bcrypt hash guarding the flush endpoint
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),

		RateLimit:     getDuration("MESSAGE_RATE_LIMIT", 30*time.Second),
		QueueTimeout:  getDuration("QUEUE_TIMEOUT", 5*time.Minute),
		RoomTimeout:   getDuration("ROOM_TIMEOUT", 10*time.Minute),
		Visibility:    getDuration("ROOM_VISIBILITY", 5*time.Minute),
		BlockTTL:      getDuration("BLOCK_TTL", 0),
		SweepInterval: getDuration("SWEEP_INTERVAL", 30*time.Second),

		EliteRPCURL:       os.Getenv("ELITE_RPC_URL"),
		EliteTokenAddress: os.Getenv("ELITE_TOKEN_ADDRESS"),
		EliteMinBalance:   getBigInt("ELITE_MIN_BALANCE", big.NewInt(0)),
		EliteCacheTTL:     getDuration("ELITE_CACHE_TTL", 5*time.Minute),

		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
	}

	// In production, require a shared token store
	if cfg.Env == "production" && cfg.RedisURL == "" {
		panic("REDIS_URL is required in production")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
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

func getBigInt(key string, defaultValue *big.Int) *big.Int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return defaultValue
	}
	return n
}
