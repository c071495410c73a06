package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	PostgresURI   string
	RedisURI      string
	ListenAddr    string
	SecretKey     string
	CookieName    string
	TriggerSecret string
	FrontendURL   string

	GoogleClientID        string
	GoogleClientSecret    string
	InstagramClientSecret string

	ScanSpec            string
	ScanBatchLimit      int
	ScanCycleTimeout    time.Duration
	PublishTimeout      time.Duration
	MaxConcurrentPosts  int
	MaxConcurrentCalls  int
	PlatformMinInterval time.Duration
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", "localhost:6379"),
		ListenAddr:            getEnv("LISTEN_ADDR", ":3000"),
		SecretKey:             getEnv("SECRET_KEY", ""),
		CookieName:            getEnv("COOKIE_NAME", "brandcast_session"),
		TriggerSecret:         getEnv("TRIGGER_SECRET", ""),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		InstagramClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
		ScanSpec:              getEnv("SCAN_SPEC", "@every 0h01m00s"),
		ScanBatchLimit:        getEnvInt("SCAN_BATCH_LIMIT", 100),
		ScanCycleTimeout:      getEnvDuration("SCAN_CYCLE_TIMEOUT", 5*time.Minute),
		PublishTimeout:        getEnvDuration("PUBLISH_TIMEOUT", 30*time.Second),
		MaxConcurrentPosts:    getEnvInt("MAX_CONCURRENT_POSTS", 5),
		MaxConcurrentCalls:    getEnvInt("MAX_CONCURRENT_CALLS", 10),
		PlatformMinInterval:   getEnvDuration("PLATFORM_MIN_INTERVAL", 2*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
