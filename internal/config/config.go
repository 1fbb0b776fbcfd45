package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort            string
	BackendURL          string
	RequestTimeout      time.Duration
	SubmitTimeout       time.Duration
	ShutdownTimeout     time.Duration
	SessionIdleTTL      time.Duration
	MaxRequestBodySize  int64
	JWTSecret           string
	MongoURI            string
	MongoDBName         string
	MongoMaxPoolSize    uint64
	MongoMinPoolSize    uint64
	MongoConnectTimeout time.Duration
	MongoSelectTimeout  time.Duration
	RedisAddr           string
	RedisPassword       string
	KafkaBrokers        []string
	LogLevel            string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		BackendURL:         getEnv("BACKEND_URL", "http://localhost:8000/api"),
		MaxRequestBodySize: 1 << 20, // 1MB
		JWTSecret:          getEnv("JWT_SECRET", ""),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:        getEnv("MONGO_DB_NAME", "orderdesk"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SubmitTimeout, err = getDuration("SUBMIT_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MongoConnectTimeout, err = getDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MongoSelectTimeout, err = getDuration("MONGO_SERVER_SELECTION_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.MongoMaxPoolSize, err = getUint("MONGO_MAX_POOL_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.MongoMinPoolSize, err = getUint("MONGO_MIN_POOL_SIZE", 0); err != nil {
		return nil, err
	}
	if cfg.MongoMaxPoolSize > 0 && cfg.MongoMinPoolSize > cfg.MongoMaxPoolSize {
		return nil, fmt.Errorf("MONGO_MIN_POOL_SIZE exceeds MONGO_MAX_POOL_SIZE")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getUint(key string, defaultValue uint64) (uint64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
