package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	JWT     JWTConfig
	Storage StorageConfig
	AI      AIConfig
	Kafka   KafkaConfig
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	PublicBaseURL   string
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LoadConfig reads configuration from the environment, loading a .env file
// first when present. The service refuses to start without a database URL
// and a JWT signing secret.
func LoadConfig() (*Config, error) {
	// Ignore error: .env is optional, real env vars take precedence
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWT: JWTConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			TokenTTL: getEnvDuration("JWT_TOKEN_TTL", 24*time.Hour),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_KEY"),
			UseSSL:          getEnvBool("STORAGE_USE_SSL", false),
			Bucket:          getEnv("STORAGE_BUCKET", "rakitcita-uploads"),
			PublicBaseURL:   os.Getenv("STORAGE_PUBLIC_URL"),
		},
		AI: AIConfig{
			APIKey:  os.Getenv("AI_API_KEY"),
			BaseURL: os.Getenv("AI_BASE_URL"),
			Model:   getEnv("AI_MODEL", "gpt-4o-mini"),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "rakitcita.activity"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
