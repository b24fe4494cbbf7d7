package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           int
	NatsURL        string
	NatsToken      string
	DatabaseURL    string
	RedisURL       string
	LogLevel       string
	OpenAIAPIKey   string
	OpenAIModel    string
	GenTimeout     time.Duration
	MaxTurns       int
	SessionTimeout time.Duration
	MinHighValue   int
	Alpha          float64
	Gamma          float64
	Epsilon        float64
	APIToken       string
}

func Load() Config {
	return Config{
		Port:           envInt("MONGOOSE_PORT", 8760),
		NatsURL:        envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:      envStr("NATS_TOKEN", ""),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		RedisURL:       envStr("REDIS_URL", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:   envStr("OPENAI_API_KEY", ""),
		OpenAIModel:    envStr("MONGOOSE_MODEL", ""),
		GenTimeout:     envDuration("MONGOOSE_GEN_TIMEOUT", 10*time.Second),
		MaxTurns:       envInt("MONGOOSE_MAX_TURNS", 30),
		SessionTimeout: envDuration("MONGOOSE_SESSION_TIMEOUT", 30*time.Minute),
		MinHighValue:   envInt("MONGOOSE_MIN_HIGH_VALUE", 3),
		Alpha:          envFloat("MONGOOSE_RL_ALPHA", 0.1),
		Gamma:          envFloat("MONGOOSE_RL_GAMMA", 0.95),
		Epsilon:        envFloat("MONGOOSE_RL_EPSILON", 0.2),
		APIToken:       envStr("MONGOOSE_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
