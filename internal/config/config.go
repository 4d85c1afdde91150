package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	LogLevel       string
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string
	MQTTClientID  string

	PrayerProvider   string // "static" or "aladhan"
	AladhanBaseURL   string
	AladhanMethod    int
	TimingsCacheTTL  time.Duration
	AnnounceInterval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment:    getenv("APP_ENV", "production"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		ServerAddress:  getenv("SERVER_ADDRESS", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:      os.Getenv("JWT_SECRET"),

		RedisAddress:  getenv("REDIS_ADDRESS", "localhost:6379"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: getenv("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:  getenv("MQTT_CLIENT_ID", "sekine-server"),

		PrayerProvider: getenv("PRAYER_PROVIDER", "static"),
		AladhanBaseURL: os.Getenv("ALADHAN_BASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.PrayerProvider {
	case "static", "aladhan":
	default:
		return nil, fmt.Errorf("PRAYER_PROVIDER must be static or aladhan, got %q", cfg.PrayerProvider)
	}

	method, err := strconv.Atoi(getenv("ALADHAN_METHOD", "2"))
	if err != nil {
		return nil, fmt.Errorf("ALADHAN_METHOD: %w", err)
	}
	cfg.AladhanMethod = method

	if cfg.TimingsCacheTTL, err = duration("TIMINGS_CACHE_TTL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AnnounceInterval, err = duration("ANNOUNCE_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
