package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultNightlyRateCents backs quotes for properties without a priced rate:
// 150 currency units. Injected through Config, never read at call sites.
const DefaultNightlyRateCents int64 = 15000

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env          string
	HTTPAddr     string
	StorageMode  string
	MongoURI     string
	MongoDB      string
	SessionsMode string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL   time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	BillingBaseURL string
	BillingAPIKey  string
	BillingTimeout time.Duration
	BillingWindow  time.Duration

	DefaultRateCents int64
	Currency         string
}

// Load parses configuration from the current environment. A local .env file
// is merged in first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		StorageMode:      strings.ToLower(getEnv("STORAGE_MODE", "memory")),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "plek"),
		SessionsMode:     strings.ToLower(getEnv("SESSIONS_MODE", "memory")),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		BillingBaseURL:   os.Getenv("BILLING_BASE_URL"),
		BillingAPIKey:    os.Getenv("BILLING_API_KEY"),
		Currency:         strings.ToUpper(getEnv("CURRENCY", "EUR")),
	}

	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	sessionTTL, err := parseDurationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = sessionTTL

	billingTimeout, err := parseDurationEnv("BILLING_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.BillingTimeout = billingTimeout

	billingWindow, err := parseDurationEnv("BILLING_WINDOW", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.BillingWindow = billingWindow

	rate, err := parseInt64Env("DEFAULT_NIGHTLY_RATE_CENTS", DefaultNightlyRateCents)
	if err != nil {
		return Config{}, err
	}
	if rate <= 0 {
		return Config{}, fmt.Errorf("DEFAULT_NIGHTLY_RATE_CENTS must be positive")
	}
	cfg.DefaultRateCents = rate

	redisDB, err := parseInt64Env("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.RedisDB = int(redisDB)

	switch cfg.StorageMode {
	case "memory":
	case "mongo":
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}
	switch cfg.SessionsMode {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("unknown SESSIONS_MODE %q", cfg.SessionsMode)
	}
	if len(cfg.Currency) != 3 {
		return Config{}, fmt.Errorf("invalid CURRENCY %q", cfg.Currency)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseInt64Env(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}
