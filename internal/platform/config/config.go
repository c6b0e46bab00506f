package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything main needs to wire the service. Values come from
// the environment so deployments stay twelve-factor; a local .env file is
// honored in development.
type Config struct {
	Addr string

	// DatabaseURL is a lib/pq DSN. Empty means run on in-memory stores
	// (useful for local development and the test suite).
	DatabaseURL string

	// RedisURL enables the Redis-backed token revocation list when set.
	RedisURL string

	// KafkaBrokers enables mirroring search events to Kafka when set.
	KafkaBrokers []string
	KafkaTopic   string

	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	// EvidenceDir is where uploaded evidence files are written.
	EvidenceDir string

	// FreeSearchLimit is the monthly employee-search allowance on the free
	// plan. Paid plans are unlimited.
	FreeSearchLimit int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getEnv("WORKCHECK_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaTopic:      getEnv("KAFKA_SEARCH_TOPIC", "workcheck.search-events"),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       getEnv("JWT_ISSUER", "workcheck"),
		TokenTTL:        getDuration("TOKEN_TTL", 7*24*time.Hour),
		EvidenceDir:     getEnv("EVIDENCE_DIR", "uploads"),
		FreeSearchLimit: getInt("FREE_SEARCH_LIMIT", 3),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
