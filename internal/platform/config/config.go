package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean and deployments stay twelve-factor.
type Server struct {
	Addr          string
	JWTSigningKey string

	PostgresDSN string
	Redis       RedisConfig

	Kafka KafkaConfig

	Intake IntakeConfig
	Offers OffersConfig
	Wallet WalletConfig
}

// RedisConfig holds connection settings for the Redis-backed stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit event publisher. Empty Brokers
// means audit events stay on the in-memory store.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// IntakeConfig bounds the document intake pipeline.
type IntakeConfig struct {
	MaxUploadBytes int64
	UploadTimeout  time.Duration
	VerifyTimeout  time.Duration
}

// OffersConfig selects the eligibility policy applied by the matcher.
type OffersConfig struct {
	ReviewBand    int
	Permissive    bool
	CatalogTTL    time.Duration
	RequireOffers bool
}

// WalletConfig bounds wallet session lifetime.
type WalletConfig struct {
	SessionTTL time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          envOr("HEALTHCRED_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "healthcred.audit"),
		},
		Intake: IntakeConfig{
			MaxUploadBytes: envInt64Or("INTAKE_MAX_UPLOAD_BYTES", 10<<20),
			UploadTimeout:  envDurationOr("INTAKE_UPLOAD_TIMEOUT", 30*time.Second),
			VerifyTimeout:  envDurationOr("INTAKE_VERIFY_TIMEOUT", 60*time.Second),
		},
		Offers: OffersConfig{
			ReviewBand:    envIntOr("OFFERS_REVIEW_BAND", 50),
			Permissive:    os.Getenv("OFFERS_PERMISSIVE") == "true",
			CatalogTTL:    envDurationOr("OFFERS_CATALOG_TTL", 5*time.Minute),
			RequireOffers: os.Getenv("OFFERS_REQUIRE_NONEMPTY") == "true",
		},
		Wallet: WalletConfig{
			SessionTTL: envDurationOr("WALLET_SESSION_TTL", 24*time.Hour),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitNonEmpty(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
