// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "ponto/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Proofs    ProofConfig
	RateLimit RateLimitConfig
}

// PostgresConfig holds the relational store settings. An empty DSN selects
// the in-memory stores.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds the geofence cache settings. An empty URL disables the
// cache layer entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit forwarding settings. No brokers means audit
// events stay local.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// ProofConfig holds proof artifact storage settings.
type ProofConfig struct {
	// BaseURL prefixes the public proof references handed to clients.
	BaseURL string
}

// RateLimitConfig bounds requests per client on the attendance API.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := envOr("PONTO_ADDR", ":8080")

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = pstrings.DedupeAndTrim(strings.Split(raw, ","))
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     envOr("JWT_ISSUER", "ponto"),
		JWTAudience:   envOr("JWT_AUDIENCE", "ponto-api"),
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxOpenConns:    envIntOr("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envIntOr("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDurationOr("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    brokers,
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "ponto.audit"),
		},
		Proofs: ProofConfig{
			BaseURL: envOr("PROOF_BASE_URL", "/proofs"),
		},
		RateLimit: RateLimitConfig{
			Limit:  envIntOr("RATE_LIMIT_REQUESTS", 60),
			Window: envDurationOr("RATE_LIMIT_WINDOW", time.Minute),
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
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
