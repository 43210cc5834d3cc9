package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	PostgresURL   string
	JWTSigningKey string
	Redis         RedisConfig
	Kafka         KafkaConfig
	Audit         AuditConfig
}

// RedisConfig holds connection settings for the optional Redis cache.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the optional audit export sink.
// Empty Brokers disables the sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AuditConfig tunes the detached audit recorder.
type AuditConfig struct {
	BufferSize    int
	DrainInterval time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MACHSAFE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	cfg := Server{
		Addr:          addr,
		PostgresURL:   os.Getenv("MACHSAFE_POSTGRES_URL"),
		JWTSigningKey: jwtSigningKey,
		Redis: RedisConfig{
			URL:          os.Getenv("MACHSAFE_REDIS_URL"),
			PoolSize:     envInt("MACHSAFE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("MACHSAFE_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: envDefault("MACHSAFE_KAFKA_AUDIT_TOPIC", "machsafe.audit.events"),
		},
		Audit: AuditConfig{
			BufferSize:    envInt("MACHSAFE_AUDIT_BUFFER_SIZE", 4096),
			DrainInterval: 250 * time.Millisecond,
		},
	}

	if brokers := os.Getenv("MACHSAFE_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitCommaList(brokers)
	}

	return cfg
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
