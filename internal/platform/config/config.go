package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	LogLevel       string
	RequestTimeout time.Duration
	CORSOrigins    []string
	Database       DatabaseConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	Catalog        CatalogConfig
}

// DatabaseConfig selects PostgreSQL when URL is set; the in-memory stores are used otherwise.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig configures the optional lookup cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event stream.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// CatalogConfig configures the external game metadata provider.
type CatalogConfig struct {
	APIKey           string
	BaseURL          string
	Timeout          time.Duration
	PlatformCacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           getEnv("GAMELIB_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 15*time.Second),
		CORSOrigins:    getList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    getList("KAFKA_BROKERS", nil),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "gamelib.audit"),
		},
		Catalog: CatalogConfig{
			APIKey:           os.Getenv("RAWG_API_KEY"),
			BaseURL:          getEnv("RAWG_BASE_URL", "https://api.rawg.io/api"),
			Timeout:          getDuration("RAWG_TIMEOUT", 10*time.Second),
			PlatformCacheTTL: getDuration("PLATFORM_CACHE_TTL", 6*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
