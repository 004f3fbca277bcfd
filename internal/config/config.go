package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"grabyourtickets/internal/cache"
	"grabyourtickets/internal/database"
	"grabyourtickets/internal/messaging"
	"grabyourtickets/internal/notification"
	"grabyourtickets/internal/seating"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	MetricsEnabled bool

	Database      database.Config
	NATS          messaging.Config
	Redis         cache.Config
	Elasticsearch ElasticsearchConfig
	Auth          AuthConfig
	Booking       BookingConfig
	Scoring       seating.Scoring
	Mail          notification.Config
}

// ElasticsearchConfig describes the booking search index.
type ElasticsearchConfig struct {
	Enabled    bool
	URL        string
	Index      string
	Username   string
	Password   string
	MaxRetries int
	Timeout    time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type BookingConfig struct {
	SeatPrice int64
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "grabyourtickets"),
			Password:           getEnv("DB_PASSWORD", "grabyourtickets"),
			DBName:             getEnv("DB_NAME", "grabyourtickets"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			Enabled:     getEnvBool("NATS_ENABLED", true),
			URL:         getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID:   getEnv("NATS_CLUSTER_ID", "grabyourtickets"),
			ClientID:    getEnv("NATS_CLIENT_ID", "tickets-api"),
			AckWait:     time.Duration(getEnvInt("NATS_ACK_WAIT_SEC", 30)) * time.Second,
			MaxInflight: getEnvInt("NATS_MAX_INFLIGHT", 1),
		},

		Redis: cache.Config{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			SeatTTL:  time.Duration(getEnvInt("SEAT_CACHE_TTL_SEC", 30)) * time.Second,
		},

		Elasticsearch: ElasticsearchConfig{
			Enabled:    getEnvBool("ELASTICSEARCH_ENABLED", false),
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Index:      getEnv("ELASTICSEARCH_INDEX", "bookings"),
			Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
			Timeout:    getEnvDuration("ELASTICSEARCH_TIMEOUT", 30*time.Second),
		},

		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "change-me"),
			TokenTTL:      time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
			AdminEmail:    strings.ToLower(getEnv("ADMIN_EMAIL", "")),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			AdminName:     getEnv("ADMIN_NAME", "Admin"),
		},

		Booking: BookingConfig{
			SeatPrice: int64(getEnvInt("SEAT_PRICE", 200)),
		},

		Scoring: seating.Scoring{
			BestRowWindow:    getEnvInt("BEST_ROW_WINDOW", 3),
			CenterTolerance:  getEnvInt("CENTER_SEAT_TOLERANCE", 1),
			BestRowPoints:    getEnvInt("BEST_ROW_POINTS", 10),
			CenterSeatPoints: getEnvInt("CENTER_SEAT_POINTS", 5),
		},

		Mail: notification.Config{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "no-reply@grabyourtickets.local"),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings such as "5s" or "1m".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
