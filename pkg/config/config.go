package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds runtime configuration derived from env vars or a .env file.
type App struct {
	DatabaseURL     string
	DBPoolName      string
	DBDebug         bool
	DBSessionConfig map[string]any
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  time.Duration
	DBTxTimeout     int

	APIPort     string
	Environment string
	LogLevel    string
	LogEncoding string
	CORSOrigins []string

	ItemsPerPage        int
	KafkaBrokers        string
	KafkaTopic          string
	HealthCheckSchedule string
}

// Load reads a .env file when one exists and then the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (App, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return App{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv loads the application configuration from environment variables.
func FromEnv() App {
	return App{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBPoolName:      os.Getenv("DB_POOL_NAME"),
		DBDebug:         getBool("DB_DEBUG", false),
		DBSessionConfig: parseSessionConfig(os.Getenv("DB_SESSION_CONFIG")),
		DBMaxOpenConns:  getInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:  getInt("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime:  getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		DBTxTimeout:     getInt("DB_TX_TIMEOUT_SECONDS", 0),

		APIPort:     getEnv("API_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "production"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "json"),
		CORSOrigins: getCORSOrigins(),

		ItemsPerPage:        getInt("ITEMS_PER_PAGE", 10),
		KafkaBrokers:        os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "client-events"),
		HealthCheckSchedule: getEnv("HEALTH_CHECK_SCHEDULE", "@every 1m"),
	}
}

// Brokers splits KafkaBrokers; empty means events are not published.
func (a App) Brokers() []string {
	return splitList(a.KafkaBrokers)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

// getDuration accepts Go durations ("90s") or whole seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getCORSOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseSessionConfig reads "k=v,k=v". Integers, floats and booleans keep
// their type so they are sent unquoted.
func parseSessionConfig(raw string) map[string]any {
	pairs := splitList(raw)
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		out[key] = sessionValue(strings.TrimSpace(value))
	}
	return out
}

func sessionValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}
