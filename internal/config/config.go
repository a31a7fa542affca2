package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilbhat/courtwatch/internal/models"
	"github.com/nikhilbhat/courtwatch/internal/portal"
	"github.com/nikhilbhat/courtwatch/internal/retry"
	"github.com/nikhilbhat/courtwatch/internal/store"
)

// Config holds all configuration values.
type Config struct {
	// Portal
	PortalURL         string
	CallTimeout       time.Duration
	RequestsPerSecond float64

	// Default jurisdiction for queries that do not name one.
	StateCode string
	CourtCode string

	// Captcha
	CaptchaEngine      string // "tesseract" or "llm"
	TesseractBinary    string
	LLMModel           string
	MaxCaptchaAttempts int

	// Retry and run budget
	MaxNetworkRetries int
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	RunTimeout        time.Duration

	// Bulk refresh
	BulkParallelism int

	// Storage. SurrealDBURL empty means the in-memory store.
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// PayloadDir receives raw payloads that failed to parse.
	PayloadDir string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		PortalURL:         getEnv("COURTWATCH_PORTAL_URL", "https://hcservices.ecourts.gov.in/hcservices"),
		CallTimeout:       getEnvDuration("COURTWATCH_CALL_TIMEOUT", 15*time.Second),
		RequestsPerSecond: getEnvFloat("COURTWATCH_REQUESTS_PER_SECOND", 1),

		StateCode: getEnv("COURTWATCH_STATE_CODE", "1"),
		CourtCode: getEnv("COURTWATCH_COURT_CODE", "1"),

		CaptchaEngine:      getEnv("COURTWATCH_CAPTCHA_ENGINE", "tesseract"),
		TesseractBinary:    getEnv("COURTWATCH_TESSERACT_BINARY", "tesseract"),
		LLMModel:           getEnv("COURTWATCH_LLM_MODEL", "gpt-4o-mini"),
		MaxCaptchaAttempts: getEnvInt("COURTWATCH_MAX_CAPTCHA_ATTEMPTS", 4),

		MaxNetworkRetries: getEnvInt("COURTWATCH_MAX_NETWORK_RETRIES", 3),
		BackoffBase:       getEnvDuration("COURTWATCH_BACKOFF_BASE", time.Second),
		BackoffMax:        getEnvDuration("COURTWATCH_BACKOFF_MAX", 30*time.Second),
		RunTimeout:        getEnvDuration("COURTWATCH_RUN_TIMEOUT", 5*time.Minute),

		BulkParallelism: getEnvInt("COURTWATCH_BULK_PARALLELISM", 4),

		SurrealDBURL:       getEnv("COURTWATCH_SURREALDB_URL", ""),
		SurrealDBNamespace: getEnv("COURTWATCH_SURREALDB_NAMESPACE", "courtwatch"),
		SurrealDBDatabase:  getEnv("COURTWATCH_SURREALDB_DATABASE", "cases"),
		SurrealDBUser:      getEnv("COURTWATCH_SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("COURTWATCH_SURREALDB_PASS", "root"),

		LogFile:  getEnv("COURTWATCH_LOG_FILE", "/tmp/courtwatch.log"),
		LogLevel: parseLogLevel(getEnv("COURTWATCH_LOG_LEVEL", "INFO")),

		PayloadDir: getEnv("COURTWATCH_PAYLOAD_DIR", ""),
	}
}

// DefaultCourt resolves the configured jurisdiction against the bench
// table.
func (c Config) DefaultCourt() (models.Court, error) {
	return models.LookupCourt(c.StateCode, c.CourtCode)
}

// Portal builds the portal client configuration.
func (c Config) Portal() portal.Config {
	return portal.Config{
		BaseURL:           c.PortalURL,
		CallTimeout:       c.CallTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// RetryPolicy builds the network retry policy.
func (c Config) RetryPolicy() retry.Policy {
	p := retry.Default()
	p.MaxAttempts = c.MaxNetworkRetries
	p.Base = c.BackoffBase
	p.Max = c.BackoffMax
	return p
}

// Surreal builds the store connection configuration. Only meaningful
// when SurrealDBURL is set.
func (c Config) Surreal() store.SurrealConfig {
	return store.SurrealConfig{
		URL:       c.SurrealDBURL,
		Namespace: c.SurrealDBNamespace,
		Database:  c.SurrealDBDatabase,
		Username:  c.SurrealDBUser,
		Password:  c.SurrealDBPass,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		fmt.Fprintf(os.Stderr, "ignoring %s=%q: not an integer\n", key, val)
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		fmt.Fprintf(os.Stderr, "ignoring %s=%q: not a number\n", key, val)
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		fmt.Fprintf(os.Stderr, "ignoring %s=%q: not a duration\n", key, val)
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
