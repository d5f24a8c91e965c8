package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	LogLevel  string
	LogFormat string
	Locale    string

	// SendMode is "sync" or "async".
	SendMode     string
	EmailBackend string
	ResendAPIKey string
	FromEmail    string
	FromName     string

	ToastBackend       string
	RedisURL           string
	ToastChannelPrefix string
	ToastTimeout       time.Duration

	// CacheBackend is "none" or "redis"; it only affects dashboard stats.
	CacheBackend      string
	DashboardCacheTTL time.Duration

	CORSOrigins string
	LogRequests bool

	SCADOfficeID      string
	SCADOfficeContact string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		Locale:    getEnv("LOCALE", "en"),

		SendMode:     getEnv("SEND_MODE", "sync"),
		EmailBackend: getEnv("EMAIL_BACKEND", "log"),
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
		FromName:     getEnv("FROM_NAME", "SCAD Internship Portal"),

		ToastBackend:       getEnv("TOAST_BACKEND", "log"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		ToastChannelPrefix: getEnv("TOAST_CHANNEL_PREFIX", "toasts"),
		ToastTimeout:       getDurationEnv("TOAST_TIMEOUT", 2*time.Second),

		CacheBackend:      getEnv("CACHE_BACKEND", "none"),
		DashboardCacheTTL: getDurationEnv("DASHBOARD_CACHE_TTL", 30*time.Second),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		LogRequests: getBoolEnv("LOG_REQUESTS", true),

		SCADOfficeID:      getEnv("SCAD_OFFICE_ID", "scad-office"),
		SCADOfficeContact: getEnv("SCAD_OFFICE_CONTACT", "scad@example.com"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) AsyncSend() bool {
	return c.SendMode == "async"
}

// NeedsRedis reports whether any configured backend talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.ToastBackend == "redis" || c.CacheBackend == "redis"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
