// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Convert  ConvertConfig
	Rate     RateLimitConfig
	History  HistoryConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envDefault:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s"`

	// TrustedProxies lists CIDRs or addresses whose X-Real-IP and
	// X-Forwarded-For headers are honoured (default: none)
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES" envSeparator:","`
}

// DatabaseConfig holds the optional conversion history database.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty keeps history in memory.
	// DB_URL is accepted when DATABASE_URL is unset.
	URL string `env:"DATABASE_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" envDefault:"4"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// UploadConfig holds upload and session settings.
type UploadConfig struct {
	// MaxFileSize is the maximum request body size in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"52428800"`

	// MaxFiles is the maximum number of files per upload (default: 20)
	MaxFiles int `env:"UPLOAD_MAX_FILES" envDefault:"20"`

	// SessionTTL is how long an uploaded file is kept (default: 30m)
	SessionTTL time.Duration `env:"UPLOAD_SESSION_TTL" envDefault:"30m"`

	// PreviewRows is the number of rows shown in previews (default: 5)
	PreviewRows int `env:"UPLOAD_PREVIEW_ROWS" envDefault:"5"`
}

// ConvertConfig holds conversion concurrency settings.
type ConvertConfig struct {
	// MaxConcurrent is the maximum number of parallel conversions (default: 4)
	MaxConcurrent int `env:"CONVERT_MAX_CONCURRENT" envDefault:"4"`

	// MaxWaitTime is how long to wait for a conversion slot (default: 30s)
	MaxWaitTime time.Duration `env:"CONVERT_MAX_WAIT_TIME" envDefault:"30s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"120"`

	// Burst is the number of requests allowed at once (default: 20)
	Burst int `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// HistoryConfig holds in-memory history settings.
type HistoryConfig struct {
	// MemorySize is the number of records kept without a database (default: 200)
	MemorySize int `env:"HISTORY_MEMORY_SIZE" envDefault:"200"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics (default: true)
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
