// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetTimezone() *time.Location
}

// EmailConfig provides settings for outbound mail.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetSupportEmail() string
}

// ScannerConfig provides settings for the periodic scanners.
type ScannerConfig interface {
	GetTimezone() *time.Location
	GetFollowupWindowStart() int
	GetFollowupWindowEnd() int
	GetInactivityUnassignedAfter() time.Duration
	GetInactivityAssignedAfter() time.Duration
}

// QueryConfig provides settings for the lead query engine.
type QueryConfig interface {
	GetScopeOverridesFile() string
	GetUntouchedThreshold() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	HTTPAddr                  string
	DatabaseURL               string
	RedisURL                  string
	AsynqQueueName            string
	AsynqConcurrency          int
	JWTAccessSecret           string
	CORSAllowAll              bool
	CORSOrigins               []string
	EmailEnabled              bool
	SMTPHost                  string
	SMTPPort                  int
	SMTPUsername              string
	SMTPPassword              string
	EmailFromName             string
	EmailFromAddress          string
	SupportEmail              string
	Timezone                  *time.Location
	FollowupWindowStart       int
	FollowupWindowEnd         int
	InactivityUnassignedAfter time.Duration
	InactivityAssignedAfter   time.Duration
	UntouchedThreshold        time.Duration
	ScopeOverridesFile        string
	NotificationTTL           time.Duration
}

// Load reads configuration from the environment, applying defaults suitable
// for local development. A .env file is honored when present.
func Load() (*Config, error) {
	// Ignore error: .env is optional in production deployments.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		RedisURL:                  getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AsynqQueueName:            getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:          getIntEnv("ASYNQ_CONCURRENCY", 10),
		JWTAccessSecret:           os.Getenv("JWT_ACCESS_SECRET"),
		CORSAllowAll:              getBoolEnv("CORS_ALLOW_ALL", true),
		CORSOrigins:               splitEnv("CORS_ORIGINS"),
		EmailEnabled:              getBoolEnv("EMAIL_ENABLED", false),
		SMTPHost:                  os.Getenv("SMTP_HOST"),
		SMTPPort:                  getIntEnv("SMTP_PORT", 587),
		SMTPUsername:              os.Getenv("SMTP_USERNAME"),
		SMTPPassword:              os.Getenv("SMTP_PASSWORD"),
		EmailFromName:             getEnv("EMAIL_FROM_NAME", "LeadTrack"),
		EmailFromAddress:          getEnv("EMAIL_FROM_ADDRESS", "noreply@leadtrack.local"),
		SupportEmail:              getEnv("SUPPORT_EMAIL", "support@leadtrack.local"),
		FollowupWindowStart:       getIntEnv("FOLLOWUP_WINDOW_START_HOUR", 9),
		FollowupWindowEnd:         getIntEnv("FOLLOWUP_WINDOW_END_HOUR", 18),
		InactivityUnassignedAfter: time.Duration(getIntEnv("INACTIVITY_UNASSIGNED_DAYS", 4)) * 24 * time.Hour,
		InactivityAssignedAfter:   time.Duration(getIntEnv("INACTIVITY_ASSIGNED_DAYS", 2)) * 24 * time.Hour,
		UntouchedThreshold:        time.Duration(getIntEnv("UNTOUCHED_THRESHOLD_SECONDS", 10)) * time.Second,
		ScopeOverridesFile:        getEnv("SCOPE_OVERRIDES_FILE", ""),
		NotificationTTL:           time.Duration(getIntEnv("NOTIFICATION_TTL_DAYS", 30)) * 24 * time.Hour,
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Timezone = loc

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.FollowupWindowStart < 0 || cfg.FollowupWindowEnd > 24 || cfg.FollowupWindowStart >= cfg.FollowupWindowEnd {
		return nil, fmt.Errorf("invalid followup window [%d, %d)", cfg.FollowupWindowStart, cfg.FollowupWindowEnd)
	}

	return cfg, nil
}

// Interface implementations

func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }
func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool      { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }
func (c *Config) GetEmailEnabled() bool      { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string   { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string {
	return c.EmailFromAddress
}
func (c *Config) GetSupportEmail() string       { return c.SupportEmail }
func (c *Config) GetTimezone() *time.Location   { return c.Timezone }
func (c *Config) GetFollowupWindowStart() int   { return c.FollowupWindowStart }
func (c *Config) GetFollowupWindowEnd() int     { return c.FollowupWindowEnd }
func (c *Config) GetScopeOverridesFile() string { return c.ScopeOverridesFile }
func (c *Config) GetInactivityUnassignedAfter() time.Duration {
	return c.InactivityUnassignedAfter
}
func (c *Config) GetInactivityAssignedAfter() time.Duration {
	return c.InactivityAssignedAfter
}
func (c *Config) GetUntouchedThreshold() time.Duration {
	return c.UntouchedThreshold
}

// Helpers

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
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

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
