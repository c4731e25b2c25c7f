package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable through CACHE_STORE and AUDIT_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreNone     = "none"
)

// DefaultShellAssets is the app shell installed into every cache version.
var DefaultShellAssets = []string{
	"/",
	"/index.html",
	"/styles.css",
	"/app.js",
	"/offline_helpers.js",
	"/manifest.json",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Cache    CacheConfig
	Triage   TriageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Audit    AuditConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Environment    string
	LogLevel       string
	AllowedOrigins []string
}

// BackendConfig describes the remote diagnostic API the edge fronts.
type BackendConfig struct {
	URL             string
	Timeout         time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
}

// CacheConfig holds the offline cache settings
type CacheConfig struct {
	Store          string
	Prefix         string
	Version        string
	ShellAssets    []string
	APIPrefix      string
	UpdateInterval time.Duration
}

// TriageConfig holds the diagnose endpoint settings
type TriageConfig struct {
	DefaultLanguage   string
	DiagnoseTimeout   time.Duration
	DiagnoseRateLimit float64
	DiagnoseRateBurst int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuditConfig selects where offline determinations are recorded
type AuditConfig struct {
	Store string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Environment:    getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Backend: BackendConfig{
			URL:             strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
			Timeout:         getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
			BreakerFailures: getEnvAsInt("BACKEND_BREAKER_FAILURES", 5),
			BreakerCooldown: getEnvAsDuration("BACKEND_BREAKER_COOLDOWN", 30*time.Second),
		},
		Cache: CacheConfig{
			Store:          getEnv("CACHE_STORE", StoreMemory),
			Prefix:         getEnv("CACHE_PREFIX", "medassist"),
			Version:        getEnv("CACHE_VERSION", "v1"),
			ShellAssets:    getEnvAsList("SHELL_ASSETS", DefaultShellAssets),
			APIPrefix:      getEnv("API_PREFIX", "/api/"),
			UpdateInterval: getEnvAsDuration("CACHE_UPDATE_INTERVAL", 60*time.Second),
		},
		Triage: TriageConfig{
			DefaultLanguage:   getEnv("TRIAGE_DEFAULT_LANGUAGE", "en"),
			DiagnoseTimeout:   getEnvAsDuration("DIAGNOSE_TIMEOUT", 8*time.Second),
			DiagnoseRateLimit: getEnvAsFloat("DIAGNOSE_RATE_LIMIT", 5),
			DiagnoseRateBurst: getEnvAsInt("DIAGNOSE_RATE_BURST", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "medassist"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Audit: AuditConfig{
			Store: getEnv("AUDIT_STORE", StoreMemory),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "medassist-edge"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("invalid CACHE_STORE %q: want %s or %s", c.Cache.Store, StoreMemory, StoreRedis)
	}
	switch c.Audit.Store {
	case StoreMemory, StorePostgres, StoreNone:
	default:
		return fmt.Errorf("invalid AUDIT_STORE %q: want %s, %s or %s", c.Audit.Store, StoreMemory, StorePostgres, StoreNone)
	}
	if c.Cache.Version == "" {
		return fmt.Errorf("CACHE_VERSION must not be empty")
	}
	if !strings.HasPrefix(c.Cache.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with /: %q", c.Cache.APIPrefix)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
