// Package config loads dnskitchen settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
)

// Config holds the process configuration.
type Config struct {
	DBDriver    string `validate:"oneof=postgres sqlite"`
	DatabaseURL string `validate:"required"`

	HTTPAddr    string `validate:"required"`
	TLSCertFile string `validate:"required_with=TLSKeyFile"`
	TLSKeyFile  string `validate:"required_with=TLSCertFile"`
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64 `validate:"gte=0"`
	RateBurst int     `validate:"gte=0"`

	Nameservers []string `validate:"required,min=1,dive,fqdn"`

	ResolverAddr         string        `validate:"omitempty,hostname_port"`
	ReconcileInterval    time.Duration `validate:"gt=0"`
	ReconcileConcurrency int           `validate:"gte=1,lte=256"`
	LookupTimeout        time.Duration `validate:"gt=0"`
	LookupRate           float64       `validate:"gte=0"`

	RedisAddr     string        `validate:"omitempty,hostname_port"`
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	LockTTL       time.Duration `validate:"gt=0"`

	JWTSecret   string `validate:"required,min=10"`
	JWTIssuer   string
	JWTAudience string

	APIKeyCacheTTL time.Duration `validate:"gte=0"`

	LogLevel      string `validate:"oneof=debug info warn error"`
	LogFile       string
	LogMaxSizeMB  int `validate:"gte=1"`
	LogMaxBackups int `validate:"gte=0"`
	LogMaxAgeDays int `validate:"gte=0"`
	Debug         bool
}

// TLSEnabled reports whether the API should serve HTTPS.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// NameserverSet returns the configured operator nameservers.
func (c Config) NameserverSet() domain.NameserverSet {
	return domain.NewNameserverSet(c.Nameservers...)
}

// Load reads .env (or .env.$APP_ENV when set) without overriding variables
// already present, then the environment, and validates the result.
func Load() (Config, error) {
	files := []string{".env"}
	if env := os.Getenv("APP_ENV"); env != "" {
		files = []string{".env." + env, ".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, which follows os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	e := &env{lookup: lookup}
	cfg := Config{
		DBDriver:    strings.ToLower(e.str("DB_DRIVER", "postgres")),
		DatabaseURL: e.str("DATABASE_URL", ""),

		HTTPAddr:    e.str("HTTP_ADDR", ":8080"),
		TLSCertFile: e.str("TLS_CERT_FILE", ""),
		TLSKeyFile:  e.str("TLS_KEY_FILE", ""),
		RateLimit:   e.float("RATE_LIMIT", 0),
		RateBurst:   e.int("RATE_BURST", 20),

		Nameservers: e.list("NAMESERVERS"),

		ResolverAddr:         e.str("RESOLVER_ADDR", ""),
		ReconcileInterval:    e.duration("RECONCILE_INTERVAL", 5*time.Minute),
		ReconcileConcurrency: e.int("RECONCILE_CONCURRENCY", 8),
		LookupTimeout:        e.duration("LOOKUP_TIMEOUT", 3*time.Second),
		LookupRate:           e.float("LOOKUP_RATE", 20),

		RedisAddr:     e.str("REDIS_ADDR", ""),
		RedisPassword: e.str("REDIS_PASSWORD", ""),
		RedisDB:       e.int("REDIS_DB", 0),
		LockTTL:       e.duration("LOCK_TTL", 10*time.Second),

		JWTSecret:   e.str("JWT_SECRET", ""),
		JWTIssuer:   e.str("JWT_ISSUER", ""),
		JWTAudience: e.str("JWT_AUDIENCE", ""),

		APIKeyCacheTTL: e.duration("API_KEY_CACHE_TTL", time.Minute),

		LogLevel:      strings.ToLower(e.str("LOG_LEVEL", "info")),
		LogFile:       e.str("LOG_FILE", ""),
		LogMaxSizeMB:  e.int("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: e.int("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: e.int("LOG_MAX_AGE_DAYS", 28),
		Debug:         e.bool("DEBUG", false),
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if cfg.DBDriver == "sqlite" && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "dnskitchen.db"
	}
	if len(e.errs) > 0 {
		return Config{}, errors.Join(e.errs...)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// env collects parse errors instead of silently falling back.
type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (e *env) int(key string, fallback int) int {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (e *env) float(key string, fallback float64) float64 {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

// bool accepts true/1 and false/0 like the DEBUG flag always did.
func (e *env) bool(key string, fallback bool) bool {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func (e *env) list(key string) []string {
	v, ok := e.lookup(key)
	if !ok {
		return nil
	}
	return []string(domain.NewNameserverSet(v))
}
