package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Payments  PaymentsConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	UploadsDir            string
	CORSOrigins           string
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. The TTL strings are kept
// alongside their parsed values so startup logs can echo what was configured.
type AuthConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessTTLRaw     string
	RefreshTTLRaw    string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	BcryptCost       int
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// PaymentsConfig holds payment provider settings.
type PaymentsConfig struct {
	SecretKey     string
	PublicKey     string
	WebhookSecret string
	BaseURL       string
}

// RateLimitConfig configures the per-client token bucket. Zero RPS disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

const (
	defaultAccessTTL  = "15m"
	defaultRefreshTTL = "7d"
	defaultBcryptCost = 10
)

var validEnvs = map[string]bool{"development": true, "test": true, "production": true}

// Load reads configuration from the process environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse(os.Getenv)
}

// Parse builds a Config from the given lookup function and validates it.
// Missing secrets and malformed values are reported together.
func Parse(getenv func(string) string) (*Config, error) {
	e := env{get: getenv}

	cfg := &Config{
		App: AppConfig{
			Name:                  e.str("APP_NAME", "marketplace-gateway"),
			Env:                   e.str("APP_ENV", e.str("NODE_ENV", "development")),
			Host:                  e.str("APP_HOST", "0.0.0.0"),
			Port:                  e.str("APP_PORT", e.str("PORT", "4000")),
			Version:               e.str("APP_VERSION", "dev"),
			RequestTimeoutSeconds: e.asInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			UploadsDir:            e.str("UPLOADS_DIR", "uploads"),
			CORSOrigins:           e.str("CORS_ORIGINS", "*"),
			BodyLimitBytes:        e.asInt("BODY_LIMIT_BYTES", 1<<20),
		},
		Postgres: PostgresConfig{
			DSN:            e.str("POSTGRES_DSN", e.str("DATABASE_URL", "")),
			MaxConns:       int32(e.asInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(e.asInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  e.asBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  e.str("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(e.asInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(e.asInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     e.str("REDIS_ADDR", ""),
			Password: e.str("REDIS_PASSWORD", ""),
			DB:       e.asInt("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level: e.str("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AccessSecret:     e.str("JWT_ACCESS_SECRET", ""),
			RefreshSecret:    e.str("JWT_REFRESH_SECRET", ""),
			AccessTTLRaw:     e.str("JWT_EXPIRES_IN", defaultAccessTTL),
			RefreshTTLRaw:    e.str("REFRESH_EXPIRES_IN", defaultRefreshTTL),
			BcryptCost:       e.asInt("AUTH_BCRYPT_COST", defaultBcryptCost),
			LoginMaxAttempts: e.asInt("AUTH_LOGIN_MAX_ATTEMPTS", 10),
			LoginWindow:      e.asDuration("AUTH_LOGIN_WINDOW", 15*time.Minute),
		},
		Payments: PaymentsConfig{
			SecretKey: e.str("PAYSTACK_SECRET_KEY", ""),
			PublicKey: e.str("PAYSTACK_PUBLIC_KEY", ""),
			BaseURL:   e.str("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: e.asFloat("RATE_LIMIT_RPS", 20),
			Burst:             e.asInt("RATE_LIMIT_BURST", 40),
		},
	}
	cfg.Payments.WebhookSecret = e.str("PAYSTACK_WEBHOOK_SECRET", cfg.Payments.SecretKey)

	var err error
	if cfg.Auth.AccessTTL, err = ParseTTL(cfg.Auth.AccessTTLRaw); err != nil {
		e.fail("JWT_EXPIRES_IN", err)
	}
	if cfg.Auth.RefreshTTL, err = ParseTTL(cfg.Auth.RefreshTTLRaw); err != nil {
		e.fail("REFRESH_EXPIRES_IN", err)
	}
	cfg.validate(&e)

	if len(e.errs) > 0 {
		return nil, fmt.Errorf("invalid environment: %w", errors.Join(e.errs...))
	}
	return cfg, nil
}

func (c *Config) validate(e *env) {
	if !validEnvs[c.App.Env] {
		e.fail("APP_ENV", fmt.Errorf("must be one of development, test, production; got %q", c.App.Env))
	}
	if c.Auth.AccessSecret == "" {
		e.fail("JWT_ACCESS_SECRET", errors.New("required"))
	}
	if c.Auth.RefreshSecret == "" {
		e.fail("JWT_REFRESH_SECRET", errors.New("required"))
	}
	if c.Auth.AccessSecret != "" && c.Auth.AccessSecret == c.Auth.RefreshSecret {
		e.fail("JWT_REFRESH_SECRET", errors.New("must differ from JWT_ACCESS_SECRET"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		e.fail("AUTH_BCRYPT_COST", fmt.Errorf("must be between 4 and 31; got %d", c.Auth.BcryptCost))
	}
	if _, err := strconv.Atoi(c.App.Port); err != nil {
		e.fail("PORT", errors.New("must be a number"))
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ttlPattern is the single-value grammar JWT lifetimes are written in:
// a number, optional spaces, then an optional unit word. No unit means milliseconds.
var ttlPattern = regexp.MustCompile(`(?i)^(-?(?:\d+)?\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

const (
	day  = 24 * time.Hour
	week = 7 * day
	year = time.Duration(365.25 * float64(day))
)

var ttlUnits = map[string]time.Duration{
	"": time.Millisecond, "ms": time.Millisecond, "msec": time.Millisecond, "msecs": time.Millisecond,
	"millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": day, "day": day, "days": day,
	"w": week, "week": week, "weeks": week,
	"y": year, "yr": year, "yrs": year, "year": year, "years": year,
}

// ParseTTL reads token lifetimes such as "15m", "7d", "2 days", "10 mins" or
// "1y". A bare number is milliseconds. Compound values ("1h30m", "1d12h")
// are also accepted.
func ParseTTL(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > 100 {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if m := ttlPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		unit := ttlUnits[strings.ToLower(m[2])]
		return positive(time.Duration(math.Round(n * float64(unit))))
	}
	d, err := str2duration.ParseDuration(strings.ToLower(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return positive(d)
}

func positive(d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, errors.New("duration must be positive")
	}
	return d, nil
}

type env struct {
	get  func(string) string
	errs []error
}

func (e *env) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
}

func (e *env) str(key, fallback string) string {
	if val := e.get(key); val != "" {
		return val
	}
	return fallback
}

func (e *env) asInt(key string, fallback int) int {
	val := e.get(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		e.fail(key, errors.New("must be an integer"))
		return fallback
	}
	return parsed
}

func (e *env) asFloat(key string, fallback float64) float64 {
	val := e.get(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		e.fail(key, errors.New("must be a number"))
		return fallback
	}
	return parsed
}

func (e *env) asBool(key string, fallback bool) bool {
	val := e.get(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		e.fail(key, errors.New("must be a boolean"))
		return fallback
	}
	return parsed
}

func (e *env) asDuration(key string, fallback time.Duration) time.Duration {
	val := e.get(key)
	if val == "" {
		return fallback
	}
	parsed, err := ParseTTL(val)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return parsed
}
