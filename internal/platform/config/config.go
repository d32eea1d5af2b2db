// Package config loads engine configuration from the environment.
//
// All thresholds, TTLs, and weights are configurable; defaults match the
// documented engine behavior. A .env file is honored when present for
// local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Analysis deadlines
	TextDeadline    time.Duration `env:"ANALYSIS_TEXT_DEADLINE" envDefault:"3s"`
	DerivedDeadline time.Duration `env:"ANALYSIS_DERIVED_DEADLINE" envDefault:"5s"`
	DefaultLanguage string        `env:"ANALYSIS_DEFAULT_LANGUAGE" envDefault:"en"`
	DefaultDistrict string        `env:"ANALYSIS_DEFAULT_DISTRICT" envDefault:""`

	// Resilience
	RetryMaxAttempts        int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay          time.Duration `env:"RETRY_BASE_DELAY" envDefault:"1s"`
	BreakerFailureThreshold int           `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"5"`
	BreakerOpenTimeout      time.Duration `env:"BREAKER_OPEN_TIMEOUT" envDefault:"60s"`

	// Domain trust
	TrustLookupBaseURL    string        `env:"TRUST_LOOKUP_BASE_URL" envDefault:""`
	TrustLookupTimeout    time.Duration `env:"TRUST_LOOKUP_TIMEOUT" envDefault:"5s"`
	TrustLookupRPS        float64       `env:"TRUST_LOOKUP_RPS" envDefault:"5"`
	TrustRecordTTL        time.Duration `env:"TRUST_RECORD_TTL" envDefault:"24h"`
	TrustMemoryCacheTTL   time.Duration `env:"TRUST_MEMORY_CACHE_TTL" envDefault:"10m"`
	TrustMaxRedirectHops  int           `env:"TRUST_MAX_REDIRECT_HOPS" envDefault:"5"`
	TrustNewDomainDays    int           `env:"TRUST_NEW_DOMAIN_DAYS" envDefault:"30"`
	TrustTyposquatMaxDist int           `env:"TRUST_TYPOSQUAT_MAX_DIST" envDefault:"2"`
	TrustHighValueDomains string        `env:"TRUST_HIGH_VALUE_DOMAINS" envDefault:""`

	// Regional truth
	TruthLookbackDays     int           `env:"TRUTH_LOOKBACK_DAYS" envDefault:"90"`
	TruthTrendWindowDays  int           `env:"TRUTH_TREND_WINDOW_DAYS" envDefault:"7"`
	TruthTrendMinReports  int           `env:"TRUTH_TREND_MIN_REPORTS" envDefault:"3"`
	TruthFallbackCacheTTL time.Duration `env:"TRUTH_FALLBACK_CACHE_TTL" envDefault:"1h"`
	TruthPatternTTL       time.Duration `env:"TRUTH_PATTERN_TTL" envDefault:"4320h"` // 180 days

	// Pattern maintenance worker
	MaintenanceInterval time.Duration `env:"MAINTENANCE_INTERVAL" envDefault:"1h"`
	PatternActiveWindow time.Duration `env:"PATTERN_ACTIVE_WINDOW" envDefault:"720h"` // 30 days

	// Reasoning collaborator
	ReasoningAPIKey  string        `env:"REASONING_API_KEY"`
	ReasoningModel   string        `env:"REASONING_MODEL" envDefault:"gpt-4o-mini"`
	ReasoningTimeout time.Duration `env:"REASONING_TIMEOUT" envDefault:"10s"`
	ReasoningRPS     float64       `env:"REASONING_RPS" envDefault:"5"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	PostgresDSN       string
	MaxConnections    int32
	MinConnections    int32
	MaxConnIdleTime   time.Duration
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration
}

// DatabaseCfg returns the database configuration extracted from Config.
func (c *Config) DatabaseCfg() DatabaseConfig {
	return DatabaseConfig{
		PostgresDSN:       c.PostgresDSN,
		MaxConnections:    c.DBMaxConnections,
		MinConnections:    c.DBMinConnections,
		MaxConnIdleTime:   c.DBMaxConnIdleTime,
		MaxConnLifetime:   c.DBMaxConnLifetime,
		HealthCheckPeriod: c.DBHealthCheckPeriod,
	}
}

// TrustConfig holds domain trust analyzer settings.
type TrustConfig struct {
	LookupBaseURL    string
	LookupTimeout    time.Duration
	LookupRPS        float64
	RecordTTL        time.Duration
	MemoryCacheTTL   time.Duration
	MaxRedirectHops  int
	NewDomainDays    int
	TyposquatMaxDist int
	HighValueDomains string
}

// TrustCfg returns the domain trust analyzer configuration.
func (c *Config) TrustCfg() TrustConfig {
	return TrustConfig{
		LookupBaseURL:    c.TrustLookupBaseURL,
		LookupTimeout:    c.TrustLookupTimeout,
		LookupRPS:        c.TrustLookupRPS,
		RecordTTL:        c.TrustRecordTTL,
		MemoryCacheTTL:   c.TrustMemoryCacheTTL,
		MaxRedirectHops:  c.TrustMaxRedirectHops,
		NewDomainDays:    c.TrustNewDomainDays,
		TyposquatMaxDist: c.TrustTyposquatMaxDist,
		HighValueDomains: c.TrustHighValueDomains,
	}
}

// TruthConfig holds regional truth engine settings.
type TruthConfig struct {
	LookbackDays     int
	TrendWindowDays  int
	TrendMinReports  int
	FallbackCacheTTL time.Duration
	PatternTTL       time.Duration
}

// TruthCfg returns the regional truth engine configuration.
func (c *Config) TruthCfg() TruthConfig {
	return TruthConfig{
		LookbackDays:     c.TruthLookbackDays,
		TrendWindowDays:  c.TruthTrendWindowDays,
		TrendMinReports:  c.TruthTrendMinReports,
		FallbackCacheTTL: c.TruthFallbackCacheTTL,
		PatternTTL:       c.TruthPatternTTL,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
