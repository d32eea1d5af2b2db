package config

import (
	"os"
	"testing"
	"time"
)

const (
	testEnvPostgresDSN = "POSTGRES_DSN"
	testPostgresDSN    = "postgres://localhost/test"
)

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvPostgresDSN)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv = %q, want local", cfg.AppEnv)
	}

	if cfg.TextDeadline != 3*time.Second {
		t.Errorf("TextDeadline = %v, want 3s", cfg.TextDeadline)
	}

	if cfg.DerivedDeadline != 5*time.Second {
		t.Errorf("DerivedDeadline = %v, want 5s", cfg.DerivedDeadline)
	}

	if cfg.BreakerFailureThreshold != 5 {
		t.Errorf("BreakerFailureThreshold = %d, want 5", cfg.BreakerFailureThreshold)
	}

	if cfg.RetryBaseDelay != time.Second {
		t.Errorf("RetryBaseDelay = %v, want 1s", cfg.RetryBaseDelay)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv("TRUST_MAX_REDIRECT_HOPS", "8")
	t.Setenv("TRUTH_LOOKBACK_DAYS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TrustMaxRedirectHops != 8 {
		t.Errorf("TrustMaxRedirectHops = %d, want 8", cfg.TrustMaxRedirectHops)
	}

	if cfg.TruthLookbackDays != 30 {
		t.Errorf("TruthLookbackDays = %d, want 30", cfg.TruthLookbackDays)
	}
}
