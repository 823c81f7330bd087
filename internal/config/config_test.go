package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }, "http.port must be >= 1"},
		{"port too high", func(c *Config) { c.HTTP.Port = 70000 }, "http.port must be <= 65535"},
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs is required"},
		{"bad addr", func(c *Config) { c.Database.Addrs = []string{"localhost"} }, "database.addrs[0] must be host:port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "valkey" }, "database.driver must be one of [redis]"},
		{"max below min", func(c *Config) { c.Recommendation.MaxItems = 10 },
			"recommendation.max_items must be >= min_items"},
		{"window below pool", func(c *Config) { c.Recommendation.CandidateWindow = 10 },
			"recommendation.candidate_window must be >= pool_size"},
		{"negative rate", func(c *Config) { c.Recommendation.RefreshPerMinute = -1 },
			"recommendation.refresh_per_minute must be >= 0"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}

	r := cfg.Recommendation
	if r.MinItems != 50 || r.MaxItems != 200 || r.PerPrimary != 8 {
		t.Errorf("unexpected selection bounds: %+v", r)
	}
	if r.PoolSize != 1000 || r.CandidateWindow != 2000 {
		t.Errorf("unexpected pool sizes: %+v", r)
	}
	if r.Retention() != 30*24*time.Hour {
		t.Errorf("expected 30 day retention, got %v", r.Retention())
	}
	if r.CleanupTimeout() != 30*time.Second {
		t.Errorf("expected 30s cleanup timeout, got %v", r.CleanupTimeout())
	}
	if r.RefreshPerMinute != 0 {
		t.Errorf("expected unlimited refresh, got %d", r.RefreshPerMinute)
	}
	if cfg.Upstream.BreakerMaxFailures != 5 || cfg.Upstream.BreakerOpenTimeoutSec != 30 {
		t.Errorf("unexpected upstream defaults: %+v", cfg.Upstream)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:           HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:       DatabaseConfig{ReadinessTimeout: 15},
		Recommendation: RecommendationConfig{MinItems: 20, MaxItems: 80, RetentionDays: 7, RefreshPerMinute: 6},
		Upstream:       UpstreamConfig{BreakerMaxFailures: 2},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Recommendation.MinItems != 20 || cfg.Recommendation.MaxItems != 80 {
		t.Errorf("selection bounds overridden: %+v", cfg.Recommendation)
	}
	if cfg.Recommendation.Retention() != 7*24*time.Hour {
		t.Errorf("expected 7 day retention, got %v", cfg.Recommendation.Retention())
	}
	if cfg.Recommendation.RefreshPerMinute != 6 {
		t.Errorf("expected RefreshPerMinute=6, got %d", cfg.Recommendation.RefreshPerMinute)
	}
	if cfg.Upstream.BreakerMaxFailures != 2 {
		t.Errorf("expected BreakerMaxFailures=2, got %d", cfg.Upstream.BreakerMaxFailures)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RECFEED_TEST_HOST", "redis.internal")

	in := []byte("a: ${RECFEED_TEST_HOST}\nb: ${RECFEED_TEST_UNSET:-fallback}\nc: ${RECFEED_TEST_UNSET}\n")
	got := string(expandEnvVars(in))
	want := "a: redis.internal\nb: fallback\nc: \n"
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad_FromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yml := `
http:
  port: ${RECFEED_TEST_PORT:-9090}
database:
  addrs: ["localhost:6379"]
recommendation:
  refresh_per_minute: 4
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected Port=9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Recommendation.RefreshPerMinute != 4 || cfg.Recommendation.MinItems != 50 {
		t.Errorf("unexpected recommendation config: %+v", cfg.Recommendation)
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RECFEED_DOTENV_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("RECFEED_DOTENV_TEST") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("RECFEED_DOTENV_TEST"); got != "from-file" {
		t.Errorf("RECFEED_DOTENV_TEST = %q, want from-file", got)
	}
}
