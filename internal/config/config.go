package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the recfeed configuration.
type Config struct {
	HTTP           HTTPConfig           `yaml:"http"`
	Database       DatabaseConfig       `yaml:"database"`
	Auth           AuthConfig           `yaml:"auth"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	Upstream       UpstreamConfig       `yaml:"upstream"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"` // default: determined by env
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver" validate:"oneof=redis"`
	Addrs            []string `yaml:"addrs" validate:"min=1,dive,hostname_port"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RecommendationConfig bounds the feed and its maintenance.
type RecommendationConfig struct {
	MinItems          int `yaml:"min_items" validate:"min=1"`
	MaxItems          int `yaml:"max_items" validate:"gtefield=MinItems"`
	PerPrimary        int `yaml:"per_primary_interest" validate:"min=1"`
	PoolSize          int `yaml:"pool_size" validate:"min=1"`
	CandidateWindow   int `yaml:"candidate_window" validate:"gtefield=PoolSize"`
	RetentionDays     int `yaml:"retention_days" validate:"min=1"`
	CleanupTimeoutSec int `yaml:"cleanup_timeout_sec"`
	RefreshPerMinute  int `yaml:"refresh_per_minute" validate:"min=0"` // 0 = unlimited
}

// Retention returns the unread record retention period.
func (c RecommendationConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// CleanupTimeout returns the background cleanup deadline.
func (c RecommendationConfig) CleanupTimeout() time.Duration {
	return time.Duration(c.CleanupTimeoutSec) * time.Second
}

// UpstreamConfig holds content pool protection settings.
type UpstreamConfig struct {
	BreakerMaxFailures    uint32 `yaml:"breaker_max_failures" validate:"min=1"`
	BreakerOpenTimeoutSec int    `yaml:"breaker_open_timeout_sec" validate:"min=1"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadDotEnv loads variables from .env files that exist. Variables already
// set in the process environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	r := &c.Recommendation
	if r.MinItems <= 0 {
		r.MinItems = 50
	}
	if r.MaxItems <= 0 {
		r.MaxItems = 200
	}
	if r.PerPrimary <= 0 {
		r.PerPrimary = 8
	}
	if r.PoolSize <= 0 {
		r.PoolSize = 1000
	}
	if r.CandidateWindow <= 0 {
		r.CandidateWindow = 2000
	}
	if r.RetentionDays <= 0 {
		r.RetentionDays = 30
	}
	if r.CleanupTimeoutSec <= 0 {
		r.CleanupTimeoutSec = 30
	}

	if c.Upstream.BreakerMaxFailures == 0 {
		c.Upstream.BreakerMaxFailures = 5
	}
	if c.Upstream.BreakerOpenTimeoutSec <= 0 {
		c.Upstream.BreakerOpenTimeoutSec = 30
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	return nil
}

// fieldError renders a validation failure with the yaml path of the field.
func fieldError(fe validator.FieldError) error {
	path := yamlPath(fe.StructNamespace())
	switch fe.Tag() {
	case "gtefield":
		return fmt.Errorf("%s must be >= %s, got %v", path, yamlName(fe.Param()), fe.Value())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Errorf("%s must be host:port, got %q", path, fe.Value())
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Errorf("%s is required", path)
		}
		return fmt.Errorf("%s must be >= %s, got %v", path, fe.Param(), fe.Value())
	case "max":
		return fmt.Errorf("%s must be <= %s, got %v", path, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation", path, fe.Tag())
	}
}

var yamlNames = map[string]string{
	"HTTP": "http", "Port": "port",
	"Database": "database", "Driver": "driver", "Addrs": "addrs",
	"Recommendation": "recommendation", "MinItems": "min_items", "MaxItems": "max_items",
	"PerPrimary": "per_primary_interest", "PoolSize": "pool_size", "CandidateWindow": "candidate_window",
	"RetentionDays": "retention_days", "RefreshPerMinute": "refresh_per_minute",
	"Upstream": "upstream", "BreakerMaxFailures": "breaker_max_failures",
	"BreakerOpenTimeoutSec": "breaker_open_timeout_sec",
	"Logging": "logging", "Level": "level",
}

// yamlPath turns "Config.Recommendation.MaxItems" into "recommendation.max_items".
func yamlPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = yamlName(p)
	}
	return strings.Join(parts, ".")
}

func yamlName(field string) string {
	base, idx, _ := strings.Cut(field, "[")
	name, ok := yamlNames[base]
	if !ok {
		name = strings.ToLower(base)
	}
	if idx != "" {
		return name + "[" + idx
	}
	return name
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
