package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
	"github.com/eugenenazirov/pipe-cutter/internal/planner"
	"github.com/eugenenazirov/pipe-cutter/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > YAML config > Defaults
type Config struct {
	Port                 string
	StockLength          float64
	Policy               cutting.Policy
	MaxCuts              int
	PlanTTL              time.Duration
	MetricsEnabled       bool
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure. Pointer fields
// distinguish "absent" from an explicit zero value.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	StockLength          *float64      `yaml:"stock_length"`
	Policy               string        `yaml:"policy"`
	MaxCuts              *int          `yaml:"max_cuts"`
	PlanTTL              string        `yaml:"plan_ttl"`
	MetricsEnabled       *bool         `yaml:"metrics_enabled"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	StockLength    *float64
	Policy         *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		StockLength:          storage.DefaultStockLength,
		Policy:               cutting.DefaultPolicy,
		MaxCuts:              planner.DefaultMaxCuts,
		PlanTTL:              storage.DefaultPlanTTL,
		MetricsEnabled:       true,
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.StockLength != nil {
		cfg.StockLength = *yamlCfg.StockLength
	}
	if yamlCfg.Policy != "" {
		policy, err := cutting.ParsePolicy(yamlCfg.Policy)
		if err != nil {
			return err
		}
		cfg.Policy = policy
	}
	if yamlCfg.MaxCuts != nil {
		cfg.MaxCuts = *yamlCfg.MaxCuts
	}
	if yamlCfg.MetricsEnabled != nil {
		cfg.MetricsEnabled = *yamlCfg.MetricsEnabled
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	durations := []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{yamlCfg.PlanTTL, &cfg.PlanTTL, "plan_ttl"},
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	return nil
}

func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if raw := strings.TrimSpace(os.Getenv("STOCK_LENGTH")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("STOCK_LENGTH: invalid number %q", raw)
		}
		cfg.StockLength = value
	}

	if raw := strings.TrimSpace(os.Getenv("PACKING_POLICY")); raw != "" {
		policy, err := cutting.ParsePolicy(raw)
		if err != nil {
			return fmt.Errorf("PACKING_POLICY: %w", err)
		}
		cfg.Policy = policy
	}

	if raw := strings.TrimSpace(os.Getenv("MAX_CUTS")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.MaxCuts = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("PLAN_TTL")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.PlanTTL = d
		}
	}

	if raw := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.MetricsEnabled = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
	return nil
}

func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.StockLength != nil {
		cfg.StockLength = *overrides.StockLength
	}

	if overrides.Policy != nil && *overrides.Policy != "" {
		policy, err := cutting.ParsePolicy(*overrides.Policy)
		if err != nil {
			return fmt.Errorf("parse policy: %w", err)
		}
		cfg.Policy = policy
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

func validateConfig(cfg Config) error {
	if err := cutting.ValidateStockLength(cfg.StockLength); err != nil {
		return fmt.Errorf("stock length %g: %w", cfg.StockLength, err)
	}
	if !cfg.Policy.Valid() {
		return fmt.Errorf("policy %q: %w", cfg.Policy, cutting.ErrUnknownPolicy)
	}
	if cfg.MaxCuts <= 0 {
		return fmt.Errorf("MAX_CUTS must be > 0")
	}
	if cfg.PlanTTL <= 0 {
		return fmt.Errorf("PLAN_TTL must be > 0")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}
