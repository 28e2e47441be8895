package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SCSB_SCSB_RATE_LIMIT.
// The connection settings also answer to the shorter names below.
const EnvPrefix = "SCSB"

// Short environment names for the most common settings
var envAliases = map[string]string{
	"scsb.url":         "SCSB_API_URL",
	"scsb.api_key":     "SCSB_API_KEY",
	"scsb.concurrency": "SCSB_CONCURRENCY",
	"scsb.timeout":     "SCSB_TIMEOUT",
}

// Load loads the configuration from file and the environment. A missing
// config file is not an error when no explicit path is given, so the client
// can run from environment variables alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".scsb"))
		}

		v.AddConfigPath("/etc/scsb/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.SCSB.URL = strings.TrimRight(cfg.SCSB.URL, "/")

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// SCSB defaults
	v.SetDefault("scsb.url", "")
	v.SetDefault("scsb.api_key", "")
	v.SetDefault("scsb.concurrency", 10)
	v.SetDefault("scsb.timeout", "30s")
	v.SetDefault("scsb.rate_limit", 0)
	v.SetDefault("scsb.rate_burst", 1)

	v.SetDefault("metrics.textfile", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		if err := v.BindEnv(key, alias, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return fmt.Errorf("binding %s: %w", alias, err)
		}
	}
	return nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.SCSB.URL == "" {
		return fmt.Errorf("scsb.url is required (or set SCSB_API_URL)")
	}

	if cfg.SCSB.APIKey == "" || cfg.SCSB.APIKey == "your-api-key-here" {
		return fmt.Errorf("scsb.api_key must be set to a valid API key (or set SCSB_API_KEY)")
	}

	if cfg.SCSB.Concurrency < 1 {
		return fmt.Errorf("invalid scsb.concurrency: %d (must be at least 1)", cfg.SCSB.Concurrency)
	}

	if cfg.SCSB.Timeout <= 0 {
		return fmt.Errorf("invalid scsb.timeout: %s (must be positive)", cfg.SCSB.Timeout)
	}

	if cfg.SCSB.RateLimit < 0 {
		return fmt.Errorf("invalid scsb.rate_limit: %g (must not be negative)", cfg.SCSB.RateLimit)
	}

	if cfg.SCSB.RateBurst < 0 {
		return fmt.Errorf("invalid scsb.rate_burst: %d (must not be negative)", cfg.SCSB.RateBurst)
	}

	for name, expression := range cfg.Filters {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter %q has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
