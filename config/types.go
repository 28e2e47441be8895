package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	SCSB    SCSBConfig    `mapstructure:"scsb"`
	Filters FilterConfig  `mapstructure:"filters"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SCSBConfig holds SCSB API connection details and request limits
type SCSBConfig struct {
	URL         string        `mapstructure:"url"`
	APIKey      string        `mapstructure:"api_key"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// RateLimit is in requests per second; 0 disables pacing
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// FilterConfig maps filter names to expressions usable with --filter
type FilterConfig map[string]string

// MetricsConfig controls the Prometheus textfile written after each command
type MetricsConfig struct {
	// Textfile is the path for node_exporter's textfile collector; empty disables it
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
