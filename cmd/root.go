package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/scsb/config"
	"github.com/s0up4200/scsb/scsb"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *scsb.Client
	registry *prometheus.Registry

	// Command flags
	filterExpr string
	compact    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scsb",
	Short: "A command line client for the SCSB shared collection API",
	Long: `scsb talks to the ReCAP Shared Collection Service Bus (SCSB).

It can search the shared collection, check item availability and submit
item requests. Connection details come from a config file or from the
SCSB_API_URL and SCSB_API_KEY environment variables.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: writeMetrics,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a filter from config")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "print JSON without indentation")
}

// initializeApp initializes the configuration and the SCSB client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	registry = prometheus.NewRegistry()
	client = scsb.NewClient(logger, clientOptions(cfg.SCSB, registry)...)

	logger.Debug().
		Str("url", cfg.SCSB.URL).
		Int("concurrency", cfg.SCSB.Concurrency).
		Dur("timeout", cfg.SCSB.Timeout).
		Float64("rate_limit", cfg.SCSB.RateLimit).
		Msg("SCSB client configured")

	return nil
}

// clientOptions translates the SCSB config section into client options
func clientOptions(c config.SCSBConfig, reg prometheus.Registerer) []scsb.Option {
	return []scsb.Option{
		scsb.WithConfig(scsb.Config{
			BaseURL:          c.URL,
			APIKey:           c.APIKey,
			ConcurrencyLimit: c.Concurrency,
		}),
		scsb.WithTimeout(c.Timeout),
		scsb.WithRateLimit(c.RateLimit, c.RateBurst),
		scsb.WithRegisterer(reg),
	}
}

// writeMetrics dumps the client metrics for node_exporter's textfile collector
func writeMetrics(cmd *cobra.Command, args []string) error {
	if cfg == nil || registry == nil || cfg.Metrics.Textfile == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	logger.Debug().Str("path", cfg.Metrics.Textfile).Msg("Metrics written")
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, coloured only on a terminal
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
