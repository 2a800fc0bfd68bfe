package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderlab/orderd/pkg/config"
	"github.com/orderlab/orderd/pkg/logging"
	"github.com/orderlab/orderd/pkg/server"
)

var (
	serveConfigFile  string
	serveHost        string
	servePort        int
	serveMetricsPath string
	serveLogLevel    string
	serveLogFormat   string
	serveMinDelay    time.Duration
	serveMaxDelay    time.Duration
	serveFailureRate float64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the order service",
	Long: `Start the order service.

By default the server listens on port 8080 and serves metrics on /metrics.
Settings come from an optional config file, overridden by flags.`,
	Example: `  # Start with defaults
  orderd serve

  # Start with a config file on a custom port
  orderd serve --config orderd.yaml --port 3000

  # Faster simulation for local experiments
  orderd serve --min-delay 100ms --max-delay 500ms --failure-rate 0.25`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to config file (YAML or JSON)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port")
	serveCmd.Flags().StringVar(&serveMetricsPath, "metrics-path", "", "Metrics endpoint path")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format (text, json)")
	serveCmd.Flags().DurationVar(&serveMinDelay, "min-delay", 0, "Minimum simulated processing delay")
	serveCmd.Flags().DurationVar(&serveMaxDelay, "max-delay", 0, "Maximum simulated processing delay")
	serveCmd.Flags().Float64Var(&serveFailureRate, "failure-rate", 0, "Simulated failure probability (0..1)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigFile)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: logging.ParseFormat(cfg.Logging.Format),
	})

	s, err := server.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return s.Run(ctx)
}

// loadConfig loads the file when given, otherwise the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// applyServeFlags overlays explicitly set flags on the loaded config.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = servePort
	}
	if flags.Changed("metrics-path") {
		cfg.Server.MetricsPath = serveMetricsPath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = serveLogLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = serveLogFormat
	}
	if flags.Changed("min-delay") {
		cfg.Simulation.MinDelay = config.Duration(serveMinDelay)
	}
	if flags.Changed("max-delay") {
		cfg.Simulation.MaxDelay = config.Duration(serveMaxDelay)
	}
	if flags.Changed("failure-rate") {
		cfg.Simulation.FailureRate = serveFailureRate
	}
}
