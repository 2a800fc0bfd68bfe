// Package cli implements the orderd command-line interface.
package cli

import "github.com/spf13/cobra"

// BuildInfo carries the build-time version variables set via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var buildInfo = BuildInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown"}

var rootCmd = &cobra.Command{
	Use:   "orderd",
	Short: "Simulated order service with Prometheus metrics",
	Long: `orderd is a small HTTP service that simulates order processing and
exports request-latency metrics in the Prometheus text format.

Each POST /order takes a few seconds of simulated processing time and may
fail with a configurable probability; every request is recorded in a
latency histogram served on the metrics endpoint for scraping.`,
	SilenceUsage: true,
}

// Execute runs the CLI with the given build information.
func Execute(info BuildInfo) error {
	buildInfo = info
	return rootCmd.Execute()
}
