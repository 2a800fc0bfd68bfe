package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orderlab/orderd/pkg/config"
)

var validateConfigFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file without starting the server",
	Example: `  orderd validate --config orderd.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(validateConfigFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"%s is valid (listen %s, metrics on %s)\n",
			validateConfigFile, cfg.Server.Addr(), cfg.Server.MetricsPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateConfigFile, "config", "c", "", "Path to config file (YAML or JSON)")
	_ = validateCmd.MarkFlagRequired("config")
}
