// Package cli defines the callrouter command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// initialized by the root pre-run
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callrouter",
		Short: "Voice gateway for the phone line",
		Long:  "callrouter answers the company phone lines, runs each call through the conversational engine, files work orders, and calls customers back when a call drops.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
