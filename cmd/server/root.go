package main

import (
	"github.com/spf13/cobra"

	"github.com/glowupgrow/terrarium-api/internal/config"
	"github.com/glowupgrow/terrarium-api/internal/logging"
)

const serviceName = "terrarium-api"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command. Run without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terrarium-api",
		Short: "GlowUpGrow terrarium backend",
		Long: `Serves user accounts, session cookies and live terrariums over HTTP,
with websocket push of terrarium updates.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}

// loadConfig reads the config file and flags, then installs the default
// logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(serviceName, version, cfg.LogFormat)
	return cfg, nil
}
