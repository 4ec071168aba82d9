// Package commands defines all Cobra CLI commands for the sidekick binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/avolut/sidekick-go/internal/audit"
	"github.com/avolut/sidekick-go/internal/config"
	"github.com/avolut/sidekick-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sidekick",
		Short: "Sidekick — a multi-tool AI assistant with document question answering",
		Long: `Sidekick is a local-first AI assistant. It answers questions directly,
looks up live data through tools (weather, time, web search, image
generation), and answers questions about uploaded PDF documents.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.sidekick/config.yaml).
See 'sidekick --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.sidekick/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewQnACmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
