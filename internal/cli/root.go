package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "quizdesk",
		Short: "Single-station quiz platform: accounts, catalog, attempts and reports",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewRegisterCmd(&configPath))
	cmd.AddCommand(NewUsersCmd(&configPath))
	cmd.AddCommand(NewListCmd(&configPath))
	cmd.AddCommand(NewImportCmd(&configPath))
	cmd.AddCommand(NewHistoryCmd(&configPath))
	cmd.AddCommand(NewReportCmd(&configPath))
	return cmd
}
