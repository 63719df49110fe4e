package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the mindcare backend.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mindcare-be",
		Short: "MindCare journaling backend",
		Long: `MindCare backend serves account signup, login and identity lookup
for the journaling app. Configuration comes from the environment or a .env file.`,
		SilenceUsage: true,
		// Without a subcommand the server starts
		RunE: runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
