package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:           "form-service",
		Short:         "Dynamic form engine: definitions, responses, analytics and export",
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", "", "port to listen on (overrides PORT)")
	cmd.AddCommand(NewServeCmd(&port))
	cmd.AddCommand(NewMigrateCmd())
	return cmd
}
