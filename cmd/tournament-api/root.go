package main

import (
	"github.com/spf13/cobra"
)

const serviceName = "tournament-api"

// NewRootCmd creates the root command for the tournament API CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Tournament API server and account tooling",
		Long: `Tournament API serves the authentication endpoints of the tournament
platform. Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCreateAdminCmd())

	return cmd
}
