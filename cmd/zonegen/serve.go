package main

import (
	"github.com/spf13/cobra"

	"github.com/TFMV/zonegen/api"
)

// newServeCommand creates a new serve command.
func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dataset metadata over HTTP",
		Long: `The serve command starts an HTTP service exposing the zone output
schema and partition plans, for loaders that need them without running
a generation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.NewServer().Start(port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "3000", "Port to listen on")

	return cmd
}
