package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	serve := newServeCommand()

	root := &cobra.Command{
		Use:   "villarch",
		Short: "Serve HTTP requests from handler units discovered on disk",
		Long: `villarch maps /<resource>/<action> onto <dir>/<resource>/<action>.so and
invokes the handler unit found there. Configuration comes from the environment
(VILLARCH_* and PORT), optionally read from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// No subcommand means serve.
		RunE: serve.RunE,
	}

	root.AddCommand(serve, newRoutesCommand())
	return root
}
