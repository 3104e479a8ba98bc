package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/deppfellow/villarch/internal/config"
	"github.com/deppfellow/villarch/internal/dispatch"
	"github.com/deppfellow/villarch/internal/resolver"
)

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes served from the handler directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			return printRoutes(cmd.OutOrStdout(), afero.NewOsFs(), cfg.Handlers)
		},
	}
}

func printRoutes(w io.Writer, fs afero.Fs, cfg config.HandlersConfig) error {
	r, err := resolver.New(fs, cfg.Dir, cfg.Extension)
	if err != nil {
		return err
	}

	routes, err := r.Scan()
	if err != nil {
		return err
	}

	methods := strings.Join(dispatch.AllowedMethods(), ",")
	for _, route := range routes {
		location, err := r.ResolveRoute(route)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(r.Base(), location.Path)
		if err != nil {
			rel = location.Path
		}

		if _, err := fmt.Fprintf(w, "%-24s %s -> %s\n", "/"+route.String(), methods, rel); err != nil {
			return err
		}
	}

	return nil
}
