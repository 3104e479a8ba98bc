package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Scan lists the base directory and returns every route that currently has a
// handler unit, sorted by resource then action.
//
// Only regular files exactly two levels below the base with the handler
// extension count. Entries are checked with Stat, so symlinked resource
// directories and units are followed the same way Resolve follows them.
// Dispatch does not depend on Scan; it is used for listing, startup logging
// and preloading.
func (r *Resolver) Scan() ([]Route, error) {
	resources, err := afero.ReadDir(r.fs, r.base)
	if err != nil {
		return nil, err
	}

	var routes []Route
	for _, resource := range resources {
		dir := filepath.Join(r.base, resource.Name())

		// Dangling links and plain files at the top level hold no units.
		info, err := r.fs.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		actions, err := afero.ReadDir(r.fs, dir)
		if err != nil {
			return nil, err
		}

		for _, entry := range actions {
			name := entry.Name()
			if !strings.HasSuffix(name, r.ext) {
				continue
			}

			action := strings.TrimSuffix(name, r.ext)
			if action == "" {
				continue
			}

			info, err := r.fs.Stat(filepath.Join(dir, name))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}

			routes = append(routes, Route{Resource: resource.Name(), Action: action})
		}
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Resource != routes[j].Resource {
			return routes[i].Resource < routes[j].Resource
		}
		return routes[i].Action < routes[j].Action
	})

	return routes, nil
}
