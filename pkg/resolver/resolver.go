// Package resolver orders the declared plugin set so that every dependency
// is installed before anything that depends on it. Resolution is fail-fast:
// a missing reference or a cycle aborts the run before any git work starts.
package resolver

import (
	"strings"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Resolve returns the declared plugins in installation order using Kahn's
// algorithm. Ties among simultaneously-ready plugins preserve declaration
// order, so the result is deterministic for a given manifest.
//
// Each dependency edge runs dependency -> dependent: for plugin P depending
// on D, the edge is D->P and P's in-degree goes up by one. A plugin's
// in-degree is therefore the number of its own declared dependencies.
func Resolve(specs []types.PluginSpec) ([]types.PluginSpec, error) {
	index := make(map[string]int, len(specs))
	for i, spec := range specs {
		if _, dup := index[spec.Name]; dup {
			return nil, errors.Newf(errors.ErrDuplicatePlugin,
				"plugin %q is declared more than once", spec.Name)
		}
		index[spec.Name] = i
	}

	// Referential integrity before any graph work, so the error names the
	// dependent and the missing dependency rather than a sort artifact.
	for _, spec := range specs {
		for _, dep := range spec.Dependencies {
			if _, ok := index[dep]; !ok {
				return nil, errors.Newf(errors.ErrDependencyMissing,
					"plugin %q depends on %q, which is not declared", spec.Name, dep)
			}
		}
	}

	// dependents[i] lists the indexes of plugins that depend on specs[i].
	// A self-dependency produces an edge onto itself: in-degree never
	// reaches zero, so it falls out as a cycle below.
	dependents := make([][]int, len(specs))
	inDegree := make([]int, len(specs))
	for i, spec := range specs {
		for _, dep := range spec.Dependencies {
			dependents[index[dep]] = append(dependents[index[dep]], i)
			inDegree[i]++
		}
	}

	// FIFO queue seeded in declaration order keeps the tie-break stable.
	queue := make([]int, 0, len(specs))
	for i := range specs {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	ordered := make([]types.PluginSpec, 0, len(specs))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		ordered = append(ordered, specs[i])
		for _, dep := range dependents[i] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(ordered) < len(specs) {
		// Every unresolved plugin is part of (or downstream of) a cycle.
		// Name them all so the user sees the whole cluster at once.
		var stuck []string
		for i := range specs {
			if inDegree[i] > 0 {
				stuck = append(stuck, specs[i].Name)
			}
		}
		return nil, errors.Newf(errors.ErrDependencyCycle,
			"dependency cycle among plugins: %s", strings.Join(stuck, ", "))
	}

	return ordered, nil
}
