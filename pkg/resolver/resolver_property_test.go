package resolver_test

import (
	"fmt"
	"testing"

	"github.com/arthur-debert/doplug/pkg/resolver"
	"github.com/arthur-debert/doplug/pkg/types"
	"pgregory.net/rapid"
)

// TestResolveOrderProperty generates random DAGs and checks that the
// resolved order places every dependency before every plugin that depends
// on it. The generator builds edges only from lower to higher plugin ids,
// which guarantees acyclicity, then declares the plugins in a random order.
func TestResolveOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "plugins")

		specs := make([]types.PluginSpec, n)
		for i := 0; i < n; i++ {
			specs[i] = spec(fmt.Sprintf("p%d", i))
			if i > 0 {
				deps := rapid.SliceOfNDistinct(rapid.IntRange(0, i-1), 0, i, rapid.ID).
					Draw(t, fmt.Sprintf("deps%d", i))
				for _, d := range deps {
					specs[i].Dependencies = append(specs[i].Dependencies, fmt.Sprintf("p%d", d))
				}
			}
		}

		// Declare in a shuffled order; resolution must not depend on the
		// edges happening to match declaration order.
		perm := rapid.Permutation(specs).Draw(t, "declaration_order")

		ordered, err := resolver.Resolve(perm)
		if err != nil {
			t.Fatalf("valid DAG failed to resolve: %v", err)
		}
		if len(ordered) != n {
			t.Fatalf("resolved %d of %d plugins", len(ordered), n)
		}

		position := make(map[string]int, n)
		for i, s := range ordered {
			position[s.Name] = i
		}
		for _, s := range perm {
			for _, dep := range s.Dependencies {
				if position[dep] >= position[s.Name] {
					t.Fatalf("dependency %s sorted after dependent %s", dep, s.Name)
				}
			}
		}
	})
}
