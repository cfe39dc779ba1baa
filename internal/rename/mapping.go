// Package rename builds the old→new path mapping from a navigation tree and
// derives the move plan and change report from it. The mapping is computed
// once per run and is the only input to both the filesystem moves and the
// manifest rewrite.
package rename

import (
	"sort"

	"github.com/papapumpkin/navstrip/internal/ident"
	"github.com/papapumpkin/navstrip/internal/manifest"
)

// Mapping maps an original page path to its canonical path. It never holds
// an identity entry.
type Mapping map[string]string

// Pair is a single old→new rename.
type Pair struct {
	Old string `json:"old" toml:"old"`
	New string `json:"new" toml:"new"`
}

// BuildMapping collects every leaf of nav, canonicalizes it and keeps the
// entries whose path changes. Repeated references collapse into one entry.
func BuildMapping(nav manifest.Node) Mapping {
	return FromPaths(manifest.CollectLeaves(nav))
}

// FromPaths builds a Mapping from a flat sequence of page paths.
func FromPaths(paths []string) Mapping {
	m := make(Mapping)
	for _, old := range paths {
		if canonical := ident.Canonicalize(old); canonical != old {
			m[old] = canonical
		}
	}
	return m
}

// Sorted returns the mapping as pairs ordered by old path.
func (m Mapping) Sorted() []Pair {
	pairs := make([]Pair, 0, len(m))
	for old, nw := range m {
		pairs = append(pairs, Pair{Old: old, New: nw})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Old < pairs[j].Old })
	return pairs
}

// FromPairs rebuilds a Mapping from pairs, dropping identity renames.
func FromPairs(pairs []Pair) Mapping {
	m := make(Mapping, len(pairs))
	for _, p := range pairs {
		if p.Old != p.New {
			m[p.Old] = p.New
		}
	}
	return m
}

// EmptyDestinations returns, sorted, the old paths whose every segment was
// an identifier and therefore map to "".
func (m Mapping) EmptyDestinations() []string {
	var out []string
	for _, p := range m.Sorted() {
		if p.New == "" {
			out = append(out, p.Old)
		}
	}
	return out
}

// Without returns a copy of m minus the given old paths.
func (m Mapping) Without(olds ...string) Mapping {
	drop := make(map[string]bool, len(olds))
	for _, o := range olds {
		drop[o] = true
	}
	out := make(Mapping, len(m))
	for k, v := range m {
		if !drop[k] {
			out[k] = v
		}
	}
	return out
}
