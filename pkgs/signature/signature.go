// Package signature names iteration signatures, merges structurally equal
// ones into shared query declarations and collects the component types that
// need storage handles.
package signature

import (
	"slices"
	"strings"

	"github.com/aledsdavies/ecsgen/codegen"
	"github.com/aledsdavies/ecsgen/core/ir"
)

// DefaultPrefix is prepended to every query name.
const DefaultPrefix = "query_"

// Separator joins the component types of a signature.
const Separator = "_"

// Name returns the canonical query name for an ordered list of component
// types. It depends on nothing else: exclusions and depth do not take part.
func Name(prefix string, types []string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = codegen.SanitizeIdentifier(t)
	}
	return prefix + strings.Join(parts, Separator)
}

// Decl is one shared query declaration.
type Decl struct {
	Name       string
	Types      []string
	Exclusions []string
}

// Conflict records a node whose exclusions were dropped because an earlier
// node with the same signature already supplied them.
type Conflict struct {
	Name    string
	Node    ir.Key
	Kept    []string
	Dropped []string
}

// Dedup returns one declaration per distinct signature in first-seen order.
// The first node processed for a name supplies the exclusion list; later
// nodes with the same name contribute nothing, even when their exclusions
// differ. Those cases are returned as conflicts.
func Dedup(nodes []*ir.Node) ([]Decl, []Conflict) {
	var (
		decls     []Decl
		conflicts []Conflict
		index     = make(map[string]int)
	)
	for _, n := range nodes {
		if i, ok := index[n.Signature]; ok {
			if !slices.Equal(decls[i].Exclusions, n.Exclusions) {
				conflicts = append(conflicts, Conflict{
					Name:    n.Signature,
					Node:    n.Key,
					Kept:    decls[i].Exclusions,
					Dropped: n.Exclusions,
				})
			}
			continue
		}
		index[n.Signature] = len(decls)
		decls = append(decls, Decl{
			Name:       n.Signature,
			Types:      n.Types(),
			Exclusions: slices.Clone(n.Exclusions),
		})
	}
	return decls, conflicts
}

// StorageCollector accumulates the distinct component types referenced by
// any node, in first-seen order.
type StorageCollector struct {
	set ir.OrderedSet
}

// Add records the parameter types of a node.
func (c *StorageCollector) Add(params []ir.Param) {
	for _, p := range params {
		c.set.Add(p.Type)
	}
}

// Types returns the collected types in first-seen order.
func (c *StorageCollector) Types() []string {
	return c.set.Items()
}
