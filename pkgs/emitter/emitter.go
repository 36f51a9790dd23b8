// Package emitter renders iteration nodes as nested index loops.
package emitter

import (
	"fmt"
	"maps"
	"strings"

	"github.com/aledsdavies/ecsgen/codegen"
	"github.com/aledsdavies/ecsgen/core/invariant"
	"github.com/aledsdavies/ecsgen/core/ir"
)

// DefaultPoolPrefix is prepended to the storage field of a component type.
const DefaultPoolPrefix = "pool"

// Options configure how fields are addressed.
type Options struct {
	// Receiver qualifies every generated field access; empty for none.
	Receiver   string
	PoolPrefix string
}

// Emitter renders nodes, claiming each from the arena it was created with.
type Emitter struct {
	arena *ir.Arena
	opts  Options
}

// New creates an emitter that consumes nodes from arena.
func New(arena *ir.Arena, opts Options) *Emitter {
	invariant.NotNil(arena, "arena")
	if opts.PoolPrefix == "" {
		opts.PoolPrefix = DefaultPoolPrefix
	}
	return &Emitter{arena: arena, opts: opts}
}

// PoolName returns the storage field name for a component type.
func PoolName(prefix, componentType string) string {
	return prefix + codegen.SanitizeIdentifier(componentType)
}

// IndexName returns the loop variable for a depth. Loops at the same depth
// never nest inside each other, so the depth alone keeps names distinct.
func IndexName(depth uint) string {
	return fmt.Sprintf("index%d", depth)
}

// Field returns a field access on the receiver.
func (e *Emitter) Field(name string) string {
	if e.opts.Receiver == "" {
		return name
	}
	return e.opts.Receiver + "." + name
}

// Render claims the node registered under key and returns its loop text,
// including every nested child, closed at this level.
func (e *Emitter) Render(key ir.Key) (string, error) {
	out, _, err := e.render(key)
	return out, err
}

// render also returns the identifiers the loop reads from enclosing scopes.
// Names bound by the loop itself, or rebound by a nested loop, are excluded.
func (e *Emitter) render(key ir.Key) (string, map[string]bool, error) {
	n, err := e.arena.Claim(key)
	if err != nil {
		return "", nil, err
	}
	invariant.Invariant(n.Key == key, "claimed node %s under key %s", n.Key, key)

	body, used, err := e.renderBody(n)
	if err != nil {
		return "", nil, err
	}

	idx := IndexName(n.Key.Depth)
	query := e.Field(n.Signature)

	var b strings.Builder
	fmt.Fprintf(&b, "for %s := 0; %s < %s.Count(); %s++ {\n", idx, idx, query, idx)
	for _, p := range n.Params {
		if p.Name == "" || p.Name == "_" {
			continue
		}
		fmt.Fprintf(&b, "\t%s := &%s.Items[%s.Entities[%s]]\n",
			p.Name, e.Field(PoolName(e.opts.PoolPrefix, p.Type)), query, idx)
		if !used[p.Name] {
			fmt.Fprintf(&b, "\t_ = %s\n", p.Name)
		}
	}
	if body != "" {
		b.WriteString(codegen.IndentCode(body, 1))
		b.WriteByte('\n')
	}
	b.WriteString("}")

	for _, p := range n.Params {
		delete(used, p.Name)
	}
	return b.String(), used, nil
}

// renderBody joins the body segments of n. A child's bindings shadow n's, so
// only the child's free identifiers count as uses of n's bindings.
func (e *Emitter) renderBody(n *ir.Node) (string, map[string]bool, error) {
	parts := make([]string, 0, len(n.Body))
	used := make(map[string]bool)
	for _, seg := range n.Body {
		switch s := seg.(type) {
		case ir.Text:
			parts = append(parts, string(s))
			maps.Copy(used, codegen.Identifiers(string(s)))
		case ir.Hole:
			if s.Key.Depth != n.Key.Depth+1 {
				return "", nil, fmt.Errorf("node %s: child %s is not one level deeper", n.Key, s.Key)
			}
			child, free, err := e.render(s.Key)
			if err != nil {
				return "", nil, fmt.Errorf("node %s: %w", n.Key, err)
			}
			parts = append(parts, child)
			maps.Copy(used, free)
		}
	}
	return strings.Join(parts, "\n"), used, nil
}
