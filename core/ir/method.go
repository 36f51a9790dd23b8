package ir

import (
	"fmt"

	"github.com/aledsdavies/ecsgen/core/ast"
)

// MethodInfo is the analysed form of one update method.
type MethodInfo struct {
	System   string
	Package  string
	Receiver string
	Imports  []ast.Import
	Pos      ast.Position

	// Preamble is the top-level body: verbatim statements with a hole where
	// each top-level iteration call was.
	Preamble Template

	StorageTypes   []string
	SignatureNames []string

	Nodes    *Arena
	TopLevel []Key

	Diagnostics []Diagnostic
}

// HasErrors reports whether any diagnostic has error severity.
func (m *MethodInfo) HasErrors() bool {
	for _, d := range m.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks registry consistency: every hole must reference a
// registered node and no node may be referenced by two parents.
func (m *MethodInfo) Validate() error {
	if m.Nodes == nil {
		if len(m.Preamble.Holes()) > 0 {
			return fmt.Errorf("%s: preamble references nodes but registry is empty", m.System)
		}
		return nil
	}

	owner := make(map[Key]string)
	claim := func(k Key, parent string) error {
		if _, ok := m.Nodes.Lookup(k); !ok {
			return fmt.Errorf("%s: %s references %w %s", m.System, parent, ErrUnknownNode, k)
		}
		if prev, ok := owner[k]; ok {
			return fmt.Errorf("%s: node %s referenced by both %s and %s", m.System, k, prev, parent)
		}
		owner[k] = parent
		return nil
	}

	for _, k := range m.Preamble.Holes() {
		if err := claim(k, "preamble"); err != nil {
			return err
		}
	}
	for _, n := range m.Nodes.Nodes() {
		for _, k := range n.Body.Holes() {
			if k.Depth != n.Key.Depth+1 {
				return fmt.Errorf("%s: node %s holds child %s at depth %d, want %d",
					m.System, n.Key, k, k.Depth, n.Key.Depth+1)
			}
			if err := claim(k, n.Key.String()); err != nil {
				return err
			}
		}
	}
	return nil
}
