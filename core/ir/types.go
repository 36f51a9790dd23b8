// Package ir holds the analysed form of an update method: iteration nodes
// keyed by (depth, id), body templates with typed holes where nested
// iterations were, and the registry that the emitter consumes.
package ir

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/ecsgen/core/ast"
)

// MaxDepth is the number of nesting levels that are expanded. Nodes exist for
// depths 0 through MaxDepth-1.
const MaxDepth = 6

// Key identifies a node in the registry. ID alone is unique within a method;
// Depth is carried so a hole names both coordinates of its child.
type Key struct {
	Depth uint `json:"depth" yaml:"depth"`
	ID    uint `json:"id" yaml:"id"`
}

// String renders the key in the legacy placeholder form. It is used for
// dumps and diagnostics only and is never parsed back.
func (k Key) String() string {
	return fmt.Sprintf("LAMBDA_DEPTH:%d,ID:%d", k.Depth, k.ID)
}

// Segment is one piece of a Template: Text or Hole.
type Segment interface {
	segment()
}

// Text is a verbatim statement.
type Text string

// Hole marks the position of a nested iteration call.
type Hole struct {
	Key Key
}

func (Text) segment() {}
func (Hole) segment() {}

// Template is an ordered list of verbatim statements and holes.
type Template []Segment

// AppendText adds a verbatim statement.
func (t *Template) AppendText(s string) {
	*t = append(*t, Text(s))
}

// AppendHole adds a hole for key.
func (t *Template) AppendHole(key Key) {
	*t = append(*t, Hole{Key: key})
}

// Holes returns the keys referenced by the template in order.
func (t Template) Holes() []Key {
	var keys []Key
	for _, seg := range t {
		if h, ok := seg.(Hole); ok {
			keys = append(keys, h.Key)
		}
	}
	return keys
}

// String renders the template with holes in placeholder form, one segment per line.
func (t Template) String() string {
	var b strings.Builder
	for _, seg := range t {
		switch s := seg.(type) {
		case Text:
			b.WriteString(string(s))
		case Hole:
			b.WriteString("//" + s.Key.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Param is a component binding of an iteration.
type Param struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
}

// Node is one iteration call site.
type Node struct {
	Key        Key
	Params     []Param
	Exclusions []string
	Body       Template
	Signature  string
	Pos        ast.Position
}

// Types returns the ordered component types of the node's parameters.
func (n *Node) Types() []string {
	types := make([]string, len(n.Params))
	for i, p := range n.Params {
		types[i] = p.Type
	}
	return types
}
