// Package ast is the structured form of an update method handed to the
// analyser by a front-end. It carries no Go syntax trees: every statement is
// either opaque source text or a member call chain with an optional function
// literal argument, which is all the DSL recognition rules need.
package ast

import (
	"fmt"
	"strings"
)

// Position represents source location information
type Position struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// IsValid reports whether the position points at a real line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.File
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Import is one import declaration of the file that holds the method.
type Import struct {
	Name string `json:"name,omitempty"` // explicit package name, "" when absent
	Path string `json:"path"`
}

func (i Import) String() string {
	if i.Name != "" {
		return fmt.Sprintf("%s %q", i.Name, i.Path)
	}
	return fmt.Sprintf("%q", i.Path)
}

// Method is one analysed update method together with the passthrough context
// needed to keep the generated unit compiling next to the hand-written code.
type Method struct {
	System   string   `json:"system"`
	Package  string   `json:"package,omitempty"`
	Receiver string   `json:"receiver,omitempty"`
	Imports  []Import `json:"imports,omitempty"`
	Body     []Stmt   `json:"body"`
	Pos      Position `json:"pos,omitempty"`
}

// Stmt is a statement of a method or lambda body. The set is closed: Text and
// Call are the only implementations.
type Stmt interface {
	Source() string
	Position() Position
	stmt()
}

// Text is a statement that is not shaped like a member call.
type Text struct {
	Src string   `json:"src"`
	Pos Position `json:"pos,omitempty"`
}

func (t *Text) Source() string     { return t.Src }
func (t *Text) Position() Position { return t.Pos }
func (*Text) stmt()                {}

// Call is an expression statement whose outermost expression is a chain of
// member calls: recv.A[T]().B(args). Chain holds the members in source order,
// so the outermost call is the last element.
type Call struct {
	Src    string   `json:"src"`
	Pos    Position `json:"pos,omitempty"`
	Chain  []Member `json:"chain"`
	Lambda *Lambda  `json:"lambda,omitempty"` // first function literal argument of the outermost call
}

func (c *Call) Source() string     { return c.Src }
func (c *Call) Position() Position { return c.Pos }
func (*Call) stmt()                {}

// Outermost returns the member invoked last, or false for an empty chain.
func (c *Call) Outermost() (Member, bool) {
	if len(c.Chain) == 0 {
		return Member{}, false
	}
	return c.Chain[len(c.Chain)-1], true
}

// Member is one called member of a chain with its explicit type arguments.
type Member struct {
	Name     string   `json:"name"`
	TypeArgs []string `json:"type_args,omitempty"`
}

func (m Member) String() string {
	if len(m.TypeArgs) == 0 {
		return m.Name + "()"
	}
	return fmt.Sprintf("%s[%s]()", m.Name, strings.Join(m.TypeArgs, ", "))
}

// Lambda is a function literal argument.
type Lambda struct {
	Params  []Param `json:"params"`
	Body    []Stmt  `json:"body,omitempty"`
	HasBody bool    `json:"has_body"`
}

// Param is one lambda parameter. Type is the component type with any pointer
// marker removed.
type Param struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func (p Param) String() string {
	return p.Name + " *" + p.Type
}
