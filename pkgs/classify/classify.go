// Package classify decides whether a statement is a DSL iteration call.
//
// Recognition is a pattern match over a closed set of call shapes. A call is
// an iteration when the member invoked last is the combinator (Each); the
// exclusion types are the type arguments of every exclusion call (Without)
// chained before it. Anything else is passed through verbatim.
package classify

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aledsdavies/ecsgen/core/ast"
	"github.com/aledsdavies/ecsgen/core/ir"
)

// Names are the member names that make up the DSL.
type Names struct {
	Each    string
	Without string
}

// DefaultNames returns the standard combinator names.
func DefaultNames() Names {
	return Names{Each: "Each", Without: "Without"}
}

// Result is one of Plain, Iteration or ExclusionChain.
type Result interface {
	result()
}

// Plain is a statement kept verbatim.
type Plain struct {
	Text string
	Pos  ast.Position
	Diag *ir.Diagnostic
}

// Iteration is a recognised combinator call.
type Iteration struct {
	Src        string
	Pos        ast.Position
	Params     []ast.Param
	Exclusions []string
	Body       []ast.Stmt
	Diags      []ir.Diagnostic
}

// ExclusionChain is a chain that ends in the exclusion call. It filters
// nothing on its own and is kept verbatim.
type ExclusionChain struct {
	Text  string
	Pos   ast.Position
	Types []string
	Diag  *ir.Diagnostic
}

func (Plain) result()          {}
func (Iteration) result()      {}
func (ExclusionChain) result() {}

// maxTypoDistance bounds the edit distance at which a member name is reported
// as a probable misspelling of a DSL name.
const maxTypoDistance = 2

// Classify inspects one statement.
func Classify(stmt ast.Stmt, names Names) Result {
	call, ok := stmt.(*ast.Call)
	if !ok {
		return Plain{Text: stmt.Source(), Pos: stmt.Position()}
	}

	last, ok := call.Outermost()
	if !ok {
		return Plain{Text: call.Src, Pos: call.Pos}
	}

	switch last.Name {
	case names.Each:
		return classifyEach(call, names)
	case names.Without:
		d := ir.Infof(call.Pos, "%s chain is not followed by %s and filters nothing", names.Without, names.Each)
		return ExclusionChain{Text: call.Src, Pos: call.Pos, Types: exclusions(call.Chain, names), Diag: &d}
	}

	if call.Lambda != nil {
		if suggestion, ok := nearMiss(last.Name, names.Each); ok {
			d := ir.Warnf(call.Pos, "call to %s is not recognised as an iteration and is passed through", last.Name)
			d.Suggestion = suggestion
			return Plain{Text: call.Src, Pos: call.Pos, Diag: &d}
		}
	}
	return Plain{Text: call.Src, Pos: call.Pos}
}

func classifyEach(call *ast.Call, names Names) Result {
	switch {
	case call.Lambda == nil:
		d := ir.Warnf(call.Pos, "%s call has no function literal argument and is passed through unexpanded", names.Each)
		return Plain{Text: call.Src, Pos: call.Pos, Diag: &d}
	case !call.Lambda.HasBody:
		d := ir.Warnf(call.Pos, "%s function literal has no body and is passed through unexpanded", names.Each)
		return Plain{Text: call.Src, Pos: call.Pos, Diag: &d}
	}

	it := Iteration{
		Src:        call.Src,
		Pos:        call.Pos,
		Params:     call.Lambda.Params,
		Exclusions: exclusions(call.Chain, names),
		Body:       call.Lambda.Body,
	}

	for _, m := range call.Chain[:len(call.Chain)-1] {
		if m.Name == names.Without || len(m.TypeArgs) == 0 {
			continue
		}
		if suggestion, ok := nearMiss(m.Name, names.Without); ok {
			d := ir.Warnf(call.Pos, "%s is not an exclusion filter; its type arguments are ignored", m)
			d.Suggestion = suggestion
			it.Diags = append(it.Diags, d)
		}
	}
	return it
}

// exclusions flattens the type arguments of every exclusion call in
// declaration order.
func exclusions(chain []ast.Member, names Names) []string {
	var types []string
	for _, m := range chain {
		if m.Name == names.Without {
			types = append(types, m.TypeArgs...)
		}
	}
	return types
}

// nearMiss reports whether name looks like a misspelling of want.
func nearMiss(name, want string) (string, bool) {
	if name == want || len(name) < 3 {
		return "", false
	}
	if strings.EqualFold(name, want) ||
		fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(want)) <= maxTypoDistance {
		return fmt.Sprintf("did you mean %s?", want), true
	}
	return "", false
}
