package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/ecsgen/core/ast"
	"github.com/aledsdavies/ecsgen/core/ir"
)

func call(lambda *ast.Lambda, chain ...ast.Member) *ast.Call {
	return &ast.Call{Src: "s.Entities.X()", Chain: chain, Lambda: lambda}
}

func member(name string, typeArgs ...string) ast.Member {
	return ast.Member{Name: name, TypeArgs: typeArgs}
}

func lambda(params ...ast.Param) *ast.Lambda {
	return &ast.Lambda{Params: params, HasBody: true, Body: []ast.Stmt{&ast.Text{Src: "work()"}}}
}

func TestClassify(t *testing.T) {
	names := DefaultNames()
	pos := ast.Param{Type: "Position", Name: "p"}

	tests := []struct {
		name     string
		stmt     ast.Stmt
		want     string
		wantDiag ir.Severity
		hasDiag  bool
	}{
		{"text statement", &ast.Text{Src: "x := 1"}, "plain", 0, false},
		{"empty chain", call(nil), "plain", 0, false},
		{"unrelated call", call(lambda(pos), member("Range")), "plain", 0, false},
		{"each", call(lambda(pos), member("Each")), "iteration", 0, false},
		{"without then each", call(lambda(pos), member("Without", "Frozen"), member("Each")), "iteration", 0, false},
		{"each without literal", call(nil, member("Each")), "plain", ir.SeverityWarning, true},
		{"each without body", call(&ast.Lambda{Params: []ast.Param{pos}}, member("Each")), "plain", ir.SeverityWarning, true},
		{"exclusion chain only", call(nil, member("Without", "Frozen")), "exclusion", ir.SeverityInfo, true},
		{"lowercase each", call(lambda(pos), member("each")), "plain", ir.SeverityWarning, true},
		{"misspelled each", call(lambda(pos), member("Eahc")), "plain", ir.SeverityWarning, true},
		{"misspelled each without literal", call(nil, member("Eahc")), "plain", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.stmt, names)

			var diag *ir.Diagnostic
			switch r := got.(type) {
			case Plain:
				assert.Equal(t, "plain", tt.want)
				assert.Equal(t, tt.stmt.Source(), r.Text)
				diag = r.Diag
			case Iteration:
				assert.Equal(t, "iteration", tt.want)
				assert.Empty(t, r.Diags)
			case ExclusionChain:
				assert.Equal(t, "exclusion", tt.want)
				assert.Equal(t, []string{"Frozen"}, r.Types)
				diag = r.Diag
			default:
				t.Fatalf("unexpected result %T", got)
			}

			if !tt.hasDiag {
				assert.Nil(t, diag)
				return
			}
			require.NotNil(t, diag)
			assert.Equal(t, tt.wantDiag, diag.Severity)
		})
	}
}

func TestClassifyIteration(t *testing.T) {
	params := []ast.Param{{Type: "Position", Name: "p"}, {Type: "Velocity", Name: "v"}}
	stmt := call(lambda(params...),
		member("Without", "A", "B"),
		member("Without", "C"),
		member("Each"),
	)

	it, ok := Classify(stmt, DefaultNames()).(Iteration)
	require.True(t, ok)
	assert.Equal(t, params, it.Params)
	assert.Equal(t, []string{"A", "B", "C"}, it.Exclusions)
	assert.Len(t, it.Body, 1)
}

func TestClassifySuggestsExclusion(t *testing.T) {
	stmt := call(lambda(ast.Param{Type: "Position", Name: "p"}), member("Witout", "Frozen"), member("Each"))

	it, ok := Classify(stmt, DefaultNames()).(Iteration)
	require.True(t, ok)
	assert.Empty(t, it.Exclusions)
	require.Len(t, it.Diags, 1)
	assert.Equal(t, "did you mean Without?", it.Diags[0].Suggestion)
}

func TestClassifyCustomNames(t *testing.T) {
	names := Names{Each: "ForEach", Without: "Exclude"}
	stmt := call(lambda(ast.Param{Type: "Position", Name: "p"}), member("Exclude", "Dead"), member("ForEach"))

	it, ok := Classify(stmt, names).(Iteration)
	require.True(t, ok)
	assert.Equal(t, []string{"Dead"}, it.Exclusions)

	_, ok = Classify(call(lambda(), member("Each")), names).(Plain)
	assert.True(t, ok, "default name is not recognised once renamed")
}

func TestNearMiss(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Each", false},
		{"each", true},
		{"Eahc", true},
		{"Eachh", true},
		{"Ea", false},
		{"Range", false},
		{"Count", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := nearMiss(tt.name, "Each")
			assert.Equal(t, tt.want, got)
		})
	}
}
