package walker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/ecsgen/core/ast"
	"github.com/aledsdavies/ecsgen/core/ir"
)

func text(src string) ast.Stmt { return &ast.Text{Src: src} }

func each(types []string, body ...ast.Stmt) *ast.Call {
	params := make([]ast.Param, len(types))
	for i, t := range types {
		params[i] = ast.Param{Type: t, Name: "c" + t}
	}
	return &ast.Call{
		Src:    "s.Entities.Each(...)",
		Chain:  []ast.Member{{Name: "Each"}},
		Lambda: &ast.Lambda{Params: params, Body: body, HasBody: true},
	}
}

func TestWalkAssignsPreOrderIDs(t *testing.T) {
	m := &ast.Method{
		System:   "S",
		Receiver: "s",
		Body: []ast.Stmt{
			text("before()"),
			each([]string{"A"},
				each([]string{"B"},
					each([]string{"C"}, text("c()")),
				),
				each([]string{"D"}, text("d()")),
			),
			text("between()"),
			each([]string{"E"}, text("e()")),
		},
	}

	info, err := Walk(m, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, info.Validate())

	var keys []ir.Key
	for _, n := range info.Nodes.Nodes() {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []ir.Key{
		{Depth: 0, ID: 0},
		{Depth: 1, ID: 1},
		{Depth: 2, ID: 2},
		{Depth: 1, ID: 3},
		{Depth: 0, ID: 4},
	}, keys)
	assert.Equal(t, []ir.Key{{Depth: 0, ID: 0}, {Depth: 0, ID: 4}}, info.TopLevel)

	assert.Equal(t, ir.Template{
		ir.Text("before()"),
		ir.Hole{Key: ir.Key{Depth: 0, ID: 0}},
		ir.Text("between()"),
		ir.Hole{Key: ir.Key{Depth: 0, ID: 4}},
	}, info.Preamble)

	root, ok := info.Nodes.Lookup(ir.Key{Depth: 0, ID: 0})
	require.True(t, ok)
	assert.Equal(t, []ir.Key{{Depth: 1, ID: 1}, {Depth: 1, ID: 3}}, root.Body.Holes())

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, info.StorageTypes)
	assert.Equal(t, []string{"query_A", "query_B", "query_C", "query_D", "query_E"}, info.SignatureNames)
	assert.Empty(t, info.Diagnostics)
}

func TestWalkCountersAreIndependent(t *testing.T) {
	m := &ast.Method{System: "S", Body: []ast.Stmt{each([]string{"A"}, text("a()"))}}

	first, err := Walk(m, DefaultOptions())
	require.NoError(t, err)
	second, err := Walk(m, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.TopLevel, second.TopLevel)
	assert.Equal(t, []ir.Key{{Depth: 0, ID: 0}}, second.TopLevel)
}

func TestWalkSharedSignatures(t *testing.T) {
	m := &ast.Method{
		System: "S",
		Body: []ast.Stmt{
			each([]string{"Position", "Velocity"}, each([]string{"Position", "Velocity"}, text("x()"))),
			each([]string{"Velocity", "Position"}, text("y()")),
		},
	}
	info, err := Walk(m, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Position", "Velocity"}, info.StorageTypes)
	assert.Equal(t, []string{"query_Position_Velocity", "query_Velocity_Position"}, info.SignatureNames)
}

func TestWalkDepthCeiling(t *testing.T) {
	var stmt ast.Stmt = text("deepest()")
	for d := ir.MaxDepth; d >= 0; d-- {
		stmt = each([]string{string(rune('A' + d))}, stmt)
	}
	m := &ast.Method{System: "S", Body: []ast.Stmt{stmt}}

	info, err := Walk(m, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, info.Validate())

	assert.Equal(t, ir.MaxDepth, info.Nodes.Len())
	deepest, ok := info.Nodes.Lookup(ir.Key{Depth: ir.MaxDepth - 1, ID: ir.MaxDepth - 1})
	require.True(t, ok)
	assert.Equal(t, ir.Template{ir.Text(TruncatedComment)}, deepest.Body)
	assert.NotContains(t, info.StorageTypes, string(rune('A'+ir.MaxDepth)))

	require.Len(t, info.Diagnostics, 1)
	assert.Equal(t, ir.SeverityWarning, info.Diagnostics[0].Severity)
}

func TestWalkDiagnostics(t *testing.T) {
	noLambda := &ast.Call{Src: "s.Entities.Each(handler)", Chain: []ast.Member{{Name: "Each"}}}
	shadow := &ast.Call{
		Src:    "s.Entities.Each(...)",
		Chain:  []ast.Member{{Name: "Each"}},
		Lambda: &ast.Lambda{Params: []ast.Param{{Type: "A", Name: "s"}, {Type: "", Name: "x"}}, HasBody: true},
	}
	m := &ast.Method{
		System:   "S",
		Receiver: "s",
		Body: []ast.Stmt{
			noLambda,
			text("if ok {\n\ts.Entities.Each(func(a *A) {})\n}"),
			shadow,
		},
	}

	info, err := Walk(m, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, ir.Text("s.Entities.Each(handler)"), info.Preamble[0])
	require.Len(t, info.Diagnostics, 4)
	assert.Equal(t, ir.SeverityWarning, info.Diagnostics[0].Severity)
	assert.Equal(t, ir.SeverityInfo, info.Diagnostics[1].Severity)
	assert.Contains(t, info.Diagnostics[2].Message, "shadows the receiver")
	assert.Contains(t, info.Diagnostics[3].Message, "no component type")

	n, ok := info.Nodes.Lookup(ir.Key{Depth: 0, ID: 0})
	require.True(t, ok)
	assert.Equal(t, []ir.Param{{Type: "A", Name: "s"}}, n.Params)
}

func TestWalkWarnsOnReturnInBody(t *testing.T) {
	m := &ast.Method{
		System:   "S",
		Receiver: "s",
		Body: []ast.Stmt{
			text("return"),
			each([]string{"A"},
				text("if cA.Dead {\n\tcontinue\n}"),
				text("// done\nreturn"),
				text("returned := 1"),
			),
		},
	}

	info, err := Walk(m, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, info.Diagnostics, 1)
	d := info.Diagnostics[0]
	assert.Equal(t, ir.SeverityWarning, d.Severity)
	assert.Contains(t, d.Message, "leaves UpdateGenerated")

	n, ok := info.Nodes.Lookup(ir.Key{})
	require.True(t, ok)
	assert.Equal(t, ir.Text("// done\nreturn"), n.Body[1], "the statement is still copied verbatim")
}
