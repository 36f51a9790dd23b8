package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/ecsgen/core/ast"
)

func TestArenaClaimMovesOut(t *testing.T) {
	a := NewArena()
	k := Key{Depth: 0, ID: 0}
	require.NoError(t, a.Register(&Node{Key: k}))

	n, err := a.Claim(k)
	require.NoError(t, err)
	assert.Equal(t, k, n.Key)
	assert.Zero(t, a.Len())

	_, ok := a.Lookup(k)
	assert.False(t, ok)

	_, err = a.Claim(k)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	// A claimed key cannot be registered again.
	assert.ErrorIs(t, a.Register(&Node{Key: k}), ErrDuplicateKey)

	_, err = a.Claim(Key{Depth: 1, ID: 9})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestArenaRegisterDuplicate(t *testing.T) {
	a := NewArena()
	require.NoError(t, a.Register(&Node{Key: Key{ID: 1}}))
	assert.ErrorIs(t, a.Register(&Node{Key: Key{ID: 1}}), ErrDuplicateKey)
}

func TestArenaCloneIsIndependent(t *testing.T) {
	a := NewArena()
	for id := uint(0); id < 3; id++ {
		require.NoError(t, a.Register(&Node{Key: Key{Depth: id, ID: id}}))
	}
	_, err := a.Claim(Key{Depth: 0, ID: 0})
	require.NoError(t, err)

	c := a.Clone()
	assert.Equal(t, 2, c.Len())

	_, err = c.Claim(Key{Depth: 1, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len(), "claims on the clone leave the original intact")

	var keys []Key
	for _, n := range a.Nodes() {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []Key{{Depth: 1, ID: 1}, {Depth: 2, ID: 2}}, keys)
}

func TestValidate(t *testing.T) {
	build := func(mutate func(mi *MethodInfo)) *MethodInfo {
		mi := &MethodInfo{System: "S", Nodes: NewArena()}
		root := &Node{Key: Key{Depth: 0, ID: 0}}
		root.Body.AppendHole(Key{Depth: 1, ID: 1})
		_ = mi.Nodes.Register(root)
		_ = mi.Nodes.Register(&Node{Key: Key{Depth: 1, ID: 1}})
		mi.Preamble.AppendText("x := 1")
		mi.Preamble.AppendHole(root.Key)
		if mutate != nil {
			mutate(mi)
		}
		return mi
	}

	tests := []struct {
		name    string
		mutate  func(mi *MethodInfo)
		wantErr string
	}{
		{"consistent", nil, ""},
		{"dangling hole", func(mi *MethodInfo) { mi.Preamble.AppendHole(Key{Depth: 0, ID: 5}) }, "unknown iteration node"},
		{"shared child", func(mi *MethodInfo) { mi.Preamble.AppendHole(Key{Depth: 0, ID: 0}) }, "referenced by both"},
		{"depth skip", func(mi *MethodInfo) {
			n, _ := mi.Nodes.Lookup(Key{Depth: 1, ID: 1})
			n.Body.AppendHole(Key{Depth: 3, ID: 2})
		}, "want 2"},
		{"nil registry with holes", func(mi *MethodInfo) { mi.Nodes = nil }, "registry is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := build(tt.mutate).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestHasErrors(t *testing.T) {
	mi := &MethodInfo{Diagnostics: []Diagnostic{Warnf(ast.Position{}, "w")}}
	assert.False(t, mi.HasErrors())
	mi.Diagnostics = append(mi.Diagnostics, Diagnostic{Severity: SeverityError, Message: "e"})
	assert.True(t, mi.HasErrors())
}

func TestTemplate(t *testing.T) {
	var tmpl Template
	tmpl.AppendText("a()")
	tmpl.AppendHole(Key{Depth: 0, ID: 3})
	tmpl.AppendText("b()")

	assert.Equal(t, []Key{{Depth: 0, ID: 3}}, tmpl.Holes())
	assert.Equal(t, "a()\n//LAMBDA_DEPTH:0,ID:3\nb()\n", tmpl.String())
}

func TestOrderedSet(t *testing.T) {
	var s OrderedSet
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, 2, s.Len())

	items := s.Items()
	assert.Equal(t, []string{"b", "a"}, items)
	items[0] = "z"
	assert.Equal(t, []string{"b", "a"}, s.Items())
}

func TestDiagnosticString(t *testing.T) {
	d := Warnf(ast.Position{File: "move.go", Line: 3, Column: 2}, "call to %s", "Eahc")
	d.Suggestion = "did you mean Each?"
	assert.Equal(t, "move.go:3:2: warning: call to Eahc (did you mean Each?)", d.String())
	assert.Equal(t, "info: x", Infof(ast.Position{}, "x").String())
	assert.Equal(t, "unknown", Severity(9).String())
}

func TestNodeTypes(t *testing.T) {
	n := &Node{Params: []Param{{Type: "A", Name: "a"}, {Type: "B", Name: "b"}}}
	assert.Equal(t, []string{"A", "B"}, n.Types())
}
