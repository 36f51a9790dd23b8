package signature

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/aledsdavies/ecsgen/core/ir"
)

func node(id uint, exclusions []string, types ...string) *ir.Node {
	n := &ir.Node{Key: ir.Key{ID: id}, Exclusions: exclusions}
	for _, t := range types {
		n.Params = append(n.Params, ir.Param{Type: t, Name: "x"})
	}
	n.Signature = Name(DefaultPrefix, types)
	return n
}

func TestName(t *testing.T) {
	tests := []struct {
		types []string
		want  string
	}{
		{[]string{"Position"}, "query_Position"},
		{[]string{"Position", "Velocity"}, "query_Position_Velocity"},
		{[]string{"Velocity", "Position"}, "query_Velocity_Position"},
		{nil, "query_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Name(DefaultPrefix, tt.types))
	}
	assert.Equal(t, "qA_B", Name("q", []string{"A", "B"}))
}

func TestDedup(t *testing.T) {
	nodes := []*ir.Node{
		node(0, []string{"Frozen"}, "Position"),
		node(1, nil, "Position", "Velocity"),
		node(2, nil, "Position"),
		node(3, []string{"Frozen"}, "Position"),
		node(4, nil, "Position", "Velocity"),
	}

	decls, conflicts := Dedup(nodes)

	want := []Decl{
		{Name: "query_Position", Types: []string{"Position"}, Exclusions: []string{"Frozen"}},
		{Name: "query_Position_Velocity", Types: []string{"Position", "Velocity"}},
	}
	if diff := cmp.Diff(want, decls); diff != "" {
		t.Errorf("decls mismatch (-want +got):\n%s", diff)
	}

	// Node 3 repeats the first exclusions exactly and is not a conflict.
	wantConflicts := []Conflict{
		{Name: "query_Position", Node: ir.Key{ID: 2}, Kept: []string{"Frozen"}},
	}
	if diff := cmp.Diff(wantConflicts, conflicts); diff != "" {
		t.Errorf("conflicts mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupDoesNotAliasExclusions(t *testing.T) {
	n := node(0, []string{"A"}, "X")
	decls, _ := Dedup([]*ir.Node{n})
	n.Exclusions[0] = "B"
	assert.Equal(t, []string{"A"}, decls[0].Exclusions)
}

func TestStorageCollector(t *testing.T) {
	var c StorageCollector
	c.Add([]ir.Param{{Type: "Position"}, {Type: "Velocity"}})
	c.Add([]ir.Param{{Type: "Health"}, {Type: "Position"}})
	c.Add(nil)

	assert.Equal(t, []string{"Position", "Velocity", "Health"}, c.Types())
}
