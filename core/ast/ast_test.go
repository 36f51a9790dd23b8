package ast

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moveJSON = `{
  "methods": [
    {
      "system": "MoveSystem",
      "package": "game",
      "receiver": "s",
      "imports": [{"path": "fmt"}, {"name": "m", "path": "math"}],
      "pos": {"file": "move_update.go", "line": 10, "column": 1},
      "body": [
        {"kind": "text", "src": "dt := float32(0.5)"},
        {
          "kind": "call",
          "src": "s.Entities.Without[Frozen]().Each(func(p *Position) { p.X += dt })",
          "chain": [{"name": "Without", "type_args": ["Frozen"]}, {"name": "Each"}],
          "lambda": {
            "params": [{"type": "Position", "name": "p"}],
            "has_body": true,
            "body": [{"kind": "text", "src": "p.X += dt"}]
          }
        }
      ]
    }
  ]
}`

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(moveJSON))
	require.NoError(t, err)
	require.Len(t, doc.Methods, 1)

	want := &Method{
		System:   "MoveSystem",
		Package:  "game",
		Receiver: "s",
		Imports:  []Import{{Path: "fmt"}, {Name: "m", Path: "math"}},
		Pos:      Position{File: "move_update.go", Line: 10, Column: 1},
		Body: []Stmt{
			&Text{Src: "dt := float32(0.5)"},
			&Call{
				Src:   "s.Entities.Without[Frozen]().Each(func(p *Position) { p.X += dt })",
				Chain: []Member{{Name: "Without", TypeArgs: []string{"Frozen"}}, {Name: "Each"}},
				Lambda: &Lambda{
					Params:  []Param{{Type: "Position", Name: "p"}},
					HasBody: true,
					Body:    []Stmt{&Text{Src: "p.X += dt"}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, doc.Methods[0]); diff != "" {
		t.Errorf("decoded method mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(moveJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))

	again, err := Decode(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{"methods": [`},
		{"missing methods", `{}`},
		{"unknown field", `{"methods": [], "extra": 1}`},
		{"bad system name", `{"methods": [{"system": "1x", "body": []}]}`},
		{"unknown kind", `{"methods": [{"system": "S", "body": [{"kind": "loop", "src": ""}]}]}`},
		{"call without chain", `{"methods": [{"system": "S", "body": [{"kind": "call", "src": "f()"}]}]}`},
		{"lambda without has_body", `{"methods": [{"system": "S", "body": [{"kind": "call", "src": "x", "chain": [{"name": "Each"}], "lambda": {"params": []}}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "a.go:3:4", Position{File: "a.go", Line: 3, Column: 4}.String())
	assert.Equal(t, "3:4", Position{Line: 3, Column: 4}.String())
	assert.Equal(t, "a.go", Position{File: "a.go"}.String())
	assert.False(t, Position{}.IsValid())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, `"fmt"`, Import{Path: "fmt"}.String())
	assert.Equal(t, `m "math"`, Import{Name: "m", Path: "math"}.String())
	assert.Equal(t, "Each()", Member{Name: "Each"}.String())
	assert.Equal(t, "Without[A, B]()", Member{Name: "Without", TypeArgs: []string{"A", "B"}}.String())
	assert.Equal(t, "p *Position", Param{Type: "Position", Name: "p"}.String())

	c := &Call{Chain: []Member{{Name: "Without"}, {Name: "Each"}}}
	last, ok := c.Outermost()
	assert.True(t, ok)
	assert.Equal(t, "Each", last.Name)
	_, ok = (&Call{}).Outermost()
	assert.False(t, ok)
}
