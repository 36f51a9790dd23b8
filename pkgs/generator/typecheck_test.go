package generator

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/ecsgen/codegen"
	dsl "github.com/aledsdavies/ecsgen/core/ast"
)

const ecsImportPath = "github.com/aledsdavies/ecsgen/ecs"

// runtimeImporter resolves the ecs runtime from its source in this module and
// everything else from the standard library.
type runtimeImporter struct {
	fset *token.FileSet
	std  types.Importer
	ecs  *types.Package
}

func (im *runtimeImporter) Import(path string) (*types.Package, error) {
	if path != ecsImportPath {
		return im.std.Import(path)
	}
	if im.ecs != nil {
		return im.ecs, nil
	}

	dir := filepath.Join("..", "..", "ecs")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(im.fset, filepath.Join(dir, name), nil, 0)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	conf := types.Config{Importer: im.std}
	pkg, err := conf.Check(ecsImportPath, im.fset, files, nil)
	if err != nil {
		return nil, err
	}
	im.ecs = pkg
	return pkg, nil
}

// typeCheck compiles the unit together with support, the hand-written half
// of the package, and fails on any type error.
func typeCheck(t *testing.T, unit *Unit, support string) {
	t.Helper()
	fset := token.NewFileSet()

	gen, err := parser.ParseFile(fset, unit.FileName, unit.Source, 0)
	require.NoError(t, err)
	hand, err := parser.ParseFile(fset, "support.go", support, 0)
	require.NoError(t, err)

	var errs []string
	conf := types.Config{
		Importer: &runtimeImporter{fset: fset, std: importer.Default()},
		Error:    func(err error) { errs = append(errs, err.Error()) },
	}
	_, _ = conf.Check(hand.Name.Name, fset, []*ast.File{gen, hand}, nil)
	require.Empty(t, errs, "generated unit:\n%s", unit.Source)
}

const gameSupport = `package game

import "github.com/aledsdavies/ecsgen/ecs"

type Position struct{ X, Y float32 }
type Velocity struct{ X, Y float32 }
type Health struct{ HP int }
type Frozen struct{}

type %[1]s struct {
	ecs.UpdateSystem
	%[2]s
}

func collide(a, b *Position) bool { return a == b }
`

func support(system string) string {
	return fmt.Sprintf(gameSupport, system, codegen.LowerFirst(system)+StateSuffix)
}

func TestGeneratedUnitsTypeCheck(t *testing.T) {
	tests := []struct {
		name string
		body []dsl.Stmt
	}{
		{"nested", moveMethod().Body},
		{"siblings", []dsl.Stmt{
			eachWithout([][]string{{"Frozen"}}, []dsl.Param{param("Position", "p"), param("Velocity", "v")},
				text("p.X += v.X"),
			),
			each([]dsl.Param{param("Health", "h")}, text("h.HP--")),
		}},
		{"child rebinds parent name", []dsl.Stmt{
			each([]dsl.Param{param("Position", "p")},
				each([]dsl.Param{param("Position", "p")}, text("p.X++")),
			),
		}},
		{"child reads parent binding", []dsl.Stmt{
			each([]dsl.Param{param("Position", "a")},
				each([]dsl.Param{param("Position", "b")}, text("_ = collide(a, b)")),
			),
		}},
		{"unused and blank bindings", []dsl.Stmt{
			each([]dsl.Param{param("Position", "p"), param("Frozen", "_")},
				each([]dsl.Param{param("Health", "h")}, text("h.HP = 0")),
			),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &dsl.Method{System: "TestSystem", Package: "game", Receiver: "s", Body: tt.body}
			unit, err := Generate(walk(t, m), DefaultOptions())
			require.NoError(t, err)
			typeCheck(t, unit, support(m.System))
		})
	}
}
