// Package frontend reads Go packages and extracts the update methods of
// systems in the structured form the walker consumes.
//
// A system is a struct type whose first field embeds UpdateSystem. Its Update
// method is usually kept in a file guarded by a build tag so the DSL never
// reaches the compiler; build constraints are therefore ignored here.
package frontend

import (
	"fmt"
	goast "go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aledsdavies/ecsgen/codegen"
	"github.com/aledsdavies/ecsgen/core/ast"
)

// Options configure system discovery.
type Options struct {
	// Base is the name of the embedded marker type.
	Base string
	// Method is the name of the analysed method.
	Method string
	// OutputSuffix identifies generated files, which are skipped.
	OutputSuffix string
	Logger       *zap.Logger
}

// DefaultOptions returns the standard discovery names.
func DefaultOptions() Options {
	return Options{Base: "UpdateSystem", Method: "Update", OutputSuffix: "_ecs.go"}
}

type sourceFile struct {
	name string
	src  []byte
	file *goast.File
}

// ParseDir parses every Go file of dir, except tests and generated units,
// and returns the update method of each system in source order.
func ParseDir(dir string, opts Options) ([]*ast.Method, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if opts.OutputSuffix != "" && strings.HasSuffix(name, opts.OutputSuffix) {
			continue
		}
		names = append(names, filepath.Join(dir, name))
	}
	sort.Strings(names)

	files := make(map[string][]byte, len(names))
	for _, name := range names {
		src, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		files[name] = src
	}
	return ParseFiles(files, opts)
}

// ParseFiles is ParseDir over in-memory sources keyed by file name. All files
// must belong to one package.
func ParseFiles(files map[string][]byte, opts Options) ([]*ast.Method, error) {
	def := DefaultOptions()
	if opts.Base == "" {
		opts.Base = def.Base
	}
	if opts.Method == "" {
		opts.Method = def.Method
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	fset := token.NewFileSet()
	parsed := make([]*sourceFile, 0, len(names))
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, files[name], parser.ParseComments)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, &sourceFile{name: name, src: files[name], file: f})
	}

	systems := findSystems(parsed, opts.Base)
	if len(systems) == 0 {
		return nil, nil
	}

	var methods []*ast.Method
	found := make(map[string]bool)
	for _, sf := range parsed {
		for _, decl := range sf.file.Decls {
			fn, ok := decl.(*goast.FuncDecl)
			if !ok || fn.Body == nil || fn.Name.Name != opts.Method {
				continue
			}
			system, recv, ok := receiver(fn)
			if !ok || !systems[system] {
				continue
			}
			if found[system] {
				return nil, fmt.Errorf("%s: system %s declares %s twice", fset.Position(fn.Pos()), system, opts.Method)
			}
			found[system] = true

			c := &converter{fset: fset, file: sf}
			methods = append(methods, &ast.Method{
				System:   system,
				Package:  sf.file.Name.Name,
				Receiver: recv,
				Imports:  imports(sf.file),
				Body:     c.block(fn.Body),
				Pos:      c.position(fn.Pos()),
			})
		}
	}

	for system := range systems {
		if !found[system] {
			log.Warn("system has no update method", zap.String("system", system), zap.String("method", opts.Method))
		}
	}
	return methods, nil
}

// findSystems returns the struct types whose first field embeds base,
// either as base or pkg.base.
func findSystems(files []*sourceFile, base string) map[string]bool {
	systems := make(map[string]bool)
	for _, sf := range files {
		goast.Inspect(sf.file, func(n goast.Node) bool {
			ts, ok := n.(*goast.TypeSpec)
			if !ok {
				return true
			}
			st, ok := ts.Type.(*goast.StructType)
			if !ok || st.Fields == nil || len(st.Fields.List) == 0 {
				return false
			}
			first := st.Fields.List[0]
			if len(first.Names) == 0 && embeddedName(first.Type) == base {
				systems[ts.Name.Name] = true
			}
			return false
		})
	}
	return systems
}

func embeddedName(expr goast.Expr) string {
	switch t := expr.(type) {
	case *goast.Ident:
		return t.Name
	case *goast.SelectorExpr:
		return t.Sel.Name
	case *goast.StarExpr:
		return embeddedName(t.X)
	}
	return ""
}

// receiver returns the receiver type and name of a method.
func receiver(fn *goast.FuncDecl) (typ, name string, ok bool) {
	if fn.Recv == nil || len(fn.Recv.List) != 1 {
		return "", "", false
	}
	field := fn.Recv.List[0]
	expr := field.Type
	if star, ok := expr.(*goast.StarExpr); ok {
		expr = star.X
	}
	id, ok := expr.(*goast.Ident)
	if !ok {
		return "", "", false
	}
	if len(field.Names) == 1 {
		name = field.Names[0].Name
	}
	return id.Name, name, true
}

func imports(f *goast.File) []ast.Import {
	var out []ast.Import
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := ast.Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		out = append(out, imp)
	}
	return out
}

type converter struct {
	fset *token.FileSet
	file *sourceFile
}

func (c *converter) position(p token.Pos) ast.Position {
	pos := c.fset.Position(p)
	return ast.Position{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

func (c *converter) line(p token.Pos) int {
	return c.fset.Position(p).Line
}

func (c *converter) offset(p token.Pos) int {
	return c.fset.Position(p).Offset
}

// text returns the source of [from, to), widened to the start of the line
// when only indentation precedes it, and dedented.
func (c *converter) text(from, to token.Pos) string {
	start, end := c.offset(from), c.offset(to)
	lineStart := start
	for lineStart > 0 && (c.file.src[lineStart-1] == ' ' || c.file.src[lineStart-1] == '\t') {
		lineStart--
	}
	if lineStart == 0 || c.file.src[lineStart-1] == '\n' {
		start = lineStart
	}
	return codegen.Dedent(string(c.file.src[start:end]))
}

// block converts the statements of a block. Comment groups between
// statements are kept as text statements.
func (c *converter) block(b *goast.BlockStmt) []ast.Stmt {
	var out []ast.Stmt
	comments := c.commentsIn(b)
	ci := 0
	flush := func(before token.Pos) {
		for ci < len(comments) && comments[ci].Pos() < before {
			cg := comments[ci]
			out = append(out, &ast.Text{Src: c.text(cg.Pos(), cg.End()), Pos: c.position(cg.Pos())})
			ci++
		}
	}

	for _, st := range b.List {
		if _, ok := st.(*goast.EmptyStmt); ok {
			continue
		}
		flush(st.Pos())
		end := st.End()
		for ci < len(comments) && comments[ci].Pos() < end {
			ci++
		}
		// A comment that starts on the statement's last line stays with it.
		if ci < len(comments) && c.line(comments[ci].Pos()) == c.line(end) {
			end = comments[ci].End()
			ci++
		}
		out = append(out, c.stmt(st, end))
	}
	flush(b.Rbrace)
	return out
}

// commentsIn returns the comment groups inside the braces of b.
func (c *converter) commentsIn(b *goast.BlockStmt) []*goast.CommentGroup {
	var out []*goast.CommentGroup
	for _, cg := range c.file.file.Comments {
		if cg.Pos() > b.Lbrace && cg.End() <= b.Rbrace {
			out = append(out, cg)
		}
	}
	return out
}

// stmt converts st, whose source text runs to end.
func (c *converter) stmt(st goast.Stmt, end token.Pos) ast.Stmt {
	src := c.text(st.Pos(), end)
	pos := c.position(st.Pos())

	es, ok := st.(*goast.ExprStmt)
	if !ok {
		return &ast.Text{Src: src, Pos: pos}
	}
	call, ok := es.X.(*goast.CallExpr)
	if !ok {
		return &ast.Text{Src: src, Pos: pos}
	}
	chain := c.chain(call)
	if len(chain) == 0 {
		return &ast.Text{Src: src, Pos: pos}
	}

	out := &ast.Call{Src: src, Pos: pos, Chain: chain}
	for _, arg := range call.Args {
		if lit, ok := arg.(*goast.FuncLit); ok {
			out.Lambda = c.lambda(lit)
			break
		}
	}
	return out
}

// chain unwinds recv.A[T]().B(args) into [A[T], B]. Unwinding stops at the
// first receiver that is not itself a member call.
func (c *converter) chain(call *goast.CallExpr) []ast.Member {
	var members []ast.Member
	for call != nil {
		var (
			sel  *goast.SelectorExpr
			args []goast.Expr
		)
		switch fun := call.Fun.(type) {
		case *goast.SelectorExpr:
			sel = fun
		case *goast.IndexExpr:
			sel, _ = fun.X.(*goast.SelectorExpr)
			args = []goast.Expr{fun.Index}
		case *goast.IndexListExpr:
			sel, _ = fun.X.(*goast.SelectorExpr)
			args = fun.Indices
		}
		if sel == nil {
			break
		}

		m := ast.Member{Name: sel.Sel.Name}
		for _, a := range args {
			m.TypeArgs = append(m.TypeArgs, c.exprText(a))
		}
		members = append([]ast.Member{m}, members...)

		call, _ = sel.X.(*goast.CallExpr)
	}
	return members
}

func (c *converter) lambda(lit *goast.FuncLit) *ast.Lambda {
	l := &ast.Lambda{HasBody: lit.Body != nil}
	if lit.Type.Params != nil {
		for _, field := range lit.Type.Params.List {
			typ := strings.TrimPrefix(c.exprText(field.Type), "*")
			if len(field.Names) == 0 {
				l.Params = append(l.Params, ast.Param{Type: typ})
				continue
			}
			for _, n := range field.Names {
				l.Params = append(l.Params, ast.Param{Type: typ, Name: n.Name})
			}
		}
	}
	if lit.Body != nil {
		l.Body = c.block(lit.Body)
	}
	return l
}

func (c *converter) exprText(e goast.Expr) string {
	return string(c.file.src[c.offset(e.Pos()):c.offset(e.End())])
}
