// Package generator assembles the generated unit of a system: storage and
// query declarations, their initialisation and the expanded update body.
package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/tools/go/ast/astutil"

	srcast "github.com/aledsdavies/ecsgen/core/ast"
	"github.com/aledsdavies/ecsgen/codegen"
	"github.com/aledsdavies/ecsgen/core/invariant"
	"github.com/aledsdavies/ecsgen/core/ir"
	"github.com/aledsdavies/ecsgen/core/irfmt"
	"github.com/aledsdavies/ecsgen/pkgs/emitter"
	"github.com/aledsdavies/ecsgen/pkgs/signature"
)

const (
	// DefaultRuntimeImport is the package providing Pool, Query and World.
	DefaultRuntimeImport = "github.com/aledsdavies/ecsgen/ecs"
	// DefaultOutputSuffix names generated files: move_system_ecs.go.
	DefaultOutputSuffix = "_ecs.go"
	// DefaultPackage is used when the method carries no package name.
	DefaultPackage = "main"
	// DefaultReceiver is used when the update method has no named receiver.
	DefaultReceiver = "sys"
	// StateSuffix names the companion struct: moveSystemECS.
	StateSuffix = "ECS"
)

// Options configure unit assembly.
type Options struct {
	RuntimeImport string
	PoolPrefix    string
	OutputSuffix  string
	EachName      string
	// Format gofmts the unit and prunes unused passthrough imports.
	Format bool
}

// DefaultOptions returns the standard assembly options.
func DefaultOptions() Options {
	return Options{
		RuntimeImport: DefaultRuntimeImport,
		PoolPrefix:    emitter.DefaultPoolPrefix,
		OutputSuffix:  DefaultOutputSuffix,
		EachName:      "Each",
		Format:        true,
	}
}

// Unit is one generated file.
type Unit struct {
	System      string
	FileName    string
	Source      []byte
	Digest      string
	Diagnostics []ir.Diagnostic
}

// PoolDecl is a storage handle field.
type PoolDecl struct {
	Field string
	Type  string
	Init  string
}

// QueryDecl is a shared query field.
type QueryDecl struct {
	Field string
	Init  string
}

// TemplateData represents preprocessed data for template generation
type TemplateData struct {
	Source      string
	Digest      string
	PackageName string
	Imports     []string
	System      string
	StateType   string
	Recv        string
	Runtime     string
	Each        string
	Pools       []PoolDecl
	Queries     []QueryDecl
	Body        string
}

// Field qualifies a field with the receiver.
func (d TemplateData) Field(name string) string {
	return d.Recv + "." + name
}

// TemplateRegistry holds all template components
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all components
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: map[string]string{
			"header":  headerTemplate,
			"package": packageTemplate,
			"imports": importsTemplate,
			"state":   stateTemplate,
			"init":    initTemplate,
			"update":  updateTemplate,
		},
	}
}

// GetTemplate returns a specific template component
func (tr *TemplateRegistry) GetTemplate(name string) (string, bool) {
	tmpl, exists := tr.templates[name]
	return tmpl, exists
}

// GetAllTemplates returns all components followed by the master template.
// Components are emitted in a fixed order so parse errors are reproducible.
func (tr *TemplateRegistry) GetAllTemplates() string {
	order := []string{"header", "package", "imports", "state", "init", "update"}
	parts := make([]string, 0, len(order)+1)
	for _, name := range order {
		parts = append(parts, tr.templates[name])
	}
	parts = append(parts, masterTemplate)
	return strings.Join(parts, "\n")
}

// Generate assembles the unit for mi. The method info is not consumed: nodes
// are claimed from a clone of its registry. Any failure yields no output.
func Generate(mi *ir.MethodInfo, opts Options) (*Unit, error) {
	invariant.NotNil(mi, "method info")
	opts = withDefaults(opts)

	if err := mi.Validate(); err != nil {
		return nil, newRegistryError(mi.System, err)
	}

	digest, err := irfmt.Digest(mi)
	if err != nil {
		return nil, &GeneratorError{Message: "cannot compute digest", System: mi.System, ErrorType: "digest", Cause: err}
	}

	data, diags, err := PreprocessMethod(mi, opts)
	if err != nil {
		return nil, err
	}
	data.Digest = digest

	src, err := render(data)
	if err != nil {
		return nil, newTemplateError(mi.System, err)
	}
	if opts.Format {
		src, err = tidy(src)
		if err != nil {
			return nil, newFormatError(mi.System, err)
		}
	}

	return &Unit{
		System:      mi.System,
		FileName:    FileName(mi.System, opts.OutputSuffix),
		Source:      src,
		Digest:      digest,
		Diagnostics: append(append([]ir.Diagnostic(nil), mi.Diagnostics...), diags...),
	}, nil
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = def.RuntimeImport
	}
	if opts.PoolPrefix == "" {
		opts.PoolPrefix = def.PoolPrefix
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = def.OutputSuffix
	}
	if opts.EachName == "" {
		opts.EachName = def.EachName
	}
	return opts
}

// PreprocessMethod converts method info into template-ready data: the
// declarations and the expanded body.
func PreprocessMethod(mi *ir.MethodInfo, opts Options) (*TemplateData, []ir.Diagnostic, error) {
	opts = withDefaults(opts)
	runtime := path.Base(opts.RuntimeImport)

	recv := mi.Receiver
	if recv == "" || recv == "_" {
		recv = DefaultReceiver
	}
	pkg := mi.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	// Only the base name: the unit must not depend on where ecsgen ran.
	source := ""
	if mi.Pos.File != "" {
		source = filepath.Base(mi.Pos.File)
	}

	data := &TemplateData{
		Source:      source,
		PackageName: pkg,
		Imports:     importLines(mi.Imports, opts.RuntimeImport),
		System:      mi.System,
		StateType:   codegen.LowerFirst(mi.System) + StateSuffix,
		Recv:        recv,
		Runtime:     runtime,
		Each:        opts.EachName,
	}

	for _, t := range mi.StorageTypes {
		data.Pools = append(data.Pools, PoolDecl{
			Field: emitter.PoolName(opts.PoolPrefix, t),
			Type:  t,
			Init:  fmt.Sprintf("%s.GetPool[%s](world)", runtime, t),
		})
	}

	nodes := mi.Nodes
	if nodes == nil {
		nodes = ir.NewArena()
	}

	// Dedup must see the registry before the emitter drains it.
	decls, conflicts := signature.Dedup(nodes.Nodes())
	for _, d := range decls {
		data.Queries = append(data.Queries, QueryDecl{Field: d.Name, Init: queryInit(runtime, d)})
	}

	var diags []ir.Diagnostic
	for _, c := range conflicts {
		var pos srcast.Position
		if n, ok := nodes.Lookup(c.Node); ok {
			pos = n.Pos
		}
		d := ir.Warnf(pos, "query %s already filters [%s]; exclusions [%s] of %s are not applied",
			c.Name, strings.Join(c.Kept, ", "), strings.Join(c.Dropped, ", "), c.Node)
		diags = append(diags, d)
	}

	em := emitter.New(nodes.Clone(), emitter.Options{Receiver: recv, PoolPrefix: opts.PoolPrefix})
	parts := make([]string, 0, len(mi.Preamble))
	for _, seg := range mi.Preamble {
		switch s := seg.(type) {
		case ir.Text:
			parts = append(parts, string(s))
		case ir.Hole:
			loop, err := em.Render(s.Key)
			if err != nil {
				return nil, nil, newRegistryError(mi.System, err)
			}
			parts = append(parts, loop)
		}
	}
	data.Body = codegen.IndentCode(strings.Join(parts, "\n"), 1)

	return data, diags, nil
}

// queryInit builds the constructor chain of a shared query. Each exclusion
// becomes its own Without call, in declaration order.
func queryInit(runtime string, d signature.Decl) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.NewQuery(world", runtime)
	for _, t := range d.Types {
		fmt.Fprintf(&b, ", %s.TypeOf[%s]()", runtime, t)
	}
	b.WriteString(")")
	for _, t := range d.Exclusions {
		fmt.Fprintf(&b, ".Without(%s.TypeOf[%s]())", runtime, t)
	}
	return b.String()
}

// importLines merges the passthrough imports with the runtime import.
func importLines(imports []srcast.Import, runtimeImport string) []string {
	lines := []string{strconv.Quote(runtimeImport)}
	seen := map[string]bool{runtimeImport: true}
	for _, imp := range imports {
		if seen[imp.Path] {
			continue
		}
		seen[imp.Path] = true
		lines = append(lines, imp.String())
	}
	return lines
}

func render(data *TemplateData) ([]byte, error) {
	registry := NewTemplateRegistry()
	tmpl, err := template.New("unit").Parse(registry.GetAllTemplates())
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "main", data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("generated empty unit")
	}
	return buf.Bytes(), nil
}

// tidy drops passthrough imports the unit does not use and gofmts it.
func tidy(src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "unit.go", src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	// Deletion edits file.Imports in place.
	for _, imp := range slices.Clone(file.Imports) {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := importName(imp, importPath)
		if name == "" || usesName(file, name) {
			continue
		}
		explicit := ""
		if imp.Name != nil {
			explicit = imp.Name.Name
		}
		astutil.DeleteNamedImport(fset, file, explicit, importPath)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// importName returns the identifier an import is referenced by, or "" when
// the import must be kept regardless (blank, dot, or an unguessable name).
func importName(imp *ast.ImportSpec, importPath string) string {
	if imp.Name != nil {
		switch imp.Name.Name {
		case "_", ".":
			return ""
		}
		return imp.Name.Name
	}
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(importPath))
	}
	for _, r := range base {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return ""
		}
	}
	return base
}

func usesName(file *ast.File, name string) bool {
	used := false
	ast.Inspect(file, func(n ast.Node) bool {
		if used {
			return false
		}
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok && id.Name == name && id.Obj == nil {
			used = true
		}
		return true
	})
	return used
}

// FileName derives the generated file name from the system name:
// MoveSystem -> move_system_ecs.go.
func FileName(system, suffix string) string {
	var b strings.Builder
	runes := []rune(system)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String() + suffix
}
