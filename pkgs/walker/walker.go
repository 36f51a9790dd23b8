// Package walker builds the node registry of an update method: it scans the
// body for iteration calls, recursing into their lambdas, and assigns every
// call a (depth, id) key from a counter owned by the walk.
package walker

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strings"

	"go.uber.org/zap"

	"github.com/aledsdavies/ecsgen/core/ast"
	"github.com/aledsdavies/ecsgen/core/invariant"
	"github.com/aledsdavies/ecsgen/core/ir"
	"github.com/aledsdavies/ecsgen/pkgs/classify"
	"github.com/aledsdavies/ecsgen/pkgs/signature"
)

// TruncatedComment replaces an iteration call nested beyond ir.MaxDepth.
var TruncatedComment = fmt.Sprintf("// ecsgen: iteration nested deeper than %d levels omitted", ir.MaxDepth)

// Options configure a walk.
type Options struct {
	Names       classify.Names
	QueryPrefix string
	Logger      *zap.Logger
}

// DefaultOptions returns the standard DSL names and query prefix.
func DefaultOptions() Options {
	return Options{
		Names:       classify.DefaultNames(),
		QueryPrefix: signature.DefaultPrefix,
	}
}

type walker struct {
	opts       Options
	log        *zap.Logger
	nextID     uint
	info       *ir.MethodInfo
	storage    signature.StorageCollector
	signatures ir.OrderedSet
}

// Walk analyses one method. Each call owns its counter and registry, so
// independent methods can be walked concurrently.
func Walk(m *ast.Method, opts Options) (*ir.MethodInfo, error) {
	invariant.NotNil(m, "method")
	invariant.Precondition(opts.Names.Each != "", "combinator name must be set")
	if opts.QueryPrefix == "" {
		opts.QueryPrefix = signature.DefaultPrefix
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	w := &walker{
		opts: opts,
		log:  log.With(zap.String("system", m.System)),
		info: &ir.MethodInfo{
			System:   m.System,
			Package:  m.Package,
			Receiver: m.Receiver,
			Imports:  m.Imports,
			Pos:      m.Pos,
			Nodes:    ir.NewArena(),
		},
	}

	for _, st := range m.Body {
		switch r := classify.Classify(st, opts.Names).(type) {
		case classify.Iteration:
			n, err := w.node(r, 0)
			if err != nil {
				return nil, err
			}
			w.info.Preamble.AppendHole(n.Key)
			w.info.TopLevel = append(w.info.TopLevel, n.Key)
		case classify.Plain:
			w.info.Preamble.AppendText(w.plain(r.Text, r.Pos, r.Diag))
		case classify.ExclusionChain:
			w.info.Preamble.AppendText(w.plain(r.Text, r.Pos, r.Diag))
		}
	}

	w.info.StorageTypes = w.storage.Types()
	w.info.SignatureNames = w.signatures.Items()

	invariant.Postcondition(w.reachable() == w.info.Nodes.Len(),
		"%d nodes registered but not every one is reachable from a top-level iteration", w.info.Nodes.Len())

	w.log.Debug("method walked",
		zap.Int("nodes", w.info.Nodes.Len()),
		zap.Int("top_level", len(w.info.TopLevel)),
		zap.Strings("storage", w.info.StorageTypes),
		zap.Strings("signatures", w.info.SignatureNames))

	return w.info, nil
}

// node registers an iteration at depth and walks its lambda body.
func (w *walker) node(it classify.Iteration, depth uint) (*ir.Node, error) {
	invariant.InRange(int(depth), 0, ir.MaxDepth-1, "depth")

	n := &ir.Node{
		Key:        ir.Key{Depth: depth, ID: w.nextID},
		Exclusions: it.Exclusions,
		Pos:        it.Pos,
	}
	w.nextID++

	for _, p := range it.Params {
		if p.Type == "" {
			w.diag(ir.Warnf(it.Pos, "parameter %s has no component type and is ignored", p.Name))
			continue
		}
		if p.Name != "" && p.Name == w.info.Receiver {
			w.diag(ir.Warnf(it.Pos, "parameter %s shadows the receiver; generated field accesses will not resolve", p.Name))
		}
		n.Params = append(n.Params, ir.Param{Type: p.Type, Name: p.Name})
	}
	n.Signature = signature.Name(w.opts.QueryPrefix, n.Types())

	if err := w.info.Nodes.Register(n); err != nil {
		return nil, err
	}
	w.storage.Add(n.Params)
	w.signatures.Add(n.Signature)
	for _, d := range it.Diags {
		w.diag(d)
	}

	w.log.Debug("iteration node",
		zap.Stringer("key", n.Key),
		zap.String("signature", n.Signature),
		zap.Strings("exclusions", n.Exclusions))

	for _, st := range it.Body {
		switch r := classify.Classify(st, w.opts.Names).(type) {
		case classify.Iteration:
			if depth+1 >= ir.MaxDepth {
				w.diag(ir.Warnf(r.Pos, "%s nested deeper than %d levels is not expanded", w.opts.Names.Each, ir.MaxDepth))
				n.Body.AppendText(TruncatedComment)
				continue
			}
			child, err := w.node(r, depth+1)
			if err != nil {
				return nil, err
			}
			n.Body.AppendHole(child.Key)
		case classify.Plain:
			if startsWithReturn(r.Text) {
				w.diag(ir.Warnf(r.Pos, "return inside an expanded %s body leaves UpdateGenerated instead of skipping the entity; use continue", w.opts.Names.Each))
			}
			n.Body.AppendText(w.plain(r.Text, r.Pos, r.Diag))
		case classify.ExclusionChain:
			n.Body.AppendText(w.plain(r.Text, r.Pos, r.Diag))
		}
	}
	return n, nil
}

// reachable counts the registered nodes found by following holes down from
// the top-level iterations.
func (w *walker) reachable() int {
	count := 0
	stack := append([]ir.Key(nil), w.info.TopLevel...)
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := w.info.Nodes.Lookup(key)
		if !ok {
			continue
		}
		count++
		for _, seg := range n.Body {
			if h, ok := seg.(ir.Hole); ok {
				stack = append(stack, h.Key)
			}
		}
	}
	return count
}

// startsWithReturn reports whether the first token of src is return.
func startsWithReturn(src string) bool {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var s scanner.Scanner
	s.Init(file, []byte(src), func(token.Position, string) {}, 0)
	_, tok, _ := s.Scan()
	return tok == token.RETURN
}

// plain records the diagnostics of a passthrough statement and returns its text.
func (w *walker) plain(text string, pos ast.Position, d *ir.Diagnostic) string {
	switch {
	case d != nil:
		w.diag(*d)
	case strings.Contains(text, "."+w.opts.Names.Each+"("):
		w.diag(ir.Infof(pos, "%s call inside a compound statement is not expanded", w.opts.Names.Each))
	}
	return text
}

func (w *walker) diag(d ir.Diagnostic) {
	w.info.Diagnostics = append(w.info.Diagnostics, d)
	w.log.Debug("diagnostic", zap.Stringer("diagnostic", d))
}
