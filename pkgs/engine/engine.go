// Package engine runs the analysis and generation of many methods. Every
// method is an independent unit: units are processed in parallel and a
// failure is reported against its unit only.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aledsdavies/ecsgen/core/ast"
	"github.com/aledsdavies/ecsgen/core/ir"
	ecserrors "github.com/aledsdavies/ecsgen/pkgs/errors"
	"github.com/aledsdavies/ecsgen/pkgs/generator"
	"github.com/aledsdavies/ecsgen/pkgs/walker"
)

// Options configure a batch.
type Options struct {
	Walk     walker.Options
	Generate generator.Options
	// Jobs bounds the number of methods processed at once; 0 means one per CPU.
	Jobs int
	// Strict turns warning diagnostics into unit failures.
	Strict bool
	Logger *zap.Logger
}

// Engine processes batches of methods.
type Engine struct {
	opts Options
	log  *zap.Logger
}

// New creates an engine.
func New(opts Options) *Engine {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	opts.Walk.Logger = log
	return &Engine{opts: opts, log: log}
}

// Analyze walks every method without generating units.
func (e *Engine) Analyze(ctx context.Context, methods []*ast.Method) (Batch, error) {
	return e.run(ctx, methods, false)
}

// Generate walks every method and assembles its unit.
func (e *Engine) Generate(ctx context.Context, methods []*ast.Method) (Batch, error) {
	return e.run(ctx, methods, true)
}

// run returns an error only when ctx is cancelled; method failures are
// carried in the batch.
func (e *Engine) run(ctx context.Context, methods []*ast.Method, generate bool) (Batch, error) {
	start := time.Now()
	batch := make(Batch, len(methods))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Jobs)
	for i, m := range methods {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			batch[i] = e.process(m, generate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.log.Info("batch complete",
		zap.Int("systems", len(batch)),
		zap.Int("failed", batch.Failed()),
		zap.Bool("generate", generate),
		zap.Duration("elapsed", time.Since(start)))
	return batch, nil
}

func (e *Engine) process(m *ast.Method, generate bool) (res Result) {
	res.System = m.System
	log := e.log.With(zap.String("system", m.System))

	// A panic is an invariant violation in this unit; report it as a failure
	// of the unit instead of taking down the batch.
	defer func() {
		if r := recover(); r != nil {
			res.Unit = nil
			res.Err = ecserrors.New(ecserrors.ErrAnalysis, fmt.Sprintf("%s: %v", m.System, r)).
				WithContext("system", m.System)
			log.Error("unit aborted", zap.Any("panic", r))
		}
	}()

	info, err := walker.Walk(m, e.opts.Walk)
	if err != nil {
		res.Err = ecserrors.Wrap(ecserrors.ErrAnalysis, "cannot analyse "+m.System, err).
			WithContext("system", m.System)
		log.Error("analysis failed", zap.Error(err))
		return res
	}
	res.Info = info

	if generate {
		unit, err := generator.Generate(info, e.opts.Generate)
		if err != nil {
			errType := ecserrors.ErrCodeGeneration
			if generator.IsRegistryError(err) {
				errType = ecserrors.ErrRegistry
			}
			res.Err = ecserrors.Wrap(errType, "cannot generate "+m.System, err).
				WithContext("system", m.System)
			log.Error("generation failed", zap.Error(err))
			return res
		}
		res.Unit = unit
	}

	for _, d := range res.Diagnostics() {
		logDiagnostic(log, d)
	}

	if e.opts.Strict {
		if d, ok := firstWarning(res.Diagnostics()); ok {
			res.Unit = nil
			res.Err = ecserrors.New(ecserrors.ErrStrictDiag, d.String()).
				WithContext("system", m.System)
		}
	}
	return res
}

func firstWarning(diags []ir.Diagnostic) (ir.Diagnostic, bool) {
	for _, d := range diags {
		if d.Severity >= ir.SeverityWarning {
			return d, true
		}
	}
	return ir.Diagnostic{}, false
}

func logDiagnostic(log *zap.Logger, d ir.Diagnostic) {
	fields := []zap.Field{zap.Stringer("pos", d.Pos)}
	if d.Suggestion != "" {
		fields = append(fields, zap.String("suggestion", d.Suggestion))
	}
	switch d.Severity {
	case ir.SeverityError:
		log.Error(d.Message, fields...)
	case ir.SeverityWarning:
		log.Warn(d.Message, fields...)
	default:
		log.Info(d.Message, fields...)
	}
}
