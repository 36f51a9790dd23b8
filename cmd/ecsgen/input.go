package main

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/aledsdavies/ecsgen/core/ast"
	"github.com/aledsdavies/ecsgen/pkgs/classify"
	"github.com/aledsdavies/ecsgen/pkgs/config"
	"github.com/aledsdavies/ecsgen/pkgs/engine"
	ecserrors "github.com/aledsdavies/ecsgen/pkgs/errors"
	"github.com/aledsdavies/ecsgen/pkgs/frontend"
	"github.com/aledsdavies/ecsgen/pkgs/generator"
	"github.com/aledsdavies/ecsgen/pkgs/walker"
)

// pkgInput is the set of methods of one output directory.
type pkgInput struct {
	dir     string
	methods []*ast.Method
}

func engineOptions(cfg *config.Config, log *zap.Logger) engine.Options {
	return engine.Options{
		Walk: walker.Options{
			Names:       classify.Names{Each: cfg.Names.Each, Without: cfg.Names.Without},
			QueryPrefix: cfg.QueryPrefix,
		},
		Generate: generator.Options{
			RuntimeImport: cfg.RuntimeImport,
			PoolPrefix:    cfg.PoolPrefix,
			OutputSuffix:  cfg.OutputSuffix,
			EachName:      cfg.Names.Each,
			Format:        cfg.Format,
		},
		Jobs:   cfg.Jobs,
		Strict: cfg.Strict,
		Logger: log,
	}
}

func frontendOptions(cfg *config.Config, log *zap.Logger) frontend.Options {
	return frontend.Options{
		Base:         cfg.Names.Base,
		Method:       cfg.Names.Method,
		OutputSuffix: cfg.OutputSuffix,
		Logger:       log,
	}
}

// loadInputs reads the methods to process: from --input-json when given,
// otherwise from the Go packages in dirs (the working directory by default).
func (a *app) loadInputs(dirs []string) ([]pkgInput, error) {
	if a.inputJSON != "" {
		methods, err := a.readJSON()
		if err != nil {
			return nil, err
		}
		return []pkgInput{{dir: a.outDir, methods: methods}}, nil
	}

	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	inputs := make([]pkgInput, 0, len(dirs))
	total := 0
	for _, dir := range dirs {
		methods, err := a.parseDir(dir)
		if err != nil {
			return nil, err
		}
		total += len(methods)
		inputs = append(inputs, pkgInput{dir: dir, methods: methods})
	}
	if total == 0 {
		return nil, errorf(ecserrors.ErrNoSystems, "no systems embedding %s found in %v", a.cfg.Names.Base, dirs)
	}
	return inputs, nil
}

func (a *app) parseDir(dir string) ([]*ast.Method, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, ecserrors.NewInputError(dir, err)
	}
	if !info.IsDir() {
		return nil, errorf(ecserrors.ErrInvalidInput, "%s is not a directory", dir)
	}
	methods, err := frontend.ParseDir(dir, frontendOptions(a.cfg, a.log))
	if err != nil {
		return nil, ecserrors.NewFrontendError(dir, err)
	}
	a.log.Debug("parsed package", zap.String("dir", dir), zap.Int("systems", len(methods)))
	return methods, nil
}

func (a *app) readJSON() ([]*ast.Method, error) {
	var r io.Reader = os.Stdin
	if a.inputJSON != "-" {
		f, err := os.Open(a.inputJSON)
		if err != nil {
			return nil, ecserrors.NewInputError(a.inputJSON, err)
		}
		defer f.Close()
		r = f
	}

	doc, err := ast.Decode(r)
	if err != nil {
		return nil, ecserrors.Wrap(ecserrors.ErrInputDecode, "invalid method description "+a.inputJSON, err).
			WithContext("path", a.inputJSON)
	}
	if len(doc.Methods) == 0 {
		return nil, errorf(ecserrors.ErrNoSystems, "%s describes no methods", a.inputJSON)
	}
	return doc.Methods, nil
}
