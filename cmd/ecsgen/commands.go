package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aledsdavies/ecsgen/core/ir"
	"github.com/aledsdavies/ecsgen/core/irfmt"
	"github.com/aledsdavies/ecsgen/pkgs/config"
	"github.com/aledsdavies/ecsgen/pkgs/engine"
	ecserrors "github.com/aledsdavies/ecsgen/pkgs/errors"
	"github.com/aledsdavies/ecsgen/pkgs/watch"
)

func (a *app) generateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [dir...]",
		Short: "Write a generated unit next to every system",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context(), args)
		},
	}
}

func (a *app) generate(ctx context.Context, dirs []string) error {
	inputs, err := a.loadInputs(dirs)
	if err != nil {
		return err
	}

	eng := a.engine()
	var failed []error
	for _, in := range inputs {
		batch, err := eng.Generate(ctx, in.methods)
		if err != nil {
			return err
		}
		DisplayDiagnostics(a.stderr, batch, a.useColor())

		written, err := engine.WriteUnits(in.dir, batch)
		for _, path := range written {
			fmt.Fprintf(a.stdout, "wrote %s\n", path)
		}
		if err != nil {
			return err
		}
		if batch.Failed() > 0 {
			failed = append(failed, batch.Err())
		}
	}
	if len(failed) > 0 {
		return ecserrors.Wrap(ecserrors.ErrCodeGeneration, "some systems were not generated", errors.Join(failed...))
	}
	return nil
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir...]",
		Short: "Fail when a generated unit is missing or out of date",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.loadInputs(args)
			if err != nil {
				return err
			}

			eng := a.engine()
			var stale, failed []error
			for _, in := range inputs {
				batch, err := eng.Generate(cmd.Context(), in.methods)
				if err != nil {
					return err
				}
				DisplayDiagnostics(a.stderr, batch, a.useColor())
				if batch.Failed() > 0 {
					failed = append(failed, batch.Err())
				}
				stale = append(stale, engine.Stale(in.dir, batch)...)
			}

			if len(failed) > 0 {
				return ecserrors.Wrap(ecserrors.ErrCodeGeneration, "some systems cannot be generated", errors.Join(failed...))
			}
			if len(stale) > 0 {
				return ecserrors.Wrap(ecserrors.ErrStaleOutput, fmt.Sprintf("%d generated units are stale", len(stale)), errors.Join(stale...))
			}
			fmt.Fprintln(a.stdout, "all generated units are up to date")
			return nil
		},
	}
}

func (a *app) inspectCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect [dir...]",
		Short: "Print the analysed form of every system",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := irfmt.ParseFormat(format)
			if err != nil {
				return ecserrors.Wrap(ecserrors.ErrInvalidInput, "invalid --format", err)
			}
			inputs, err := a.loadInputs(args)
			if err != nil {
				return err
			}

			eng := a.engine()
			var infos []*ir.MethodInfo
			var failed []error
			for _, in := range inputs {
				batch, err := eng.Analyze(cmd.Context(), in.methods)
				if err != nil {
					return err
				}
				for i := range batch {
					if batch[i].Info != nil {
						infos = append(infos, batch[i].Info)
					}
				}
				if batch.Failed() > 0 {
					failed = append(failed, batch.Err())
				}
			}
			if err := irfmt.Dump(a.stdout, infos, f); err != nil {
				return ecserrors.Wrap(ecserrors.ErrOutputWrite, "cannot write dump", err)
			}
			if len(failed) > 0 {
				return ecserrors.Wrap(ecserrors.ErrAnalysis, "some systems cannot be analysed", errors.Join(failed...))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Dump format: yaml, json or cbor")
	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Regenerate units whenever sources change",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.inputJSON != "" {
				return errorf(ecserrors.ErrInvalidInput, "watch works on Go sources only")
			}
			dirs := args
			if len(dirs) == 0 {
				dirs = []string{"."}
			}
			ctx := cmd.Context()

			if err := a.generate(ctx, dirs); err != nil {
				FormatError(a.stderr, err, a.useColor())
			}

			// Reloaded configuration is picked up by the next rebuild.
			var reloaded atomic.Pointer[config.Config]
			if a.v.ConfigFileUsed() != "" {
				config.OnChange(a.v, func(cfg *config.Config, err error) {
					if err != nil {
						a.log.Error("configuration reload failed", zap.Error(err))
						return
					}
					reloaded.Store(cfg)
					a.log.Info("configuration reloaded")
				})
			}

			w, err := watch.New(dirs, func(ctx context.Context, changed []string) error {
				if cfg := reloaded.Swap(nil); cfg != nil {
					a.cfg = cfg
				}
				return a.generate(ctx, changed)
			}, watch.Options{OutputSuffix: a.cfg.OutputSuffix, Logger: a.log})
			if err != nil {
				return ecserrors.Wrap(ecserrors.ErrWatch, "cannot watch sources", err)
			}
			return w.Run(ctx)
		},
	}
}
