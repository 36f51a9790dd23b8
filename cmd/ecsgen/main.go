// Command ecsgen expands the iteration DSL of ECS systems into index loops.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/aledsdavies/ecsgen/pkgs/config"
	"github.com/aledsdavies/ecsgen/pkgs/engine"
	ecserrors "github.com/aledsdavies/ecsgen/pkgs/errors"
	"github.com/aledsdavies/ecsgen/pkgs/logging"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitIOError          = 2
	ExitParseError       = 3
	ExitGenerationError  = 4
	ExitStaleOutput      = 5
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	stdout io.Writer
	stderr io.Writer

	v   *viper.Viper
	cfg *config.Config
	log *zap.Logger

	configFile string
	inputJSON  string
	outDir     string
	noColor    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, v: config.New()}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err != nil {
		FormatError(stderr, err, a.useColor())
	}
	return exitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ecsgen",
		Short:         "Generate index loops from ECS system update methods",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Path to ecsgen.yaml (default: ./ecsgen.yaml when present)")
	pf.StringVar(&a.inputJSON, "input-json", "", "Read method descriptions from a JSON file instead of Go sources (- for stdin)")
	pf.StringVarP(&a.outDir, "out", "o", ".", "Output directory for units generated from --input-json")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	pf.String("each", "", "Name of the iteration combinator")
	pf.String("without", "", "Name of the exclusion filter")
	pf.String("query-prefix", "", "Prefix of generated query fields")
	pf.String("pool-prefix", "", "Prefix of generated storage fields")
	pf.String("runtime-import", "", "Import path of the ECS runtime package")
	pf.String("output-suffix", "", "Suffix of generated files")
	pf.IntP("jobs", "j", 0, "Number of systems processed in parallel (0: one per CPU)")
	pf.Bool("format", true, "Format generated units and prune unused imports")
	pf.Bool("strict", false, "Treat warnings as errors")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Also write JSON logs to this rotating file")

	root.AddCommand(
		a.generateCommand(),
		a.checkCommand(),
		a.inspectCommand(),
		a.watchCommand(),
	)
	return root
}

// setup loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.BindFlags(a.v, cmd.Root().PersistentFlags()); err != nil {
		return ecserrors.Wrap(ecserrors.ErrConfigLoad, "cannot bind flags", err)
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return ecserrors.Wrap(ecserrors.ErrConfigLoad, "invalid configuration", err)
	}
	a.cfg = cfg
	a.log = logging.New("ecsgen", cfg.Log, a.stderr)
	a.log.Debug("configuration loaded",
		zap.String("file", a.v.ConfigFileUsed()),
		zap.Int("jobs", cfg.Jobs),
		zap.Bool("strict", cfg.Strict))
	return nil
}

func (a *app) engine() *engine.Engine {
	return engine.New(engineOptions(a.cfg, a.log))
}

func (a *app) useColor() bool {
	f, ok := a.stderr.(*os.File)
	return ok && ShouldUseColor(a.noColor, f)
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	errType, ok := ecserrors.TypeOf(err)
	if !ok {
		return ExitInvalidArguments
	}
	switch errType {
	case ecserrors.ErrInputRead, ecserrors.ErrOutputWrite, ecserrors.ErrWatch:
		return ExitIOError
	case ecserrors.ErrInputDecode, ecserrors.ErrFrontend, ecserrors.ErrNoSystems:
		return ExitParseError
	case ecserrors.ErrAnalysis, ecserrors.ErrRegistry, ecserrors.ErrStrictDiag,
		ecserrors.ErrCodeGeneration, ecserrors.ErrFormat:
		return ExitGenerationError
	case ecserrors.ErrStaleOutput:
		return ExitStaleOutput
	default:
		return ExitInvalidArguments
	}
}

func errorf(errType, format string, args ...any) error {
	return ecserrors.New(errType, fmt.Sprintf(format, args...))
}
