package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aledsdavies/ecsgen/core/ir"
	"github.com/aledsdavies/ecsgen/pkgs/engine"
	ecserrors "github.com/aledsdavies/ecsgen/pkgs/errors"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + ColorReset
}

// ShouldUseColor determines if color output should be used.
// Respects --no-color and the NO_COLOR environment variable.
func ShouldUseColor(noColorFlag bool, f *os.File) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// DisplayDiagnostics prints the warnings of every unit in the batch, one per
// line, in the form file:line:col: severity: message.
func DisplayDiagnostics(w io.Writer, b engine.Batch, useColor bool) {
	for i := range b {
		for _, d := range b[i].Diagnostics() {
			if d.Severity < ir.SeverityWarning {
				continue
			}
			formatDiagnostic(w, b[i].System, d, useColor)
		}
	}
}

func formatDiagnostic(w io.Writer, system string, d ir.Diagnostic, useColor bool) {
	color := ColorYellow
	if d.Severity == ir.SeverityError {
		color = ColorRed
	}
	pos := d.Pos.String()
	if pos == "" {
		pos = system
	}
	_, _ = fmt.Fprintf(w, "%s: %s %s\n", Colorize(pos, ColorGray, useColor), Colorize(d.Severity.String()+":", color, useColor), d.Message)
	if d.Suggestion != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", Colorize(d.Suggestion, ColorCyan, useColor))
	}
}

// FormatError prints err, one line per joined cause.
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var ecsErr *ecserrors.EcsGenError
	if !errors.As(err, &ecsErr) {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err)
		return
	}

	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), ecsErr.Message)
	if joined, ok := ecsErr.Cause.(interface{ Unwrap() []error }); ok {
		for _, cause := range joined.Unwrap() {
			_, _ = fmt.Fprintf(w, "  %s\n", cause)
		}
		return
	}
	if ecsErr.Cause != nil {
		_, _ = fmt.Fprintf(w, "  %s\n", ecsErr.Cause)
	}
}
