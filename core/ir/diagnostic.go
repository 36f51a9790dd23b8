package ir

import (
	"fmt"

	"github.com/aledsdavies/ecsgen/core/ast"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal finding of the analysis.
type Diagnostic struct {
	Severity   Severity
	Pos        ast.Position
	Message    string
	Suggestion string
}

func (d Diagnostic) String() string {
	msg := fmt.Sprintf("%s: %s", d.Severity, d.Message)
	if d.Pos.IsValid() || d.Pos.File != "" {
		msg = d.Pos.String() + ": " + msg
	}
	if d.Suggestion != "" {
		msg += " (" + d.Suggestion + ")"
	}
	return msg
}

// Warnf builds a warning diagnostic.
func Warnf(pos ast.Position, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Infof builds an informational diagnostic.
func Infof(pos ast.Position, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityInfo, Pos: pos, Message: fmt.Sprintf(format, args...)}
}
