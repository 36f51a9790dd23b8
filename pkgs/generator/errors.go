package generator

import (
	"fmt"
	"strings"
)

// GeneratorError provides error reporting for one generated unit
type GeneratorError struct {
	Message   string
	System    string
	ErrorType string // "registry", "template", "format"
	Cause     error
}

func (e *GeneratorError) Error() string {
	var builder strings.Builder

	if e.ErrorType != "" {
		builder.WriteString(fmt.Sprintf("[%s] ", e.ErrorType))
	}
	if e.System != "" {
		builder.WriteString(fmt.Sprintf("error in system '%s': %s", e.System, e.Message))
	} else {
		builder.WriteString(fmt.Sprintf("generator error: %s", e.Message))
	}
	if e.Cause != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Cause.Error())
	}

	return builder.String()
}

func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

func newRegistryError(system string, cause error) *GeneratorError {
	return &GeneratorError{Message: "cannot resolve nested iteration", System: system, ErrorType: "registry", Cause: cause}
}

func newTemplateError(system string, cause error) *GeneratorError {
	return &GeneratorError{Message: "cannot render unit", System: system, ErrorType: "template", Cause: cause}
}

func newFormatError(system string, cause error) *GeneratorError {
	return &GeneratorError{Message: "generated unit is not valid Go", System: system, ErrorType: "format", Cause: cause}
}

// IsRegistryError reports whether err is a registry consistency failure.
func IsRegistryError(err error) bool {
	genErr, ok := err.(*GeneratorError)
	return ok && genErr.ErrorType == "registry"
}

// ErrorCollector collects the failures of independent units in a batch
type ErrorCollector struct {
	errors []error
}

func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

func (ec *ErrorCollector) Add(err error) {
	if err != nil {
		ec.errors = append(ec.errors, err)
	}
}

func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.errors) > 0
}

func (ec *ErrorCollector) Errors() []error {
	return ec.errors
}

func (ec *ErrorCollector) Error() error {
	if !ec.HasErrors() {
		return nil
	}

	if len(ec.errors) == 1 {
		return ec.errors[0]
	}

	var messages []string
	for i, err := range ec.errors {
		messages = append(messages, fmt.Sprintf("%d. %s", i+1, err.Error()))
	}

	return fmt.Errorf("multiple generator errors:\n%s", strings.Join(messages, "\n"))
}
