package engine

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/ecsgen/core/ir"
	"github.com/aledsdavies/ecsgen/pkgs/generator"
)

// Result is the outcome of one method. Err is set when the method failed;
// other methods of the batch are unaffected.
type Result struct {
	System string
	Info   *ir.MethodInfo
	Unit   *generator.Unit
	Err    error
}

// Diagnostics returns the findings for the method, from the unit when one
// was generated and from the analysis otherwise.
func (r *Result) Diagnostics() []ir.Diagnostic {
	if r.Unit != nil {
		return r.Unit.Diagnostics
	}
	if r.Info != nil {
		return r.Info.Diagnostics
	}
	return nil
}

// Batch is the ordered set of results of one run.
type Batch []Result

// Err aggregates the per-method failures, or returns nil.
func (b Batch) Err() error {
	collector := generator.NewErrorCollector()
	for i := range b {
		collector.Add(b[i].Err)
	}
	return collector.Error()
}

// Failed returns the number of methods that failed.
func (b Batch) Failed() int {
	n := 0
	for i := range b {
		if b[i].Err != nil {
			n++
		}
	}
	return n
}

// Summary returns a one-line report of the batch.
func (b Batch) Summary() string {
	var warnings int
	for i := range b {
		for _, d := range b[i].Diagnostics() {
			if d.Severity >= ir.SeverityWarning {
				warnings++
			}
		}
	}
	var summary strings.Builder
	fmt.Fprintf(&summary, "%d systems, %d failed, %d warnings", len(b), b.Failed(), warnings)
	return summary.String()
}
