package irfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aledsdavies/ecsgen/core/ir"
)

// Format selects the dump encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON, FormatCBOR:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown dump format %q (want yaml, json or cbor)", s)
}

// MethodView is the readable form of a MethodInfo. Holes are shown in their
// placeholder form so dumps read like the bodies they stand for.
type MethodView struct {
	System         string           `json:"system" yaml:"system"`
	Package        string           `json:"package,omitempty" yaml:"package,omitempty"`
	Receiver       string           `json:"receiver,omitempty" yaml:"receiver,omitempty"`
	Position       string           `json:"position,omitempty" yaml:"position,omitempty"`
	Digest         string           `json:"digest" yaml:"digest"`
	Imports        []string         `json:"imports,omitempty" yaml:"imports,omitempty"`
	Preamble       []string         `json:"preamble" yaml:"preamble"`
	StorageTypes   []string         `json:"storage_types" yaml:"storage_types"`
	SignatureNames []string         `json:"signature_names" yaml:"signature_names"`
	Nodes          []NodeView       `json:"nodes" yaml:"nodes"`
	Diagnostics    []DiagnosticView `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NodeView is the readable form of an iteration node.
type NodeView struct {
	Key        string     `json:"key" yaml:"key"`
	Signature  string     `json:"signature" yaml:"signature"`
	Params     []ir.Param `json:"params" yaml:"params"`
	Exclusions []string   `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
	Body       []string   `json:"body" yaml:"body"`
	Position   string     `json:"position,omitempty" yaml:"position,omitempty"`
}

// DiagnosticView is the readable form of a diagnostic.
type DiagnosticView struct {
	Severity   string `json:"severity" yaml:"severity"`
	Position   string `json:"position,omitempty" yaml:"position,omitempty"`
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// View builds the readable form of mi.
func View(mi *ir.MethodInfo) (*MethodView, error) {
	digest, err := Digest(mi)
	if err != nil {
		return nil, err
	}

	v := &MethodView{
		System:         mi.System,
		Package:        mi.Package,
		Receiver:       mi.Receiver,
		Position:       mi.Pos.String(),
		Digest:         digest,
		Preamble:       segmentLines(mi.Preamble),
		StorageTypes:   mi.StorageTypes,
		SignatureNames: mi.SignatureNames,
	}
	for _, imp := range mi.Imports {
		v.Imports = append(v.Imports, imp.String())
	}
	if mi.Nodes != nil {
		for _, n := range mi.Nodes.Nodes() {
			v.Nodes = append(v.Nodes, NodeView{
				Key:        n.Key.String(),
				Signature:  n.Signature,
				Params:     n.Params,
				Exclusions: n.Exclusions,
				Body:       segmentLines(n.Body),
				Position:   n.Pos.String(),
			})
		}
	}
	for _, d := range mi.Diagnostics {
		v.Diagnostics = append(v.Diagnostics, DiagnosticView{
			Severity:   d.Severity.String(),
			Position:   d.Pos.String(),
			Message:    d.Message,
			Suggestion: d.Suggestion,
		})
	}
	return v, nil
}

func segmentLines(t ir.Template) []string {
	lines := make([]string, 0, len(t))
	for _, seg := range t {
		switch s := seg.(type) {
		case ir.Text:
			lines = append(lines, string(s))
		case ir.Hole:
			lines = append(lines, "//"+s.Key.String())
		}
	}
	return lines
}

// Dump writes every method in the requested format. CBOR output is the
// canonical form of each method, concatenated.
func Dump(w io.Writer, methods []*ir.MethodInfo, format Format) error {
	if format == FormatCBOR {
		for _, mi := range methods {
			data, err := Canonicalize(mi).MarshalBinary()
			if err != nil {
				return fmt.Errorf("%s: %w", mi.System, err)
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
		}
		return nil
	}

	views := make([]*MethodView, 0, len(methods))
	for _, mi := range methods {
		v, err := View(mi)
		if err != nil {
			return fmt.Errorf("%s: %w", mi.System, err)
		}
		views = append(views, v)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown dump format %q", format)
	}
}
