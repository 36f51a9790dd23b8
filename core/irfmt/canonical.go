// Package irfmt serialises analysed methods: a canonical CBOR form that is
// hashed into the digest written in every generated unit, and readable
// YAML/JSON dumps for inspection.
package irfmt

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/ecsgen/core/ir"
)

// Version of the canonical form. Bump when the encoding changes so digests
// of old units never match new ones by accident.
const Version uint8 = 1

// CanonicalMethod is the deterministic form of a MethodInfo. Positions and
// diagnostics are left out: moving a method within its file must not change
// the digest.
type CanonicalMethod struct {
	Version        uint8
	System         string
	Package        string
	Receiver       string
	Imports        []string
	Preamble       []CanonicalSegment
	StorageTypes   []string
	SignatureNames []string
	Nodes          []CanonicalNode
}

// CanonicalSegment is Text when Hole is nil.
type CanonicalSegment struct {
	Text string
	Hole *ir.Key
}

// CanonicalNode is one iteration node in registration order.
type CanonicalNode struct {
	Depth      uint
	ID         uint
	Signature  string
	Params     []ir.Param
	Exclusions []string
	Body       []CanonicalSegment
}

// Canonicalize converts mi into canonical form. Only unclaimed nodes are
// included, which for a freshly walked method is all of them.
func Canonicalize(mi *ir.MethodInfo) *CanonicalMethod {
	cm := &CanonicalMethod{
		Version:        Version,
		System:         mi.System,
		Package:        mi.Package,
		Receiver:       mi.Receiver,
		Preamble:       canonicalSegments(mi.Preamble),
		StorageTypes:   mi.StorageTypes,
		SignatureNames: mi.SignatureNames,
	}
	for _, imp := range mi.Imports {
		cm.Imports = append(cm.Imports, imp.String())
	}
	if mi.Nodes != nil {
		for _, n := range mi.Nodes.Nodes() {
			cm.Nodes = append(cm.Nodes, CanonicalNode{
				Depth:      n.Key.Depth,
				ID:         n.Key.ID,
				Signature:  n.Signature,
				Params:     n.Params,
				Exclusions: n.Exclusions,
				Body:       canonicalSegments(n.Body),
			})
		}
	}
	return cm
}

func canonicalSegments(t ir.Template) []CanonicalSegment {
	segs := make([]CanonicalSegment, 0, len(t))
	for _, seg := range t {
		switch s := seg.(type) {
		case ir.Text:
			segs = append(segs, CanonicalSegment{Text: string(s)})
		case ir.Hole:
			k := s.Key
			segs = append(segs, CanonicalSegment{Hole: &k})
		}
	}
	return segs
}

// MarshalBinary produces deterministic CBOR encoding of the canonical method.
func (cm *CanonicalMethod) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	// Alias drops the MarshalBinary method so cbor does not recurse.
	type canonicalMethodAlias CanonicalMethod
	data, err := encMode.Marshal((*canonicalMethodAlias)(cm))
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Hash computes the BLAKE2b-256 hash of the canonical method.
func (cm *CanonicalMethod) Hash() ([32]byte, error) {
	data, err := cm.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(data), nil
}

// Digest returns the hex hash of mi's canonical form.
func Digest(mi *ir.MethodInfo) (string, error) {
	h, err := Canonicalize(mi).Hash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h[:]), nil
}
