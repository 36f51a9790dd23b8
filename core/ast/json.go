package ast

import (
	"encoding/json"
	"fmt"
)

// Statement kinds used as the JSON discriminator.
const (
	KindText = "text"
	KindCall = "call"
)

type stmtJSON struct {
	Kind   string   `json:"kind"`
	Src    string   `json:"src"`
	Pos    Position `json:"pos,omitempty"`
	Chain  []Member `json:"chain,omitempty"`
	Lambda *Lambda  `json:"lambda,omitempty"`
}

func (t *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(stmtJSON{Kind: KindText, Src: t.Src, Pos: t.Pos})
}

func (c *Call) MarshalJSON() ([]byte, error) {
	return json.Marshal(stmtJSON{Kind: KindCall, Src: c.Src, Pos: c.Pos, Chain: c.Chain, Lambda: c.Lambda})
}

func decodeStmts(raw []json.RawMessage) ([]Stmt, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	stmts := make([]Stmt, 0, len(raw))
	for i, r := range raw {
		var s stmtJSON
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		switch s.Kind {
		case KindText:
			stmts = append(stmts, &Text{Src: s.Src, Pos: s.Pos})
		case KindCall:
			stmts = append(stmts, &Call{Src: s.Src, Pos: s.Pos, Chain: s.Chain, Lambda: s.Lambda})
		default:
			return nil, fmt.Errorf("statement %d: unknown kind %q", i, s.Kind)
		}
	}
	return stmts, nil
}

func (l *Lambda) UnmarshalJSON(data []byte) error {
	var aux struct {
		Params  []Param           `json:"params"`
		Body    []json.RawMessage `json:"body"`
		HasBody bool              `json:"has_body"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	body, err := decodeStmts(aux.Body)
	if err != nil {
		return fmt.Errorf("lambda body: %w", err)
	}
	l.Params = aux.Params
	l.Body = body
	l.HasBody = aux.HasBody
	return nil
}

func (m *Method) UnmarshalJSON(data []byte) error {
	var aux struct {
		System   string            `json:"system"`
		Package  string            `json:"package"`
		Receiver string            `json:"receiver"`
		Imports  []Import          `json:"imports"`
		Body     []json.RawMessage `json:"body"`
		Pos      Position          `json:"pos"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	body, err := decodeStmts(aux.Body)
	if err != nil {
		return fmt.Errorf("method %s: %w", aux.System, err)
	}
	*m = Method{
		System:   aux.System,
		Package:  aux.Package,
		Receiver: aux.Receiver,
		Imports:  aux.Imports,
		Body:     body,
		Pos:      aux.Pos,
	}
	return nil
}
