package models

import (
	"encoding/json"
	"fmt"
)

// State is the sequence-state sum type carried by an Allele: either an
// explicit replacement sequence (LiteralSequenceExpression) or a compact
// tandem-repeat length change (ReferenceLengthExpression). Consumers must
// switch exhaustively on the concrete type.
type State interface {
	// StateType returns the type discriminator value.
	StateType() string

	// digestRecord returns the inherent fields contributing to the
	// enclosing allele's canonical byte form.
	digestRecord() map[string]any

	cloneState() State
}

// LiteralSequenceExpression is an explicit replacement sequence. The
// sequence may be empty (a pure deletion).
type LiteralSequenceExpression struct {
	Type     string `json:"type"`
	Sequence string `json:"sequence"`
}

// NewLiteral constructs a LiteralSequenceExpression.
func NewLiteral(sequence string) *LiteralSequenceExpression {
	return &LiteralSequenceExpression{Type: TypeLiteralSequenceExpression, Sequence: sequence}
}

// StateType returns the type discriminator value.
func (s *LiteralSequenceExpression) StateType() string { return TypeLiteralSequenceExpression }

func (s *LiteralSequenceExpression) digestRecord() map[string]any {
	return map[string]any{"type": s.Type, "sequence": s.Sequence}
}

func (s *LiteralSequenceExpression) cloneState() State {
	c := *s
	return &c
}

// ReferenceLengthExpression is a tandem-repeat expansion or contraction
// expressed against the reference: the allele replaces the located
// reference span with Length bases built from repeats of a
// RepeatSubunitLength-sized unit. Sequence carries the expanded literal
// form and is optional: above a configured length threshold it is elided
// to bound object size. An elided sequence cannot be reconstructed from
// Length and RepeatSubunitLength alone.
type ReferenceLengthExpression struct {
	Type                string  `json:"type"`
	Length              int     `json:"length"`
	RepeatSubunitLength int     `json:"repeatSubunitLength"`
	Sequence            *string `json:"sequence,omitempty"`
}

// NewRLE constructs a ReferenceLengthExpression without a literal sequence.
func NewRLE(length, repeatSubunitLength int) *ReferenceLengthExpression {
	return &ReferenceLengthExpression{
		Type:                TypeReferenceLengthExpression,
		Length:              length,
		RepeatSubunitLength: repeatSubunitLength,
	}
}

// StateType returns the type discriminator value.
func (s *ReferenceLengthExpression) StateType() string { return TypeReferenceLengthExpression }

// digestRecord excludes Sequence: eliding the literal form never changes
// the enclosing allele's digest.
func (s *ReferenceLengthExpression) digestRecord() map[string]any {
	return map[string]any{
		"type":                s.Type,
		"length":              s.Length,
		"repeatSubunitLength": s.RepeatSubunitLength,
	}
}

func (s *ReferenceLengthExpression) cloneState() State {
	c := *s
	if s.Sequence != nil {
		seq := *s.Sequence
		c.Sequence = &seq
	}
	return &c
}

// UnmarshalState decodes a State value by its "type" discriminator.
func UnmarshalState(b []byte) (State, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case TypeLiteralSequenceExpression:
		var s LiteralSequenceExpression
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, err
		}
		return &s, nil
	case TypeReferenceLengthExpression:
		var s ReferenceLengthExpression
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, err
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("unknown state type %q", probe.Type)
	}
}
