// Package models defines the canonical structured representation of
// sequence variation: Allele, SequenceLocation, SequenceReference, and the
// sequence-state sum type, together with their canonical (digestable)
// serialization.
//
// All types serialize to JSON with a "type" discriminator field. Fields
// named "id" and "digest" are never part of the canonical byte form.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/seqvarlab/varnorm/core/digest"
)

// Type discriminator values.
const (
	TypeAllele                    = "Allele"
	TypeSequenceLocation          = "SequenceLocation"
	TypeSequenceReference         = "SequenceReference"
	TypeLiteralSequenceExpression = "LiteralSequenceExpression"
	TypeReferenceLengthExpression = "ReferenceLengthExpression"
)

// Syntax names a notation system an Expression value is written in.
type Syntax string

// Supported expression syntaxes.
const (
	SyntaxHGVSg  Syntax = "hgvs.g"
	SyntaxHGVSc  Syntax = "hgvs.c"
	SyntaxHGVSn  Syntax = "hgvs.n"
	SyntaxHGVSm  Syntax = "hgvs.m"
	SyntaxHGVSr  Syntax = "hgvs.r"
	SyntaxHGVSp  Syntax = "hgvs.p"
	SyntaxISCN   Syntax = "iscn"
	SyntaxGnomad Syntax = "gnomad"
	SyntaxSPDI   Syntax = "spdi"
)

// validSyntaxes is the set of valid syntax tags.
var validSyntaxes = map[Syntax]bool{
	SyntaxHGVSg: true, SyntaxHGVSc: true, SyntaxHGVSn: true,
	SyntaxHGVSm: true, SyntaxHGVSr: true, SyntaxHGVSp: true,
	SyntaxISCN: true, SyntaxGnomad: true, SyntaxSPDI: true,
}

// IsValid returns true if the syntax tag is valid.
func (s Syntax) IsValid() bool { return validSyntaxes[s] }

// Expression records a rendering of a variation in a named syntax.
type Expression struct {
	Syntax        Syntax `json:"syntax"`
	Value         string `json:"value"`
	SyntaxVersion string `json:"syntax_version,omitempty"`
}

// SequenceReference names a reference sequence by its refget accession
// (e.g. "SQ.IIB53T8CNeJJdUqzn9V_JnRtQadwWCbl"). Immutable once constructed.
type SequenceReference struct {
	Type            string `json:"type"`
	RefgetAccession string `json:"refgetAccession"`
}

// NewSequenceReference constructs a SequenceReference for a refget accession.
func NewSequenceReference(refgetAccession string) *SequenceReference {
	return &SequenceReference{Type: TypeSequenceReference, RefgetAccession: refgetAccession}
}

// SequenceLocation is an interval on a reference sequence. Start and End
// are zero-based, half-open offsets; 0 <= Start <= End always holds for a
// valid location.
type SequenceLocation struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"`
	Digest string `json:"digest,omitempty"`

	// Exactly one of SequenceReference (resolved, inline) and
	// SequenceReferenceRef (a reference token left by enref) is set.
	SequenceReference    *SequenceReference `json:"-"`
	SequenceReferenceRef string             `json:"-"`

	Start int `json:"start"`
	End   int `json:"end"`
}

// NewSequenceLocation constructs a resolved SequenceLocation.
func NewSequenceLocation(ref *SequenceReference, start, end int) *SequenceLocation {
	return &SequenceLocation{
		Type:              TypeSequenceLocation,
		SequenceReference: ref,
		Start:             start,
		End:               end,
	}
}

// Validate checks the interval invariant.
func (l *SequenceLocation) Validate() error {
	if l.Start < 0 || l.Start > l.End {
		return fmt.Errorf("invalid interval [%d, %d): want 0 <= start <= end", l.Start, l.End)
	}
	return nil
}

// Clone returns an independent deep copy.
func (l *SequenceLocation) Clone() *SequenceLocation {
	if l == nil {
		return nil
	}
	c := *l
	if l.SequenceReference != nil {
		ref := *l.SequenceReference
		c.SequenceReference = &ref
	}
	return &c
}

// sequenceLocationJSON is the wire form of SequenceLocation; the
// sequenceReference field holds either an inline object or a token string.
type sequenceLocationJSON struct {
	ID                string          `json:"id,omitempty"`
	Type              string          `json:"type"`
	Digest            string          `json:"digest,omitempty"`
	SequenceReference json.RawMessage `json:"sequenceReference,omitempty"`
	Start             int             `json:"start"`
	End               int             `json:"end"`
}

// MarshalJSON emits the sequenceReference as an inline object when
// resolved, or as its reference token when flattened.
func (l *SequenceLocation) MarshalJSON() ([]byte, error) {
	w := sequenceLocationJSON{ID: l.ID, Type: l.Type, Digest: l.Digest, Start: l.Start, End: l.End}
	var err error
	switch {
	case l.SequenceReference != nil:
		w.SequenceReference, err = json.Marshal(l.SequenceReference)
	case l.SequenceReferenceRef != "":
		w.SequenceReference, err = json.Marshal(l.SequenceReferenceRef)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts both the inline and the flattened wire forms.
func (l *SequenceLocation) UnmarshalJSON(b []byte) error {
	var w sequenceLocationJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*l = SequenceLocation{ID: w.ID, Type: w.Type, Digest: w.Digest, Start: w.Start, End: w.End}
	if len(w.SequenceReference) == 0 {
		return nil
	}
	if w.SequenceReference[0] == '"' {
		return json.Unmarshal(w.SequenceReference, &l.SequenceReferenceRef)
	}
	l.SequenceReference = new(SequenceReference)
	return json.Unmarshal(w.SequenceReference, l.SequenceReference)
}

// Allele is a single contiguous variation: a state asserted at a location.
// Immutable once normalized.
type Allele struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"`
	Digest string `json:"digest,omitempty"`

	// Exactly one of Location (resolved, inline) and LocationRef (a
	// reference token left by enref) is set.
	Location    *SequenceLocation `json:"-"`
	LocationRef string            `json:"-"`

	State State `json:"-"`

	Expressions []Expression `json:"expressions,omitempty"`
}

// NewAllele constructs a resolved Allele.
func NewAllele(loc *SequenceLocation, state State) *Allele {
	return &Allele{Type: TypeAllele, Location: loc, State: state}
}

// Clone returns an independent deep copy.
func (a *Allele) Clone() *Allele {
	if a == nil {
		return nil
	}
	c := *a
	c.Location = a.Location.Clone()
	if a.State != nil {
		c.State = a.State.cloneState()
	}
	if a.Expressions != nil {
		c.Expressions = append([]Expression(nil), a.Expressions...)
	}
	return &c
}

// alleleJSON is the wire form of Allele.
type alleleJSON struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Digest      string          `json:"digest,omitempty"`
	Location    json.RawMessage `json:"location,omitempty"`
	State       json.RawMessage `json:"state,omitempty"`
	Expressions []Expression    `json:"expressions,omitempty"`
}

// MarshalJSON emits the location as an inline object when resolved, or as
// its reference token when flattened.
func (a *Allele) MarshalJSON() ([]byte, error) {
	w := alleleJSON{ID: a.ID, Type: a.Type, Digest: a.Digest, Expressions: a.Expressions}
	var err error
	switch {
	case a.Location != nil:
		w.Location, err = json.Marshal(a.Location)
	case a.LocationRef != "":
		w.Location, err = json.Marshal(a.LocationRef)
	}
	if err != nil {
		return nil, err
	}
	if a.State != nil {
		if w.State, err = json.Marshal(a.State); err != nil {
			return nil, err
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts both the inline and the flattened wire forms and
// decodes the state by its type discriminator.
func (a *Allele) UnmarshalJSON(b []byte) error {
	var w alleleJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*a = Allele{ID: w.ID, Type: w.Type, Digest: w.Digest, Expressions: w.Expressions}
	if len(w.Location) > 0 {
		if w.Location[0] == '"' {
			if err := json.Unmarshal(w.Location, &a.LocationRef); err != nil {
				return err
			}
		} else {
			a.Location = new(SequenceLocation)
			if err := json.Unmarshal(w.Location, a.Location); err != nil {
				return err
			}
		}
	}
	if len(w.State) > 0 {
		st, err := UnmarshalState(w.State)
		if err != nil {
			return err
		}
		a.State = st
	}
	return nil
}

// digestRecord and prefix definitions live in serialize.go.

var _ json.Marshaler = (*Allele)(nil)
var _ json.Unmarshaler = (*Allele)(nil)
var _ json.Marshaler = (*SequenceLocation)(nil)
var _ json.Unmarshaler = (*SequenceLocation)(nil)

// TypePrefix returns the identifier type prefix for alleles.
func (a *Allele) TypePrefix() string { return digest.PrefixAllele }

// TypePrefix returns the identifier type prefix for sequence locations.
func (l *SequenceLocation) TypePrefix() string { return digest.PrefixSequenceLocation }
