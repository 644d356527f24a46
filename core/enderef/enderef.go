// Package enderef converts nested variation object graphs between the
// inline ("dereferenced") form and the flattened ("referenced") form in
// which identifiable sub-objects are replaced by their digest tokens.
//
// The registry is an explicit digest-keyed arena: tokens are plain lookup
// keys, never aliasing pointers. Graphs are DAGs — sub-objects may be
// shared by reference — and must not contain cycles.
package enderef

import (
	"fmt"

	"github.com/seqvarlab/varnorm/core/digest"
	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/models"
)

// Registry maps digests to the objects they name.
type Registry map[string]any

// NewRegistry returns an empty registry.
func NewRegistry() Registry { return make(Registry) }

// Put stores an object under its digest.
func (r Registry) Put(dgst string, v any) { r[dgst] = v }

// Get resolves a reference token (a full identifier, or a bare digest) to
// the stored object.
func (r Registry) Get(token string) (any, error) {
	d := digest.ExtractDigest(token)
	if d == "" {
		d = token
	}
	v, ok := r[d]
	if !ok {
		return nil, &verrors.LookupError{Ref: token}
	}
	return v, nil
}

// Enref flattens an object graph depth-first: every identifiable
// sub-object is digested, stored in the registry, and replaced in its
// parent by a reference token. Values with no identifiable children pass
// through unchanged. Re-running Enref on an already-flattened graph is a
// no-op for already-replaced fields. The input is not modified.
func Enref(v any, reg Registry) (any, error) {
	switch t := v.(type) {
	case *models.Allele:
		return EnrefAllele(t, reg)
	case *models.SequenceLocation:
		// A location has no identifiable children; it flattens to itself.
		return t, nil
	default:
		return nil, fmt.Errorf("enref: unsupported type %T", v)
	}
}

// Deref is the inverse of Enref: every reference token is resolved through
// the registry and replaced by the stored object. A token with no entry
// yields a lookup error.
func Deref(v any, reg Registry) (any, error) {
	switch t := v.(type) {
	case *models.Allele:
		return DerefAllele(t, reg)
	case *models.SequenceLocation:
		return t, nil
	default:
		return nil, fmt.Errorf("deref: unsupported type %T", v)
	}
}

// EnrefAllele flattens a single allele, registering its location.
func EnrefAllele(a *models.Allele, reg Registry) (*models.Allele, error) {
	c := a.Clone()
	if c.Location == nil {
		// Already flattened (or never resolved): nothing to replace.
		return c, nil
	}
	d, err := models.ComputeDigest(c.Location)
	if err != nil {
		return nil, err
	}
	loc := c.Location
	loc.Digest = d
	loc.ID = digest.Format(digest.PrefixSequenceLocation, d)
	reg.Put(d, loc)
	c.Location = nil
	c.LocationRef = loc.ID
	return c, nil
}

// DerefAllele reconstructs the inline form of a flattened allele.
func DerefAllele(a *models.Allele, reg Registry) (*models.Allele, error) {
	c := a.Clone()
	if c.LocationRef == "" {
		// Already inline.
		return c, nil
	}
	v, err := reg.Get(c.LocationRef)
	if err != nil {
		return nil, err
	}
	loc, ok := v.(*models.SequenceLocation)
	if !ok {
		return nil, fmt.Errorf("deref: %q resolves to %T, want *SequenceLocation", c.LocationRef, v)
	}
	c.Location = loc.Clone()
	c.LocationRef = ""
	return c, nil
}
