// Package errors provides standardized error types and helpers for the
// varnorm codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrSyntax indicates input that does not parse under a notation's grammar
	ErrSyntax = errors.New("syntax error")
	// ErrReferenceMismatch indicates a claimed reference allele disagrees with the reference sequence
	ErrReferenceMismatch = errors.New("reference mismatch")
	// ErrUnresolvedReference indicates an operation was given a reference token instead of an inlined object
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrMissingData indicates required data was elided from a compacted record
	ErrMissingData = errors.New("missing data")
	// ErrLookup indicates a reference token could not be resolved in a registry
	ErrLookup = errors.New("lookup failed")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// SyntaxError represents input that does not match a notation's grammar.
type SyntaxError struct {
	Notation string // Notation name (e.g., "hgvs", "spdi", "gnomad", "beacon")
	Input    string // The offending input string
	Message  string // Error details
	Err      error  // Underlying error, if any
}

func (e *SyntaxError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid %s expression %q: %s", e.Notation, e.Input, e.Message)
	}
	return fmt.Sprintf("invalid %s expression %q", e.Notation, e.Input)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSyntax, e.Err}
	}
	return []error{ErrSyntax}
}

// ReferenceMismatchError reports a disagreement between a claimed reference
// allele and the sequence actually present at the interval. Positions are
// zero-based interbase.
type ReferenceMismatchError struct {
	Sequence string // Sequence label (alias or accession) the claim was checked against
	Start    int
	End      int
	Expected string // Reference allele claimed by the input
	Actual   string // Reference allele found in the sequence
}

func (e *ReferenceMismatchError) Error() string {
	return fmt.Sprintf("Expected reference sequence %s on %s at positions (%d, %d) but found %s",
		e.Expected, e.Sequence, e.Start, e.End, e.Actual)
}

func (e *ReferenceMismatchError) Unwrap() error { return ErrReferenceMismatch }

// UnresolvedReferenceError indicates an operation that needs an inlined
// object was handed a reference token instead.
type UnresolvedReferenceError struct {
	Field string // Dotted path of the field that was expected to be resolved
	Want  string // Type name expected at that field
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("`%s` expects a `%s`", e.Field, e.Want)
}

func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

// MissingDataError indicates a compacted record no longer carries data an
// operation requires (e.g. an elided repeat sequence).
type MissingDataError struct {
	Field  string // Field whose data was elided
	Reason string // Why the data is absent and how to recover it
}

func (e *MissingDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("missing data for %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("missing data for %s", e.Field)
}

func (e *MissingDataError) Unwrap() error { return ErrMissingData }

// LookupError indicates a reference token had no entry in a registry.
type LookupError struct {
	Ref string // The unresolvable reference token
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("reference %q not found in registry", e.Ref)
}

func (e *LookupError) Unwrap() error { return ErrLookup }

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "sequence", "alias")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNotFound, e.Err}
	}
	return []error{ErrNotFound}
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnsupported, e.Err}
	}
	return []error{ErrUnsupported}
}

// Helper functions for creating common errors

// NewSyntax creates a SyntaxError
func NewSyntax(notation, input, message string) *SyntaxError {
	return &SyntaxError{Notation: notation, Input: input, Message: message}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
