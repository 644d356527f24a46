package errors

import (
	"fmt"
	"testing"
)

func TestSyntaxError(t *testing.T) {
	err := NewSyntax("gnomad", "13-32936732-helloworld-C", "allele characters outside ACGTURYKMSWBDHVN")
	want := `invalid gnomad expression "13-32936732-helloworld-C": allele characters outside ACGTURYKMSWBDHVN`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !Is(err, ErrSyntax) {
		t.Error("SyntaxError does not unwrap to ErrSyntax")
	}
}

func TestReferenceMismatchError(t *testing.T) {
	err := &ReferenceMismatchError{
		Sequence: "GRCh38:13",
		Start:    32936731,
		End:      32936732,
		Expected: "G",
		Actual:   "C",
	}
	want := "Expected reference sequence G on GRCh38:13 at positions (32936731, 32936732) but found C"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !Is(err, ErrReferenceMismatch) {
		t.Error("ReferenceMismatchError does not unwrap to ErrReferenceMismatch")
	}
}

func TestUnresolvedReferenceError(t *testing.T) {
	err := &UnresolvedReferenceError{Field: "allele.location.sequenceReference", Want: "SequenceReference"}
	want := "`allele.location.sequenceReference` expects a `SequenceReference`"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !Is(err, ErrUnresolvedReference) {
		t.Error("does not unwrap to ErrUnresolvedReference")
	}
}

func TestMissingDataError(t *testing.T) {
	err := &MissingDataError{Field: "state.sequence", Reason: "elided by rle_seq_limit; re-translate with an unlimited limit"}
	if !Is(err, ErrMissingData) {
		t.Error("does not unwrap to ErrMissingData")
	}
	if err.Error() != "missing data for state.sequence: elided by rle_seq_limit; re-translate with an unlimited limit" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestLookupError(t *testing.T) {
	err := &LookupError{Ref: "ga4gh:SL.28YsnRvD40gKu1x3nev0gRzRz-5OTlpS"}
	if !Is(err, ErrLookup) {
		t.Error("does not unwrap to ErrLookup")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("sequence", "SQ.missing")
	if err.Error() != "sequence not found: SQ.missing" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !Is(err, ErrNotFound) {
		t.Error("does not unwrap to ErrNotFound")
	}
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupported("hgvs.c", "transcript projection is not performed")
	if !Is(err, ErrUnsupported) {
		t.Error("does not unwrap to ErrUnsupported")
	}
}

func TestUnwrapKeepsSentinelWithCause(t *testing.T) {
	cause := fmt.Errorf("unexpected token at position 12")

	syn := &SyntaxError{Notation: "hgvs", Input: "NC_000019.10:g.oops", Err: cause}
	if !Is(syn, ErrSyntax) {
		t.Error("SyntaxError with cause does not match ErrSyntax")
	}
	if !Is(syn, cause) {
		t.Error("SyntaxError does not match its cause")
	}

	nf := &NotFoundError{Resource: "sequence", ID: "SQ.missing", Err: cause}
	if !Is(nf, ErrNotFound) {
		t.Error("NotFoundError with cause does not match ErrNotFound")
	}
	if !Is(nf, cause) {
		t.Error("NotFoundError does not match its cause")
	}

	uns := &UnsupportedError{Feature: "hgvs.p", Err: cause}
	if !Is(uns, ErrUnsupported) {
		t.Error("UnsupportedError with cause does not match ErrUnsupported")
	}
	if !Is(uns, cause) {
		t.Error("UnsupportedError does not match its cause")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) != nil")
	}
	err := Wrap(ErrNotFound, "loading alias")
	if !Is(err, ErrNotFound) {
		t.Error("wrapped error lost identity")
	}
	if err.Error() != "loading alias: not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
