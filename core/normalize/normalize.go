// Package normalize implements fully-justified allele normalization:
// shared flanking bases are trimmed, pure insertions and deletions are
// expanded over their whole ambiguity tract, and tract-expanded alleles
// are re-expressed as reference-length (repeat) states.
package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/seqvarlab/varnorm/core/dataproxy"
	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/models"
)

// DefaultRLESeqLimit is the default threshold above which a repeat
// state's literal sequence is elided.
const DefaultRLESeqLimit = 50

type config struct {
	// rleSeqLimit bounds the literal sequence carried by repeat states;
	// nil means unlimited.
	rleSeqLimit *int
	// repeatEncoding enables tract expansion and repeat states; when
	// false normalization stops after trimming.
	repeatEncoding bool
}

// Option adjusts normalization behavior.
type Option func(*config)

// WithRLESeqLimit sets the maximum expanded length for which a repeat
// state still carries its literal sequence.
func WithRLESeqLimit(limit int) Option {
	return func(c *config) { c.rleSeqLimit = &limit }
}

// WithUnlimitedRLESequence makes repeat states always carry their
// literal sequence.
func WithUnlimitedRLESequence() Option {
	return func(c *config) { c.rleSeqLimit = nil }
}

// WithoutRepeatEncoding stops normalization after trimming: indels keep
// a literal state at their trimmed interval instead of being expanded
// over the ambiguity tract.
func WithoutRepeatEncoding() Option {
	return func(c *config) { c.repeatEncoding = false }
}

// Allele returns the normalized form of a. Alleles whose state is not a
// literal sequence are returned unchanged, as are alleles that agree
// with the reference after trimming. The input is never mutated.
func Allele(ctx context.Context, proxy dataproxy.SequenceDataProxy, a *models.Allele, opts ...Option) (*models.Allele, error) {
	limit := DefaultRLESeqLimit
	cfg := config{rleSeqLimit: &limit, repeatEncoding: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	lit, ok := a.State.(*models.LiteralSequenceExpression)
	if !ok {
		return a, nil
	}
	loc := a.Location
	if loc == nil {
		return nil, &verrors.UnresolvedReferenceError{Field: "location", Want: models.TypeSequenceLocation}
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	seqID, err := LocationSequenceID(loc)
	if err != nil {
		return nil, err
	}

	ref, err := proxy.GetSequence(ctx, seqID, loc.Start, loc.End)
	if err != nil {
		return nil, fmt.Errorf("fetch reference for normalization: %w", err)
	}
	alt := lit.Sequence

	trimRef, trimAlt, prefix, suffix := Trim(ref, alt)
	start, end := loc.Start+prefix, loc.End-suffix

	// reference agreement: nothing to normalize
	if trimRef == "" && trimAlt == "" {
		return a, nil
	}

	if !cfg.repeatEncoding || (trimRef != "" && trimAlt != "") {
		return rebuild(a, start, end, models.NewLiteral(trimAlt)), nil
	}

	// pure insertion or deletion: expand over the ambiguity tract
	unit := trimRef
	if unit == "" {
		unit = trimAlt
	}
	md, err := proxy.GetMetadata(ctx, seqID)
	if err != nil {
		return nil, fmt.Errorf("fetch reference metadata for normalization: %w", err)
	}
	extStart, err := rollLeft(ctx, proxy, seqID, start, unit)
	if err != nil {
		return nil, err
	}
	extEnd, err := rollRight(ctx, proxy, seqID, end, md.Length, unit)
	if err != nil {
		return nil, err
	}

	var extRef string
	if extEnd > extStart {
		extRef, err = proxy.GetSequence(ctx, seqID, extStart, extEnd)
		if err != nil {
			return nil, fmt.Errorf("fetch expanded reference: %w", err)
		}
	}

	var extAlt string
	if trimRef == "" {
		// insertion at offset start within the tract
		extAlt = extRef[:start-extStart] + trimAlt + extRef[start-extStart:]
	} else {
		// deletion of [start, end) from the tract
		extAlt = extRef[:start-extStart] + extRef[end-extStart:]
	}

	if extRef == "" {
		return rebuild(a, extStart, extEnd, models.NewLiteral(extAlt)), nil
	}

	rsl := len(unit)
	if len(extRef) < rsl {
		rsl = len(extRef)
	}
	state := models.NewRLE(len(extAlt), rsl)
	if cfg.rleSeqLimit == nil || state.Length <= *cfg.rleSeqLimit {
		seq := extAlt
		state.Sequence = &seq
	}
	return rebuild(a, extStart, extEnd, state), nil
}

// Trim removes the longest shared prefix and suffix from a ref/alt pair,
// returning the trimmed pair and the number of bases removed at each end.
func Trim(ref, alt string) (trimRef, trimAlt string, prefix, suffix int) {
	n := len(ref)
	if len(alt) < n {
		n = len(alt)
	}
	for prefix < n && ref[prefix] == alt[prefix] {
		prefix++
	}
	for suffix < n-prefix && ref[len(ref)-1-suffix] == alt[len(alt)-1-suffix] {
		suffix++
	}
	return ref[prefix : len(ref)-suffix], alt[prefix : len(alt)-suffix], prefix, suffix
}

// rollLeft extends the tract start leftward while the reference continues
// the cyclic repeat unit.
func rollLeft(ctx context.Context, proxy dataproxy.SequenceDataProxy, seqID string, start int, unit string) (int, error) {
	n := len(unit)
	for shift := 0; start > 0; shift++ {
		want := unit[(n-1-shift%n+n)%n]
		got, err := proxy.GetSequence(ctx, seqID, start-1, start)
		if err != nil {
			return 0, fmt.Errorf("fetch reference at %d: %w", start-1, err)
		}
		if got[0] != want {
			break
		}
		start--
	}
	return start, nil
}

// rollRight extends the tract end rightward while the reference continues
// the cyclic repeat unit.
func rollRight(ctx context.Context, proxy dataproxy.SequenceDataProxy, seqID string, end, length int, unit string) (int, error) {
	n := len(unit)
	for shift := 0; end < length; shift++ {
		got, err := proxy.GetSequence(ctx, seqID, end, end+1)
		if err != nil {
			return 0, fmt.Errorf("fetch reference at %d: %w", end, err)
		}
		if got[0] != unit[shift%n] {
			break
		}
		end++
	}
	return end, nil
}

// rebuild returns a fresh allele at the given interval with the given
// state, preserving the input's sequence reference and expressions.
func rebuild(a *models.Allele, start, end int, state models.State) *models.Allele {
	loc := models.NewSequenceLocation(a.Location.SequenceReference, start, end)
	loc.SequenceReferenceRef = a.Location.SequenceReferenceRef
	out := models.NewAllele(loc, state)
	out.Expressions = append([]models.Expression(nil), a.Expressions...)
	return out
}

// LocationSequenceID returns the proxy identifier for a location's
// reference sequence.
func LocationSequenceID(loc *models.SequenceLocation) (string, error) {
	switch {
	case loc.SequenceReference != nil:
		return dataproxy.RefgetNamespace + ":" + loc.SequenceReference.RefgetAccession, nil
	case loc.SequenceReferenceRef != "":
		acc := dataproxy.StripNamespace(loc.SequenceReferenceRef)
		if !strings.HasPrefix(acc, "SQ.") {
			return "", &verrors.UnresolvedReferenceError{Field: "sequenceReference", Want: models.TypeSequenceReference}
		}
		return dataproxy.RefgetNamespace + ":" + acc, nil
	default:
		return "", &verrors.UnresolvedReferenceError{Field: "sequenceReference", Want: models.TypeSequenceReference}
	}
}
