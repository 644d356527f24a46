// Package translate converts between variant notation systems (HGVS,
// SPDI, gnomAD/VCF-like, Beacon) and the canonical allele model. Parsing
// produces alleles, optionally normalized and identified; rendering
// re-expresses alleles in a target notation.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/seqvarlab/varnorm/core/dataproxy"
	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/models"
	"github.com/seqvarlab/varnorm/core/normalize"
)

// Format names for TranslateFrom/TranslateTo.
const (
	FormatHGVS   = "hgvs"
	FormatSPDI   = "spdi"
	FormatGnomad = "gnomad"
	FormatBeacon = "beacon"
)

// DefaultAssemblyName is the assembly used to resolve bare chromosome
// names ("13", "chr13") in gnomAD and Beacon notations.
const DefaultAssemblyName = "GRCh38"

// Config holds translator behavior toggles.
type Config struct {
	// Normalize runs fully-justified normalization on parsed alleles.
	Normalize bool
	// Identify computes digests and identifiers on parsed alleles.
	Identify bool
	// RequireValidation rejects inputs whose stated reference bases do
	// not match the reference sequence.
	RequireValidation bool
	// RLESeqLimit bounds the literal sequence carried by repeat states;
	// nil means unlimited.
	RLESeqLimit *int
	// AssemblyName resolves bare chromosome names.
	AssemblyName string
	// RepeatEncoding enables repeat states during normalization; when
	// false normalization stops after trimming.
	RepeatEncoding bool
}

// Option adjusts a Translator or a single call.
type Option func(*Config)

// WithNormalize toggles normalization of parsed alleles.
func WithNormalize(on bool) Option { return func(c *Config) { c.Normalize = on } }

// WithIdentify toggles digest and identifier computation.
func WithIdentify(on bool) Option { return func(c *Config) { c.Identify = on } }

// WithValidation toggles reference-base validation of inputs.
func WithValidation(on bool) Option { return func(c *Config) { c.RequireValidation = on } }

// WithRLESeqLimit sets the repeat-state literal sequence threshold.
func WithRLESeqLimit(limit int) Option {
	return func(c *Config) { c.RLESeqLimit = &limit }
}

// WithUnlimitedRLESequence makes repeat states always carry their
// literal sequence.
func WithUnlimitedRLESequence() Option { return func(c *Config) { c.RLESeqLimit = nil } }

// WithAssemblyName sets the assembly used to resolve chromosome names.
func WithAssemblyName(name string) Option { return func(c *Config) { c.AssemblyName = name } }

// WithoutRepeatEncoding limits normalization to trimming.
func WithoutRepeatEncoding() Option { return func(c *Config) { c.RepeatEncoding = false } }

// Translator converts variant notations to and from canonical alleles.
type Translator struct {
	proxy dataproxy.SequenceDataProxy
	cfg   Config
}

// New returns a Translator over the given sequence source. Defaults:
// normalize, identify, and validation on, repeat-state sequences elided
// above normalize.DefaultRLESeqLimit, assembly GRCh38.
func New(proxy dataproxy.SequenceDataProxy, opts ...Option) *Translator {
	limit := normalize.DefaultRLESeqLimit
	cfg := Config{
		Normalize:         true,
		Identify:          true,
		RequireValidation: true,
		RLESeqLimit:       &limit,
		AssemblyName:      DefaultAssemblyName,
		RepeatEncoding:    true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Translator{proxy: proxy, cfg: cfg}
}

// call builds the effective config for one call.
func (t *Translator) call(opts []Option) Config {
	cfg := t.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// TranslateFrom parses an expression in the named format ("" infers the
// format) into an allele, normalizing and identifying it per the
// translator's configuration.
func (t *Translator) TranslateFrom(ctx context.Context, expr, format string, opts ...Option) (*models.Allele, error) {
	cfg := t.call(opts)
	if format == "" {
		format = InferFormat(expr)
		if format == "" {
			return nil, verrors.NewSyntax("", expr, "unrecognized variant notation")
		}
	}

	var (
		a   *models.Allele
		err error
	)
	switch format {
	case FormatHGVS:
		a, err = t.fromHGVS(ctx, expr, cfg)
	case FormatSPDI:
		a, err = t.fromSPDI(ctx, expr, cfg)
	case FormatGnomad:
		a, err = t.fromGnomad(ctx, expr, cfg)
	case FormatBeacon:
		a, err = t.fromBeacon(ctx, expr, cfg)
	default:
		return nil, verrors.NewUnsupported("format", format)
	}
	if err != nil {
		return nil, err
	}
	return t.finish(ctx, a, cfg)
}

// TranslateTo renders an allele in the named format. The result is a
// list of equivalent notation strings, never empty on success; today
// each renderer emits a single canonical string per allele.
func (t *Translator) TranslateTo(ctx context.Context, a *models.Allele, format string, opts ...Option) ([]string, error) {
	cfg := t.call(opts)
	var (
		expr string
		err  error
	)
	switch format {
	case FormatHGVS:
		expr, err = t.toHGVS(ctx, a)
	case FormatSPDI:
		expr, err = t.toSPDI(ctx, a)
	case FormatGnomad:
		expr, err = t.toGnomad(ctx, a, cfg)
	case FormatBeacon:
		expr, err = t.toBeacon(ctx, a, cfg)
	default:
		return nil, verrors.NewUnsupported("format", format)
	}
	if err != nil {
		return nil, err
	}
	return []string{expr}, nil
}

// InferFormat guesses the notation a variant expression is written in,
// returning "" when no format matches.
func InferFormat(expr string) string {
	switch {
	case hgvsLikePattern.MatchString(expr):
		return FormatHGVS
	case spdiPattern.MatchString(expr):
		return FormatSPDI
	case gnomadPattern.MatchString(expr):
		return FormatGnomad
	case beaconPattern.MatchString(expr):
		return FormatBeacon
	}
	return ""
}

// finish applies normalization and identification to a parsed allele.
func (t *Translator) finish(ctx context.Context, a *models.Allele, cfg Config) (*models.Allele, error) {
	if cfg.Normalize {
		nopts := []normalize.Option{}
		if cfg.RLESeqLimit != nil {
			nopts = append(nopts, normalize.WithRLESeqLimit(*cfg.RLESeqLimit))
		} else {
			nopts = append(nopts, normalize.WithUnlimitedRLESequence())
		}
		if !cfg.RepeatEncoding {
			nopts = append(nopts, normalize.WithoutRepeatEncoding())
		}
		na, err := normalize.Allele(ctx, t.proxy, a, nopts...)
		if err != nil {
			return nil, err
		}
		a = na
	}
	if cfg.Identify {
		if err := identifyAllele(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Identify computes and sets digests and identifiers in place on the
// allele and its location.
func Identify(a *models.Allele) error {
	return identifyAllele(a)
}

// identifyAllele computes and sets digests and identifiers in place on
// the allele and its location.
func identifyAllele(a *models.Allele) error {
	if a.Location != nil {
		d, err := models.ComputeDigest(a.Location)
		if err != nil {
			return err
		}
		a.Location.Digest = d
		a.Location.ID, err = models.Identify(a.Location)
		if err != nil {
			return err
		}
	}
	d, err := models.ComputeDigest(a)
	if err != nil {
		return err
	}
	a.Digest = d
	a.ID, err = models.Identify(a)
	return err
}

// resolveAccession resolves any sequence name (an HGVS accession, a
// namespaced alias, or a bare refget accession) to its refget accession.
func (t *Translator) resolveAccession(ctx context.Context, name string) (string, error) {
	if strings.HasPrefix(name, "SQ.") {
		return name, nil
	}
	id := name
	if !strings.Contains(name, ":") {
		id = "refseq:" + name
	}
	acc, err := dataproxy.DeriveRefgetAccession(ctx, t.proxy, id)
	if err != nil {
		return "", verrors.Wrapf(err, "resolve sequence %q", name)
	}
	return acc, nil
}

// resolveChromosome resolves an assembly-relative chromosome name.
func (t *Translator) resolveChromosome(ctx context.Context, assembly, chrom string) (string, error) {
	name := assembly + ":" + strings.TrimPrefix(chrom, "chr")
	acc, err := dataproxy.DeriveRefgetAccession(ctx, t.proxy, name)
	if err != nil {
		return "", verrors.Wrapf(err, "resolve chromosome %q", name)
	}
	return acc, nil
}

// validateReference checks stated reference bases against the reference
// sequence and reports a mismatch with the sequence's display name.
func (t *Translator) validateReference(ctx context.Context, acc, displayName string, start, end int, stated string) error {
	actual, err := t.proxy.GetSequence(ctx, dataproxy.RefgetNamespace+":"+acc, start, end)
	if err != nil {
		return fmt.Errorf("fetch reference for validation: %w", err)
	}
	if actual != stated {
		return &verrors.ReferenceMismatchError{
			Sequence: displayName,
			Start:    start,
			End:      end,
			Expected: stated,
			Actual:   actual,
		}
	}
	return nil
}

// stateSequence extracts the literal replacement sequence of a state.
// Repeat states whose sequence was elided cannot be rendered.
func stateSequence(state models.State) (string, error) {
	switch s := state.(type) {
	case *models.LiteralSequenceExpression:
		return s.Sequence, nil
	case *models.ReferenceLengthExpression:
		if s.Sequence == nil {
			return "", &verrors.MissingDataError{Field: "state.sequence", Reason: "elided above the repeat sequence length limit"}
		}
		return *s.Sequence, nil
	case nil:
		return "", &verrors.MissingDataError{Field: "state", Reason: "allele has no state"}
	default:
		return "", verrors.NewUnsupported("state type", state.StateType())
	}
}

// renderLocation extracts the resolved parts a renderer needs.
func renderLocation(a *models.Allele) (*models.SequenceLocation, *models.SequenceReference, error) {
	if a.Location == nil {
		return nil, nil, &verrors.UnresolvedReferenceError{Field: "location", Want: models.TypeSequenceLocation}
	}
	if a.Location.SequenceReference == nil {
		return nil, nil, &verrors.UnresolvedReferenceError{Field: "location.sequenceReference", Want: models.TypeSequenceReference}
	}
	return a.Location, a.Location.SequenceReference, nil
}

// sequenceAlias returns the location's sequence name in the given
// namespace ("refseq:NC_000013.11" -> "NC_000013.11").
func (t *Translator) sequenceAlias(ctx context.Context, ref *models.SequenceReference, namespace string) (string, error) {
	aliases, err := t.proxy.TranslateIdentifier(ctx, dataproxy.RefgetNamespace+":"+ref.RefgetAccession, namespace)
	if err != nil {
		return "", err
	}
	if len(aliases) == 0 {
		return "", verrors.NewNotFound(namespace+" alias", ref.RefgetAccession)
	}
	return dataproxy.StripNamespace(aliases[0]), nil
}
