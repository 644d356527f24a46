package translate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/models"
)

// gnomadPattern matches gnomAD / VCF-style notation:
// chromosome-position-reference-alternate, 1-based, left-anchored, with
// IUPAC ambiguity codes allowed.
var gnomadPattern = regexp.MustCompile(
	`(?i)^(?P<chr>[^-\s]+)-(?P<pos>\d+)-(?P<ref>[ACGTURYKMSWBDHVN]+)-(?P<alt>[ACGTURYKMSWBDHVN]+)$`)

// fromGnomad parses a gnomAD expression into an unnormalized allele.
// The anchored reference base is kept; normalization trims it.
func (t *Translator) fromGnomad(ctx context.Context, expr string, cfg Config) (*models.Allele, error) {
	m := gnomadPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, verrors.NewSyntax(FormatGnomad, expr, "want chromosome-position-reference-alternate")
	}
	chrom, posStr := m[1], m[2]
	ref, alt := strings.ToUpper(m[3]), strings.ToUpper(m[4])

	acc, err := t.resolveChromosome(ctx, cfg.AssemblyName, chrom)
	if err != nil {
		return nil, err
	}
	pos, err := strconv.Atoi(posStr)
	if err != nil || pos < 1 {
		return nil, verrors.NewSyntax(FormatGnomad, expr, "invalid position")
	}
	start := pos - 1
	end := start + len(ref)

	if cfg.RequireValidation {
		name := cfg.AssemblyName + ":" + strings.TrimPrefix(chrom, "chr")
		if err := t.validateReference(ctx, acc, name, start, end, ref); err != nil {
			return nil, err
		}
	}

	loc := models.NewSequenceLocation(models.NewSequenceReference(acc), start, end)
	return models.NewAllele(loc, models.NewLiteral(alt)), nil
}

// toGnomad renders an allele in gnomAD notation. Pure indels are
// left-anchored on the preceding reference base, as VCF requires.
func (t *Translator) toGnomad(ctx context.Context, a *models.Allele, cfg Config) (string, error) {
	chrom, pos, ref, alt, err := t.anchored(ctx, a, cfg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s-%s", chrom, pos, ref, alt), nil
}

// anchored computes the chromosome name, 1-based position, and
// left-anchored ref/alt pair for VCF-style renderings.
func (t *Translator) anchored(ctx context.Context, a *models.Allele, cfg Config) (string, int, string, string, error) {
	loc, seqRef, err := renderLocation(a)
	if err != nil {
		return "", 0, "", "", err
	}
	alt, err := stateSequence(a.State)
	if err != nil {
		return "", 0, "", "", err
	}
	name, err := t.sequenceAlias(ctx, seqRef, cfg.AssemblyName)
	if err != nil {
		return "", 0, "", "", err
	}

	seqID := "ga4gh:" + seqRef.RefgetAccession
	start, end := loc.Start, loc.End
	ref, err := t.proxy.GetSequence(ctx, seqID, start, end)
	if err != nil {
		return "", 0, "", "", fmt.Errorf("fetch reference for rendering: %w", err)
	}

	// left-anchor pure indels on the preceding base
	if ref == "" || alt == "" {
		if start == 0 {
			return "", 0, "", "", verrors.NewUnsupported("gnomad rendering", "indel at the start of the sequence cannot be left-anchored")
		}
		anchor, err := t.proxy.GetSequence(ctx, seqID, start-1, start)
		if err != nil {
			return "", 0, "", "", fmt.Errorf("fetch anchor base: %w", err)
		}
		ref = anchor + ref
		alt = anchor + alt
		start--
	}
	return name, start + 1, ref, alt, nil
}
