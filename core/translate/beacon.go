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

// beaconPattern matches Beacon notation: "chromosome : position ref > alt"
// with optional whitespace around the separators.
var beaconPattern = regexp.MustCompile(
	`(?i)^(?P<chr>[^:\s]+)\s*:\s*(?P<pos>\d+)\s*(?P<ref>[ACGTN]+)\s*>\s*(?P<alt>[ACGTN]+)$`)

// fromBeacon parses a Beacon expression into an unnormalized allele.
func (t *Translator) fromBeacon(ctx context.Context, expr string, cfg Config) (*models.Allele, error) {
	m := beaconPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, verrors.NewSyntax(FormatBeacon, expr, "want chromosome : position ref > alt")
	}
	chrom, posStr := m[1], m[2]
	ref, alt := strings.ToUpper(m[3]), strings.ToUpper(m[4])

	acc, err := t.resolveChromosome(ctx, cfg.AssemblyName, chrom)
	if err != nil {
		return nil, err
	}
	pos, err := strconv.Atoi(posStr)
	if err != nil || pos < 1 {
		return nil, verrors.NewSyntax(FormatBeacon, expr, "invalid position")
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

// toBeacon renders an allele in Beacon notation.
func (t *Translator) toBeacon(ctx context.Context, a *models.Allele, cfg Config) (string, error) {
	chrom, pos, ref, alt, err := t.anchored(ctx, a, cfg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s : %d %s > %s", chrom, pos, ref, alt), nil
}
