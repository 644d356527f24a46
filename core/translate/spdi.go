package translate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/models"
)

// spdiPattern matches SPDI: sequence:position:deletion:insertion, where
// the deletion part is either the deleted bases or their count.
var spdiPattern = regexp.MustCompile(
	`^(?P<ac>[^:\s]+):(?P<pos>\d+):(?P<del>\d+|[ACGTURYKMSWBDHVN]*):(?P<ins>[ACGTURYKMSWBDHVN]*)$`)

// fromSPDI parses a SPDI expression into an unnormalized allele. SPDI
// positions are zero-based interbase already.
func (t *Translator) fromSPDI(ctx context.Context, expr string, cfg Config) (*models.Allele, error) {
	m := spdiPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, verrors.NewSyntax(FormatSPDI, expr, "want sequence:position:deletion:insertion")
	}
	accession, posStr, del, ins := m[1], m[2], m[3], m[4]

	acc, err := t.resolveAccession(ctx, accession)
	if err != nil {
		return nil, err
	}
	start, err := strconv.Atoi(posStr)
	if err != nil {
		return nil, verrors.NewSyntax(FormatSPDI, expr, "invalid position")
	}

	var end int
	if n, err := strconv.Atoi(del); err == nil {
		// numeric form: count of deleted bases
		end = start + n
	} else {
		end = start + len(del)
		if cfg.RequireValidation && del != "" {
			if err := t.validateReference(ctx, acc, accession, start, end, del); err != nil {
				return nil, err
			}
		}
	}

	loc := models.NewSequenceLocation(models.NewSequenceReference(acc), start, end)
	return models.NewAllele(loc, models.NewLiteral(ins)), nil
}

// toSPDI renders an allele as a SPDI expression with a numeric deletion
// length.
func (t *Translator) toSPDI(ctx context.Context, a *models.Allele) (string, error) {
	loc, ref, err := renderLocation(a)
	if err != nil {
		return "", err
	}
	alt, err := stateSequence(a.State)
	if err != nil {
		return "", err
	}
	accession, err := t.sequenceAlias(ctx, ref, "refseq")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%d:%s", accession, loc.Start, loc.End-loc.Start, alt), nil
}
