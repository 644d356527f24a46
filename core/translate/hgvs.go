package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/models"
)

// hgvsLikePattern recognizes expressions worth handing to the HGVS parser.
var hgvsLikePattern = regexp.MustCompile(`^[^:\s]+:[gmncrp]\.`)

// hgvsGrammar is the participle grammar for an HGVS posedit (the part
// after "accession:"). Examples: "g.44908822C>T", "g.20003097del",
// "g.20003010_20003011insG", "g.19993838_19993839dup", "g.32936732=".
//
//nolint:govet // participle grammar tags are not standard struct tags
type hgvsGrammar struct {
	Coord string    `@Coord "."`
	Start int       `@Number`
	End   *int      `( "_" @Number )?`
	Edit  *hgvsEdit `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type hgvsEdit struct {
	DelIns *string  `  "delins" @Seq`
	Del    *hgvsDel `| @@`
	Ins    *string  `| "ins" @Seq`
	Dup    bool     `| @"dup"`
	Inv    bool     `| @"inv"`
	Sub    *hgvsSub `| @@`
	Eq     bool     `| @"="`
}

//nolint:govet // participle grammar tags are not standard struct tags
type hgvsDel struct {
	Del bool    `@"del"`
	Seq *string `@Seq?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type hgvsSub struct {
	Ref string `@Seq`
	Alt string `">" @Seq`
}

// hgvsLexer tokenizes HGVS posedits. Sequences are uppercase IUPAC codes;
// edit keywords and coordinate-system letters are lowercase, so the two
// never collide.
var hgvsLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `delins|del|ins|dup|inv`},
	{Name: "Coord", Pattern: `[a-z]`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Seq", Pattern: `[A-Z]+`},
	{Name: "Punct", Pattern: `[._>=]`},
})

var hgvsParser = participle.MustBuild[hgvsGrammar](
	participle.Lexer(hgvsLexer),
)

// coordSystems supported for parsing. Protein, coding, and RNA
// coordinates need transcript projection and are rejected.
var hgvsCoordSyntax = map[string]models.Syntax{
	"g": models.SyntaxHGVSg,
	"m": models.SyntaxHGVSm,
	"n": models.SyntaxHGVSn,
}

// fromHGVS parses an HGVS expression into an unnormalized allele.
func (t *Translator) fromHGVS(ctx context.Context, expr string, cfg Config) (*models.Allele, error) {
	accession, posedit, ok := strings.Cut(expr, ":")
	if !ok {
		return nil, verrors.NewSyntax(FormatHGVS, expr, "missing accession separator")
	}

	g, err := hgvsParser.ParseString("", posedit)
	if err != nil {
		return nil, &verrors.SyntaxError{Notation: FormatHGVS, Input: expr, Message: "cannot parse posedit", Err: err}
	}
	if _, ok := hgvsCoordSyntax[g.Coord]; !ok {
		return nil, verrors.NewUnsupported("HGVS coordinate system",
			fmt.Sprintf("%q (only g., m., and n. are supported)", g.Coord+"."))
	}

	acc, err := t.resolveAccession(ctx, accession)
	if err != nil {
		return nil, err
	}

	// 1-based inclusive positions to zero-based interbase
	startPos := g.Start
	endPos := startPos
	if g.End != nil {
		endPos = *g.End
	}
	if startPos < 1 || endPos < startPos {
		return nil, verrors.NewSyntax(FormatHGVS, expr, "invalid position range")
	}
	start, end := startPos-1, endPos

	var alt string
	switch edit := g.Edit; {
	case edit.Sub != nil:
		if end != start+1 || len(edit.Sub.Ref) != 1 {
			return nil, verrors.NewSyntax(FormatHGVS, expr, "substitution must name a single base")
		}
		if cfg.RequireValidation {
			if err := t.validateReference(ctx, acc, accession, start, end, edit.Sub.Ref); err != nil {
				return nil, err
			}
		}
		alt = edit.Sub.Alt

	case edit.DelIns != nil:
		alt = *edit.DelIns

	case edit.Del != nil:
		if cfg.RequireValidation && edit.Del.Seq != nil {
			if err := t.validateReference(ctx, acc, accession, start, end, *edit.Del.Seq); err != nil {
				return nil, err
			}
		}
		alt = ""

	case edit.Ins != nil:
		if end != start+2 {
			return nil, verrors.NewSyntax(FormatHGVS, expr, "insertion positions must be adjacent")
		}
		// insertion between the two named bases
		start, end = start+1, start+1
		alt = *edit.Ins

	case edit.Dup:
		ref, err := t.proxy.GetSequence(ctx, "ga4gh:"+acc, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch duplicated reference span: %w", err)
		}
		alt = ref + ref

	case edit.Eq:
		ref, err := t.proxy.GetSequence(ctx, "ga4gh:"+acc, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch reference span: %w", err)
		}
		alt = ref

	case edit.Inv:
		return nil, verrors.NewUnsupported("HGVS edit", "inversions cannot be expressed as a single allele state")

	default:
		return nil, verrors.NewSyntax(FormatHGVS, expr, "unrecognized edit")
	}

	loc := models.NewSequenceLocation(models.NewSequenceReference(acc), start, end)
	return models.NewAllele(loc, models.NewLiteral(alt)), nil
}

// toHGVS renders an allele as a genomic or transcript HGVS expression,
// choosing the 3'-most representation for indels.
func (t *Translator) toHGVS(ctx context.Context, a *models.Allele) (string, error) {
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
	coord := "g"
	if strings.HasPrefix(accession, "NM_") || strings.HasPrefix(accession, "NR_") {
		coord = "n"
	}

	refSeq, err := t.proxy.GetSequence(ctx, "ga4gh:"+ref.RefgetAccession, loc.Start, loc.End)
	if err != nil {
		return "", fmt.Errorf("fetch reference for rendering: %w", err)
	}

	posedit, err := hgvsPosedit(loc, refSeq, alt, a.State)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s.%s", accession, coord, posedit), nil
}

// hgvsPosedit renders the edit part. Positions are 1-based inclusive.
func hgvsPosedit(loc *models.SequenceLocation, ref, alt string, state models.State) (string, error) {
	start1 := loc.Start + 1
	end1 := loc.End

	switch {
	case ref == alt:
		if len(ref) <= 1 {
			return fmt.Sprintf("%d=", end1), nil
		}
		return fmt.Sprintf("%d_%d=", start1, end1), nil

	case len(ref) == 1 && len(alt) == 1:
		return fmt.Sprintf("%d%s>%s", end1, ref, alt), nil

	case len(alt) > len(ref) && strings.HasPrefix(alt, ref):
		inserted := alt[len(ref):]
		// a repeat-subunit-sized insertion into its own tract is a dup
		if rle, ok := state.(*models.ReferenceLengthExpression); ok && len(inserted) == rle.RepeatSubunitLength {
			if rle.RepeatSubunitLength == 1 {
				return fmt.Sprintf("%ddup", end1), nil
			}
			return fmt.Sprintf("%d_%ddup", end1-rle.RepeatSubunitLength+1, end1), nil
		}
		// insert after the 3' end of the tract
		return fmt.Sprintf("%d_%dins%s", end1, end1+1, inserted), nil

	case len(alt) < len(ref) && strings.HasPrefix(ref, alt):
		d := len(ref) - len(alt)
		if d == 1 {
			return fmt.Sprintf("%ddel", end1), nil
		}
		return fmt.Sprintf("%d_%ddel", end1-d+1, end1), nil

	default:
		return fmt.Sprintf("%d_%ddelins%s", start1, end1, alt), nil
	}
}
