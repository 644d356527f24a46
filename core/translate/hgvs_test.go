package translate

import (
	"context"
	"errors"
	"testing"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/models"
)

// hgvsVectors are HGVS expressions with their expected normalized,
// identified alleles and (where shifting applies) re-rendered forms.
var hgvsVectors = []struct {
	input        string
	rendered     string // "" means the input renders back unchanged
	alleleDigest string
	locDigest    string
	acc          string
	start, end   int
	state        models.State
}{
	{
		input:        "NC_000013.11:g.32936732=",
		alleleDigest: "GJ2JySBMXePcV2yItyvCfbGBUoawOBON",
		locDigest:    "28YsnRvD40gKu1x3nev0gRzRz-5OTlpS",
		acc:          chr13Acc,
		start:        32936731, end: 32936732,
		state: models.NewLiteral("C"),
	},
	{
		input:        "NC_000007.14:g.55181320A>T",
		alleleDigest: "Hy2XU_-rp4IMh6I_1NXNecBo8Qx8n0oE",
		locDigest:    "_G2K0qSioM74l_u3OaKR0mgLYdeTL7Xd",
		acc:          chr7Acc,
		start:        55181319, end: 55181320,
		state: models.NewLiteral("T"),
	},
	{
		input:        "NC_000007.14:g.55181220del",
		alleleDigest: "klRMVChjvV73ZxS9Ajq1Rb8WU-p_HbLu",
		locDigest:    "ljan7F0ePe9uiD6f2u80ZG5gDtx9Mr0V",
		acc:          chr7Acc,
		start:        55181219, end: 55181220,
		state: rleWithSeq(0, 1, ""),
	},
	{
		input:        "NC_000007.14:g.55181230_55181231insGGCT",
		alleleDigest: "CLOvnFRJXGNRB9aTuNbvsLqc7syRYb55",
		locDigest:    "lh4dRt_xWPi3wrubcfomi5DkD7fu6wd2",
		acc:          chr7Acc,
		start:        55181230, end: 55181230,
		state: models.NewLiteral("GGCT"),
	},
	{
		input:        "NC_000013.11:g.32331093_32331094dup",
		alleleDigest: "swY2caCgv1kP6YqKyPlcEzJqTvou15vC",
		locDigest:    "ikECYncPpE1xh6f_LiComrFGevocjDHQ",
		acc:          chr13Acc,
		start:        32331082, end: 32331094,
		state: rleWithSeq(14, 2, "TTTTTTTTTTTTTT"),
	},
	{
		input:        "NC_000013.11:g.32316467dup",
		alleleDigest: "96ak7XdY3DNbp71aHEXw-NHSfeHGW-KT",
		locDigest:    "fwfHu8VaD2-6Qvay9MJSINXPS767RYSw",
		acc:          chr13Acc,
		start:        32316466, end: 32316467,
		state: rleWithSeq(2, 1, "AA"),
	},
	{
		input:        "NM_001331029.1:n.872A>G",
		alleleDigest: "DPe4AO-S0Yu4wzSCmys7eGn4p4sO0zaC",
		locDigest:    "7hcVmPnIspQNDfZKBzRJFc8K9GaJuAlY",
		acc:          nm1Acc,
		start:        871, end: 872,
		state: models.NewLiteral("G"),
	},
	{
		input:        "NM_181798.1:n.1263G>T",
		alleleDigest: "vSL4aV7mPQKQLX7Jk-PmXN0APs0cBIr9",
		locDigest:    "EtvHvoj1Lsq-RruzIzWbKOIAW-bt193w",
		acc:          nm2Acc,
		start:        1262, end: 1263,
		state: models.NewLiteral("T"),
	},
	{
		input:        "NC_000019.10:g.289464_289465insCACA",
		rendered:     "NC_000019.10:g.289466_289467insCACA",
		alleleDigest: "YFUR4oR_84b-rRFf0UzOjfI4eE5FTKAP",
		locDigest:    "L145KFLJeJ334YnOVm59pPlbdqfHhgXZ",
		acc:          chr19Acc,
		start:        289464, end: 289466,
		state: rleWithSeq(6, 2, "CACACA"),
	},
	{
		input:        "NC_000019.10:g.289485_289500del",
		rendered:     "NC_000019.10:g.289486_289501del",
		alleleDigest: "Djc_SwVDFunsArqwUM00PciVaF70VTcU",
		locDigest:    "WTE7jyihK4qvRRzEqM7u5nSD4iS2k3xp",
		acc:          chr19Acc,
		start:        289480, end: 289501,
		state: rleWithSeq(5, 16, "CGAGG"),
	},
}

func TestHGVSVectors(t *testing.T) {
	tlr := New(newTestProxy())
	ctx := context.Background()

	for _, tc := range hgvsVectors {
		t.Run(tc.input, func(t *testing.T) {
			a, err := tlr.TranslateFrom(ctx, tc.input, FormatHGVS)
			if err != nil {
				t.Fatal(err)
			}
			checkAllele(t, a, tc.acc, tc.start, tc.end, tc.state)

			if a.Digest != tc.alleleDigest {
				t.Errorf("allele digest = %q, want %q", a.Digest, tc.alleleDigest)
			}
			if a.ID != "ga4gh:VA."+tc.alleleDigest {
				t.Errorf("allele id = %q", a.ID)
			}
			if a.Location.Digest != tc.locDigest {
				t.Errorf("location digest = %q, want %q", a.Location.Digest, tc.locDigest)
			}
			if a.Location.ID != "ga4gh:SL."+tc.locDigest {
				t.Errorf("location id = %q", a.Location.ID)
			}

			out, err := tlr.TranslateTo(ctx, a, FormatHGVS)
			if err != nil {
				t.Fatal(err)
			}
			want := tc.rendered
			if want == "" {
				want = tc.input
			}
			if len(out) != 1 || out[0] != want {
				t.Errorf("rendered = %q, want [%q]", out, want)
			}
		})
	}
}

func TestHGVSRLESeqLimit(t *testing.T) {
	tlr := New(newTestProxy())
	ctx := context.Background()
	input := "NC_000013.11:g.32331043_32331094dup"

	// the expanded sequence exceeds the default limit and is elided
	a, err := tlr.TranslateFrom(ctx, input, FormatHGVS)
	if err != nil {
		t.Fatal(err)
	}
	checkAllele(t, a, chr13Acc, 32331042, 32331094, models.NewRLE(104, 52))
	if a.Digest != "j7qUzb1uvmdxLAbtdCPiay4kIRQmyZNv" {
		t.Errorf("allele digest = %q", a.Digest)
	}
	if a.Location.Digest != "88oOqkUgALP7fnN8P8lbvCosFhG8YpY0" {
		t.Errorf("location digest = %q", a.Location.Digest)
	}

	// an elided sequence cannot be rendered
	if _, err := tlr.TranslateTo(ctx, a, FormatHGVS); !errors.Is(err, verrors.ErrMissingData) {
		t.Errorf("TranslateTo err = %v, want ErrMissingData", err)
	}

	// with no limit the sequence is carried and renders back
	a, err = tlr.TranslateFrom(ctx, input, FormatHGVS, WithUnlimitedRLESequence())
	if err != nil {
		t.Fatal(err)
	}
	checkAllele(t, a, chr13Acc, 32331042, 32331094, rleWithSeq(104, 52, brca2Tract+brca2Tract))
	if a.Digest != "j7qUzb1uvmdxLAbtdCPiay4kIRQmyZNv" {
		t.Errorf("allele digest with sequence = %q; eliding must not change it", a.Digest)
	}

	out, err := tlr.TranslateTo(ctx, a, FormatHGVS)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != input {
		t.Errorf("rendered = %q, want [%q]", out, input)
	}
}

func TestHGVSUnsupportedCoordinates(t *testing.T) {
	tlr := New(newTestProxy())
	ctx := context.Background()

	for _, input := range []string{
		"NM_182763.2:c.688C>T",
		"NM_182763.2:r.688c>u",
		"NP_000050.2:p.Trp24Cys",
	} {
		if _, err := tlr.TranslateFrom(ctx, input, FormatHGVS); !errors.Is(err, verrors.ErrUnsupported) && !errors.Is(err, verrors.ErrSyntax) {
			t.Errorf("%s: err = %v, want unsupported or syntax error", input, err)
		}
	}
}

func TestHGVSInversionRejected(t *testing.T) {
	tlr := New(newTestProxy())
	_, err := tlr.TranslateFrom(context.Background(), "NC_000013.11:g.19993838_19993839inv", FormatHGVS)
	if !errors.Is(err, verrors.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestHGVSSyntaxErrors(t *testing.T) {
	tlr := New(newTestProxy())
	ctx := context.Background()

	for _, input := range []string{
		"NC_000019.10",
		"NC_000019.10:g.",
		"NC_000019.10:g.12_10del",
		"NC_000019.10:g.289464_289470insCACA",
	} {
		if _, err := tlr.TranslateFrom(ctx, input, FormatHGVS); !errors.Is(err, verrors.ErrSyntax) {
			t.Errorf("%s: err = %v, want ErrSyntax", input, err)
		}
	}
}

func TestHGVSReferenceValidation(t *testing.T) {
	tlr := New(newTestProxy())
	ctx := context.Background()

	// stated reference base disagrees with the assembly
	_, err := tlr.TranslateFrom(ctx, "NC_000019.10:g.44908822G>T", FormatHGVS)
	if !errors.Is(err, verrors.ErrReferenceMismatch) {
		t.Fatalf("err = %v, want ErrReferenceMismatch", err)
	}

	// validation off accepts it
	if _, err := tlr.TranslateFrom(ctx, "NC_000019.10:g.44908822G>T", FormatHGVS, WithValidation(false)); err != nil {
		t.Errorf("err with validation off = %v", err)
	}
}

func TestToHGVSUnresolvedReference(t *testing.T) {
	tlr := New(newTestProxy())

	loc := &models.SequenceLocation{
		Type:                 models.TypeSequenceLocation,
		SequenceReferenceRef: "seqrefs.jsonc#/NM_181798.1",
		Start:                1262,
		End:                  1263,
	}
	a := models.NewAllele(loc, models.NewLiteral("T"))

	_, err := tlr.TranslateTo(context.Background(), a, FormatHGVS)
	if !errors.Is(err, verrors.ErrUnresolvedReference) {
		t.Fatalf("err = %v, want ErrUnresolvedReference", err)
	}
	want := "`location.sequenceReference` expects a `SequenceReference`"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}
