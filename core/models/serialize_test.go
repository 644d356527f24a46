package models

import (
	"testing"
)

// Digest vectors cross-checked against the reference identifier scheme.
var (
	brca2Ref = "SQ._0wi-qoDrvram155UmcSC-zA5ZK4fpLT"
	egfrRef  = "SQ.F-LrLMe1SRpfUZHkQmvkVKFEGaoDeHul"
)

func TestSequenceLocationDigest(t *testing.T) {
	loc := NewSequenceLocation(NewSequenceReference(brca2Ref), 32936731, 32936732)
	got, err := ComputeDigest(loc)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}
	want := "28YsnRvD40gKu1x3nev0gRzRz-5OTlpS"
	if got != want {
		t.Errorf("location digest = %q, want %q", got, want)
	}
}

func TestAlleleDigest(t *testing.T) {
	loc := NewSequenceLocation(NewSequenceReference(brca2Ref), 32936731, 32936732)
	a := NewAllele(loc, NewLiteral("C"))
	got, err := ComputeDigest(a)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}
	want := "GJ2JySBMXePcV2yItyvCfbGBUoawOBON"
	if got != want {
		t.Errorf("allele digest = %q, want %q", got, want)
	}

	id, err := Identify(a)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if id != "ga4gh:VA."+want {
		t.Errorf("Identify = %q", id)
	}
}

func TestAlleleDigestSNV(t *testing.T) {
	loc := NewSequenceLocation(NewSequenceReference(egfrRef), 55181319, 55181320)
	a := NewAllele(loc, NewLiteral("T"))
	got, err := ComputeDigest(a)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}
	if got != "Hy2XU_-rp4IMh6I_1NXNecBo8Qx8n0oE" {
		t.Errorf("allele digest = %q", got)
	}
}

func TestRLEDigestExcludesSequence(t *testing.T) {
	loc := NewSequenceLocation(NewSequenceReference(brca2Ref), 32331042, 32331094)
	locDigest, err := ComputeDigest(loc)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}
	if locDigest != "88oOqkUgALP7fnN8P8lbvCosFhG8YpY0" {
		t.Errorf("location digest = %q", locDigest)
	}

	rle := NewRLE(104, 52)
	withoutSeq := NewAllele(loc, rle)
	d1, err := ComputeDigest(withoutSeq)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}
	if d1 != "j7qUzb1uvmdxLAbtdCPiay4kIRQmyZNv" {
		t.Errorf("RLE allele digest = %q", d1)
	}

	seq := "TTTAGTTGAACTACAGGTTTTTTTGTTGTTGTTGTTTTGATTTTTTTTTTTTTTTAGTTGAACTACAGGTTTTTTTGTTGTTGTTGTTTTGATTTTTTTTTTTT"
	rleWith := NewRLE(104, 52)
	rleWith.Sequence = &seq
	withSeq := NewAllele(loc, rleWith)
	d2, err := ComputeDigest(withSeq)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}
	if d1 != d2 {
		t.Errorf("eliding the RLE sequence changed the digest: %q vs %q", d1, d2)
	}
}

func TestDigestDeterminism(t *testing.T) {
	loc := NewSequenceLocation(NewSequenceReference(brca2Ref), 100, 101)
	a := NewAllele(loc, NewLiteral("G"))
	d1, err1 := ComputeDigest(a)
	d2, err2 := ComputeDigest(a)
	if err1 != nil || err2 != nil {
		t.Fatalf("ComputeDigest: %v / %v", err1, err2)
	}
	if d1 != d2 {
		t.Errorf("digest not deterministic: %q vs %q", d1, d2)
	}
}

// The allele digest must be the same whether the location is embedded or
// replaced by its reference token.
func TestAlleleDigestViaLocationRef(t *testing.T) {
	loc := NewSequenceLocation(NewSequenceReference(brca2Ref), 32936731, 32936732)
	embedded := NewAllele(loc, NewLiteral("C"))
	want, err := ComputeDigest(embedded)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}

	flattened := &Allele{
		Type:        TypeAllele,
		LocationRef: "ga4gh:SL.28YsnRvD40gKu1x3nev0gRzRz-5OTlpS",
		State:       NewLiteral("C"),
	}
	got, err := ComputeDigest(flattened)
	if err != nil {
		t.Fatalf("ComputeDigest (flattened): %v", err)
	}
	if got != want {
		t.Errorf("flattened digest %q != embedded digest %q", got, want)
	}
}

func TestCanonicalBytes(t *testing.T) {
	b, err := CanonicalBytes(map[string]any{
		"b":    1,
		"a":    "x",
		"nest": map[string]any{"z": true, "y": []any{"s", 2}},
	})
	if err != nil {
		t.Fatalf("CanonicalBytes: %v", err)
	}
	want := `{"a":"x","b":1,"nest":{"y":["s",2],"z":true}}`
	if string(b) != want {
		t.Errorf("CanonicalBytes = %s, want %s", b, want)
	}
}

func TestComputeDigestIncompleteAllele(t *testing.T) {
	if _, err := ComputeDigest(&Allele{Type: TypeAllele, State: NewLiteral("A")}); err == nil {
		t.Error("digest of allele without location succeeded")
	}
	loc := NewSequenceLocation(NewSequenceReference(brca2Ref), 0, 1)
	if _, err := ComputeDigest(&Allele{Type: TypeAllele, Location: loc}); err == nil {
		t.Error("digest of allele without state succeeded")
	}
}
