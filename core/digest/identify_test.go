package digest

import "testing"

func TestFormat(t *testing.T) {
	got := Format(PrefixAllele, "GJ2JySBMXePcV2yItyvCfbGBUoawOBON")
	want := "ga4gh:VA.GJ2JySBMXePcV2yItyvCfbGBUoawOBON"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	prefix, dgst, err := Parse("ga4gh:SL.28YsnRvD40gKu1x3nev0gRzRz-5OTlpS")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prefix != PrefixSequenceLocation {
		t.Errorf("prefix = %q, want %q", prefix, PrefixSequenceLocation)
	}
	if dgst != "28YsnRvD40gKu1x3nev0gRzRz-5OTlpS" {
		t.Errorf("digest = %q", dgst)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	malformed := []string{
		"",
		"ga4gh:VA",
		"ga4gh:va.GJ2JySBMXePcV2yItyvCfbGBUoawOBON",
		"ga4gh:VA.tooshort",
		"other:VA.GJ2JySBMXePcV2yItyvCfbGBUoawOBON",
		"ga4gh:VA.GJ2JySBMXePcV2yItyvCfbGBUoawOBON+",
	}
	for _, s := range malformed {
		if _, _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
		if IsIdentifier(s) {
			t.Errorf("IsIdentifier(%q) = true", s)
		}
	}
}

func TestExtractDigest(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ga4gh:VA.GJ2JySBMXePcV2yItyvCfbGBUoawOBON", "GJ2JySBMXePcV2yItyvCfbGBUoawOBON"},
		{"SQ.IIB53T8CNeJJdUqzn9V_JnRtQadwWCbl", "IIB53T8CNeJJdUqzn9V_JnRtQadwWCbl"},
		{"28YsnRvD40gKu1x3nev0gRzRz-5OTlpS", "28YsnRvD40gKu1x3nev0gRzRz-5OTlpS"},
		{"refseq:NC_000019.10", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractDigest(tt.in); got != tt.want {
			t.Errorf("ExtractDigest(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsDigest(t *testing.T) {
	if !IsDigest("z4PhNX7vuL3xVChQ1m2AB9Yg5AULVxXc") {
		t.Error("valid digest rejected")
	}
	if IsDigest("z4PhNX7vuL3xVChQ1m2AB9Yg5AULVxX") {
		t.Error("31-char string accepted")
	}
}
