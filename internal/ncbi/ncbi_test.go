package ncbi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleESummary = `<?xml version="1.0" encoding="UTF-8" ?>
<eSummaryResult>
<DocSum>
	<Id>568815581</Id>
	<Item Name="Caption" Type="String">NC_000013</Item>
	<Item Name="Title" Type="String">Homo sapiens chromosome 13, GRCh38 reference primary assembly</Item>
	<Item Name="Extra" Type="String">gi|568815581|ref|NC_000013.11|</Item>
	<Item Name="Length" Type="Integer">114364328</Item>
	<Item Name="TaxId" Type="Integer">9606</Item>
	<Item Name="AccessionVersion" Type="String">NC_000013.11</Item>
</DocSum>
<DocSum>
	<Id>563317856</Id>
	<Item Name="Caption" Type="String">NM_181798</Item>
	<Item Name="Title" Type="String">Homo sapiens KCNQ1 overlapping transcript 1</Item>
	<Item Name="Length" Type="Integer">3356</Item>
	<Item Name="TaxId" Type="Integer">9606</Item>
	<Item Name="AccessionVersion" Type="String">NM_181798.1</Item>
</DocSum>
</eSummaryResult>`

const errorESummary = `<?xml version="1.0" encoding="UTF-8" ?>
<eSummaryResult>
<ERROR>Invalid uid NOSUCH at position=0</ERROR>
</eSummaryResult>`

func TestParseESummary(t *testing.T) {
	summaries, err := ParseESummary([]byte(sampleESummary))
	if err != nil {
		t.Fatalf("ParseESummary() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}

	first := summaries[0]
	if first.UID != "568815581" {
		t.Errorf("Expected UID 568815581, got %s", first.UID)
	}
	if first.AccessionVersion != "NC_000013.11" {
		t.Errorf("Expected accession NC_000013.11, got %s", first.AccessionVersion)
	}
	if first.Length != 114364328 {
		t.Errorf("Expected length 114364328, got %d", first.Length)
	}
	if first.TaxID != 9606 {
		t.Errorf("Expected taxid 9606, got %d", first.TaxID)
	}

	second := summaries[1]
	if second.AccessionVersion != "NM_181798.1" || second.Length != 3356 {
		t.Errorf("Unexpected second summary: %+v", second)
	}
}

func TestParseESummaryError(t *testing.T) {
	if _, err := ParseESummary([]byte(errorESummary)); err == nil {
		t.Error("Expected error for ERROR document, got nil")
	}
	if _, err := ParseESummary([]byte("<eSummaryResult></eSummaryResult>")); err == nil {
		t.Error("Expected error for empty result, got nil")
	}
	if _, err := ParseESummary([]byte("not xml <<<")); err == nil {
		// xmlquery tolerates some malformed input; empty result still errors
		t.Log("Malformed input parsed; acceptable if no DocSum found")
	}
}

func TestSummaryAliases(t *testing.T) {
	s := SequenceSummary{AccessionVersion: "NC_000013.11", Caption: "NC_000013"}
	aliases := s.Aliases()
	want := []string{"NC_000013.11", "refseq:NC_000013.11", "NC_000013"}
	if len(aliases) != len(want) {
		t.Fatalf("Aliases() = %v, want %v", aliases, want)
	}
	for i := range want {
		if aliases[i] != want[i] {
			t.Errorf("Aliases()[%d] = %s, want %s", i, aliases[i], want[i])
		}
	}
}

func TestFetchSummaries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/esummary.fcgi" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("db"); got != "nuccore" {
			t.Errorf("Expected db=nuccore, got %s", got)
		}
		if got := r.URL.Query().Get("id"); got != "NC_000013.11,NM_181798.1" {
			t.Errorf("Unexpected id parameter: %s", got)
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(sampleESummary))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	summaries, err := client.FetchSummaries(context.Background(), "NC_000013.11", "NM_181798.1")
	if err != nil {
		t.Fatalf("FetchSummaries() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].AccessionVersion != "NC_000013.11" {
		t.Errorf("Unexpected first summary: %+v", summaries[0])
	}
}

func TestFetchSummariesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.FetchSummaries(context.Background(), "NC_000013.11"); err == nil {
		t.Error("Expected error for bad gateway, got nil")
	}
	if _, err := client.FetchSummaries(context.Background()); err == nil {
		t.Error("Expected error for empty id list, got nil")
	}
}
