package seqstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)

	acc, err := s.Put([]byte("ACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if acc != "SQ.aKF498dAxcJAqme6QYQ7EZ07-fiw8Kw2" {
		t.Fatalf("accession = %q", acc)
	}

	got, err := s.Get(acc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ACGT" {
		t.Errorf("Get = %q", got)
	}
}

func TestPutDeduplicates(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Put([]byte("ACGTACGT"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Put([]byte("ACGTACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("accessions differ: %q vs %q", first, second)
	}
}

func TestReadRange(t *testing.T) {
	s := newTestStore(t)
	acc, err := s.Put([]byte("ACGTACGTACGT"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadRange(acc, 2, 6)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "GTAC" {
		t.Errorf("ReadRange = %q", got)
	}

	got, err = s.ReadRange(acc, 8, -1)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ACGT" {
		t.Errorf("tail = %q", got)
	}

	if _, err := s.ReadRange(acc, 4, 100); err == nil {
		t.Error("want error for range past end")
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("SQ.aKF498dAxcJAqme6QYQ7EZ07-fiw8Kw2")
	if !errors.Is(err, ErrSequenceNotFound) {
		t.Errorf("err = %v, want ErrSequenceNotFound", err)
	}

	_, err = s.Get("not-an-accession")
	if !errors.Is(err, ErrInvalidAccession) {
		t.Errorf("err = %v, want ErrInvalidAccession", err)
	}
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	acc, err := s.Put([]byte("ACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Exists(acc) {
		t.Error("Exists = false for stored sequence")
	}
	if s.Exists("SQ.0000000000000000000000000000000_") {
		t.Error("Exists = true for absent sequence")
	}
	if s.Exists("garbage") {
		t.Error("Exists = true for invalid accession")
	}
}

func TestAliasesAndMetadata(t *testing.T) {
	s := newTestStore(t)
	acc, err := s.Put([]byte("ACGTACGT"), "refseq:NC_TEST.1", "GRCh38:1")
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.Metadata(acc)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Length != 8 {
		t.Errorf("Length = %d", meta.Length)
	}
	if len(meta.Aliases) != 2 {
		t.Errorf("Aliases = %v", meta.Aliases)
	}

	got, err := s.Resolve("refseq:NC_TEST.1")
	if err != nil {
		t.Fatal(err)
	}
	if got != acc {
		t.Errorf("Resolve = %q, want %q", got, acc)
	}

	// re-put with a new alias keeps the old ones
	if _, err := s.Put([]byte("ACGTACGT"), "ensembl:1"); err != nil {
		t.Fatal(err)
	}
	meta, err = s.Metadata(acc)
	if err != nil {
		t.Fatal(err)
	}
	if len(meta.Aliases) != 3 {
		t.Errorf("Aliases after re-put = %v", meta.Aliases)
	}
}

func TestBlake3Pointer(t *testing.T) {
	s := newTestStore(t)

	res, err := s.PutWithBlake3([]byte("ACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Accession != "SQ.aKF498dAxcJAqme6QYQ7EZ07-fiw8Kw2" {
		t.Errorf("Accession = %q", res.Accession)
	}
	if res.BLAKE3 != Blake3Hash([]byte("ACGT")) {
		t.Errorf("BLAKE3 = %q", res.BLAKE3)
	}
	if len(res.BLAKE3) != 64 {
		t.Errorf("BLAKE3 length = %d", len(res.BLAKE3))
	}

	acc, err := s.LookupBlake3(res.BLAKE3)
	if err != nil {
		t.Fatal(err)
	}
	if acc != res.Accession {
		t.Errorf("LookupBlake3 = %q", acc)
	}

	data, err := s.GetByBlake3(res.BLAKE3)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ACGT" {
		t.Errorf("GetByBlake3 = %q", data)
	}
}

func TestLookupBlake3Invalid(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LookupBlake3("nothex"); !errors.Is(err, ErrInvalidAccession) {
		t.Errorf("err = %v", err)
	}
	absent := "0000000000000000000000000000000000000000000000000000000000000000"
	if _, err := s.LookupBlake3(absent); !errors.Is(err, ErrSequenceNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestBlobLayout(t *testing.T) {
	s := newTestStore(t)
	acc, err := s.Put([]byte("ACGT"))
	if err != nil {
		t.Fatal(err)
	}
	// digest starts after "SQ."
	want := filepath.Join(s.Root(), "seqs", "sq", acc[3:5], acc)
	if _, err := os.Stat(want); err != nil {
		t.Errorf("blob not at expected path %s: %v", want, err)
	}
}
