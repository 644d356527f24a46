package dataproxy

import (
	"context"
	"errors"
	"testing"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/seqstore"
)

func newTestStoreProxy(t *testing.T) (*StoreProxy, *seqstore.Store) {
	t.Helper()
	store, err := seqstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("seqstore.New: %v", err)
	}
	return NewStoreProxy(store), store
}

func TestStoreProxyGetSequence(t *testing.T) {
	p, store := newTestStoreProxy(t)
	acc, err := store.Put([]byte("ACGTACGTACGT"), "refseq:NC_TEST.1")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, id := range []string{acc, "ga4gh:" + acc, "refseq:NC_TEST.1"} {
		got, err := p.GetSequence(ctx, id, 2, 6)
		if err != nil {
			t.Fatalf("GetSequence(%q): %v", id, err)
		}
		if got != "GTAC" {
			t.Errorf("GetSequence(%q) = %q", id, got)
		}
	}
}

func TestStoreProxyMetadata(t *testing.T) {
	p, store := newTestStoreProxy(t)
	acc, err := store.Put([]byte("ACGT"), "refseq:NC_TEST.1")
	if err != nil {
		t.Fatal(err)
	}

	md, err := p.GetMetadata(context.Background(), "refseq:NC_TEST.1")
	if err != nil {
		t.Fatal(err)
	}
	if md.Length != 4 {
		t.Errorf("Length = %d", md.Length)
	}
	if len(md.Aliases) != 2 || md.Aliases[0] != "ga4gh:"+acc {
		t.Errorf("Aliases = %v", md.Aliases)
	}

	got, err := DeriveRefgetAccession(context.Background(), p, "refseq:NC_TEST.1")
	if err != nil {
		t.Fatal(err)
	}
	if got != acc {
		t.Errorf("DeriveRefgetAccession = %q, want %q", got, acc)
	}
}

func TestStoreProxyNotFound(t *testing.T) {
	p, _ := newTestStoreProxy(t)
	_, err := p.GetSequence(context.Background(), "refseq:NC_MISSING.1", 0, 1)
	if !errors.Is(err, verrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
