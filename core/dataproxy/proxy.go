// Package dataproxy defines the reference-sequence access boundary: a
// small interface returning sequence slices and accession metadata, with
// in-memory, cached, SQLite-backed, store-backed, and remote (refget REST)
// implementations.
//
// Identifiers are namespaced aliases ("refseq:NC_000019.10", "GRCh38:19",
// "ga4gh:SQ...") or bare refget accessions ("SQ...").
package dataproxy

import (
	"context"
	"strings"

	"github.com/seqvarlab/varnorm/core/digest"
)

// Metadata describes a stored reference sequence.
type Metadata struct {
	// Length is the full sequence length in residues.
	Length int `json:"length"`
	// Aliases are all known namespaced aliases, including "ga4gh:SQ...".
	Aliases []string `json:"aliases"`
}

// SequenceDataProxy resolves sequence identifiers and returns reference
// sequence slices. Implementations must be safe for concurrent reads.
type SequenceDataProxy interface {
	// GetSequence returns the subsequence [start, end) of the identified
	// sequence, zero-based half-open. end < 0 means to the end of the
	// sequence.
	GetSequence(ctx context.Context, id string, start, end int) (string, error)

	// GetMetadata returns metadata for the identified sequence.
	GetMetadata(ctx context.Context, id string) (*Metadata, error)

	// TranslateIdentifier returns the identified sequence's aliases in
	// the given namespace; namespace "" returns all aliases.
	TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error)
}

// RefgetNamespace is the alias namespace of computed refget accessions.
const RefgetNamespace = "ga4gh"

// RefgetAccession computes the refget accession ("SQ.<digest>") for a
// sequence.
func RefgetAccession(sequence string) string {
	return digest.PrefixSequence + digest.PrefixSep + digest.SHA512t24uString(sequence)
}

// DeriveRefgetAccession resolves any alias to the bare refget accession
// ("SQ.<digest>") of the sequence it names.
func DeriveRefgetAccession(ctx context.Context, p SequenceDataProxy, id string) (string, error) {
	aliases, err := p.TranslateIdentifier(ctx, id, RefgetNamespace)
	if err != nil {
		return "", err
	}
	for _, a := range aliases {
		acc := strings.TrimPrefix(a, RefgetNamespace+":")
		if strings.HasPrefix(acc, digest.PrefixSequence+digest.PrefixSep) {
			return acc, nil
		}
	}
	return "", &aliasError{id: id}
}

type aliasError struct{ id string }

func (e *aliasError) Error() string {
	return "no refget accession known for " + e.id
}

// StripNamespace removes a leading "namespace:" from an alias.
func StripNamespace(alias string) string {
	if i := strings.IndexByte(alias, ':'); i >= 0 {
		return alias[i+1:]
	}
	return alias
}
