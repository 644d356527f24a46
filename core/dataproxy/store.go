package dataproxy

import (
	"context"
	"errors"
	"strings"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/seqstore"
)

// StoreProxy is a SequenceDataProxy backed by a local content-addressed
// sequence store.
type StoreProxy struct {
	store *seqstore.Store
}

// NewStoreProxy wraps a sequence store.
func NewStoreProxy(store *seqstore.Store) *StoreProxy {
	return &StoreProxy{store: store}
}

func (p *StoreProxy) resolve(id string) (string, error) {
	acc := strings.TrimPrefix(id, RefgetNamespace+":")
	if p.store.Exists(acc) {
		return acc, nil
	}
	mapped, err := p.store.Resolve(id)
	if errors.Is(err, seqstore.ErrSequenceNotFound) {
		return "", verrors.NewNotFound("sequence", id)
	}
	if err != nil {
		return "", err
	}
	return mapped, nil
}

// GetSequence returns the subsequence [start, end); end < 0 means the end
// of the sequence.
func (p *StoreProxy) GetSequence(_ context.Context, id string, start, end int) (string, error) {
	acc, err := p.resolve(id)
	if err != nil {
		return "", err
	}
	data, err := p.store.ReadRange(acc, start, end)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetMetadata returns the sequence's length and aliases.
func (p *StoreProxy) GetMetadata(_ context.Context, id string) (*Metadata, error) {
	acc, err := p.resolve(id)
	if err != nil {
		return nil, err
	}
	meta, err := p.store.Metadata(acc)
	if err != nil {
		return nil, err
	}
	aliases := append([]string{RefgetNamespace + ":" + acc}, meta.Aliases...)
	return &Metadata{Length: meta.Length, Aliases: aliases}, nil
}

// TranslateIdentifier returns the identified sequence's aliases in the
// given namespace ("" for all).
func (p *StoreProxy) TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error) {
	md, err := p.GetMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		return md.Aliases, nil
	}
	var out []string
	for _, a := range md.Aliases {
		if strings.HasPrefix(a, namespace+":") {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ SequenceDataProxy = (*StoreProxy)(nil)
