package dataproxy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	verrors "github.com/seqvarlab/varnorm/core/errors"
)

// MemoryProxy is an in-memory SequenceDataProxy. Sequences may be added
// whole, or as windows — fragments with a known offset — which is how
// tests stage small slices of chromosome-scale sequences.
type MemoryProxy struct {
	mu      sync.RWMutex
	records map[string]*memRecord // keyed by bare refget accession
	aliases map[string]string     // namespaced alias -> refget accession
}

type memRecord struct {
	windows []memWindow
	length  int // full sequence length; max window extent when unknown
	aliases []string
}

type memWindow struct {
	offset   int
	residues string
}

// NewMemoryProxy returns an empty in-memory proxy.
func NewMemoryProxy() *MemoryProxy {
	return &MemoryProxy{
		records: make(map[string]*memRecord),
		aliases: make(map[string]string),
	}
}

// AddSequence stores a complete sequence under its computed refget
// accession, registering the given namespaced aliases. Returns the
// accession.
func (p *MemoryProxy) AddSequence(sequence string, aliases ...string) string {
	acc := RefgetAccession(sequence)
	p.addWindow(acc, 0, sequence, aliases)
	return acc
}

// AddWindow stores a fragment of the sequence named by accession, starting
// at the given zero-based offset. A sequence may carry several windows;
// slices outside every window fail.
func (p *MemoryProxy) AddWindow(accession string, offset int, window string, aliases ...string) {
	p.addWindow(accession, offset, window, aliases)
}

func (p *MemoryProxy) addWindow(acc string, offset int, window string, aliases []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.records[acc]
	if rec == nil {
		rec = &memRecord{aliases: []string{RefgetNamespace + ":" + acc}}
		p.records[acc] = rec
		p.aliases[rec.aliases[0]] = acc
	}
	rec.windows = append(rec.windows, memWindow{offset: offset, residues: window})
	if extent := offset + len(window); extent > rec.length {
		rec.length = extent
	}
	for _, a := range aliases {
		rec.aliases = append(rec.aliases, a)
		p.aliases[a] = acc
	}
}

func (p *MemoryProxy) resolve(id string) (*memRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	acc := strings.TrimPrefix(id, RefgetNamespace+":")
	if rec, ok := p.records[acc]; ok {
		return rec, nil
	}
	if mapped, ok := p.aliases[id]; ok {
		return p.records[mapped], nil
	}
	return nil, verrors.NewNotFound("sequence", id)
}

// GetSequence returns the subsequence [start, end); end < 0 means the end
// of the sequence.
func (p *MemoryProxy) GetSequence(_ context.Context, id string, start, end int) (string, error) {
	rec, err := p.resolve(id)
	if err != nil {
		return "", err
	}
	if end < 0 {
		end = rec.length
	}
	if start < 0 || start > end {
		return "", fmt.Errorf("invalid range [%d, %d)", start, end)
	}
	for _, w := range rec.windows {
		if start >= w.offset && end <= w.offset+len(w.residues) {
			return w.residues[start-w.offset : end-w.offset], nil
		}
	}
	return "", fmt.Errorf("range [%d, %d) outside available windows of %s", start, end, id)
}

// GetMetadata returns the sequence's length and aliases.
func (p *MemoryProxy) GetMetadata(_ context.Context, id string) (*Metadata, error) {
	rec, err := p.resolve(id)
	if err != nil {
		return nil, err
	}
	return &Metadata{Length: rec.length, Aliases: append([]string(nil), rec.aliases...)}, nil
}

// TranslateIdentifier returns the aliases of the identified sequence in
// the given namespace ("" for all).
func (p *MemoryProxy) TranslateIdentifier(_ context.Context, id, namespace string) ([]string, error) {
	rec, err := p.resolve(id)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		return append([]string(nil), rec.aliases...), nil
	}
	var out []string
	for _, a := range rec.aliases {
		if strings.HasPrefix(a, namespace+":") {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ SequenceDataProxy = (*MemoryProxy)(nil)
