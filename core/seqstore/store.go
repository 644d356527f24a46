// Package seqstore provides content-addressed storage for reference
// sequences. Sequences are stored by their refget accession
// ("SQ.<digest>"), ensuring deduplication and enabling verification of
// content integrity. Range reads never load the full sequence.
package seqstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/seqvarlab/varnorm/core/digest"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// ErrSequenceNotFound is returned when a sequence with the given
// accession does not exist.
var ErrSequenceNotFound = errors.New("sequence not found")

// ErrInvalidAccession is returned when an accession string is not a
// valid refget accession.
var ErrInvalidAccession = errors.New("invalid accession format")

// accessionPattern matches a refget accession ("SQ." + 32 base64url chars).
var accessionPattern = regexp.MustCompile(`^SQ\.[A-Za-z0-9_-]{32}$`)

// Meta describes a stored sequence.
type Meta struct {
	Length  int      `json:"length"`
	Aliases []string `json:"aliases"`
}

// Store provides content-addressed storage for reference sequences.
type Store struct {
	root string
}

// New creates a sequence store at the given root directory. The
// directory structure is created if it doesn't exist.
func New(root string) (*Store, error) {
	for _, dir := range []string{
		filepath.Join(root, "seqs", "sq"),
		filepath.Join(root, "meta"),
		filepath.Join(root, "aliases"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Put stores a sequence under its computed refget accession and records
// the given namespaced aliases. Storing the same sequence twice is a
// no-op apart from any new aliases. Returns the accession.
func (s *Store) Put(sequence []byte, aliases ...string) (string, error) {
	acc := digest.PrefixSequence + digest.PrefixSep + digest.SHA512t24u(sequence)

	blobPath := s.pathForAccession(acc)
	if _, err := os.Stat(blobPath); err != nil {
		if err := writeAtomic(blobPath, sequence); err != nil {
			return "", fmt.Errorf("failed to write sequence: %w", err)
		}
	}

	meta, err := s.Metadata(acc)
	if err != nil && !errors.Is(err, ErrSequenceNotFound) {
		return "", err
	}
	if meta == nil {
		meta = &Meta{Length: len(sequence)}
	}
	for _, a := range aliases {
		if !containsString(meta.Aliases, a) {
			meta.Aliases = append(meta.Aliases, a)
		}
		if err := s.writeAliasPointer(a, acc); err != nil {
			return "", err
		}
	}
	if err := s.writeMeta(acc, meta); err != nil {
		return "", err
	}
	return acc, nil
}

// Get retrieves the full sequence for an accession.
// Returns ErrSequenceNotFound if the sequence does not exist.
func (s *Store) Get(accession string) ([]byte, error) {
	if !isValidAccession(accession) {
		return nil, ErrInvalidAccession
	}
	data, err := os.ReadFile(s.pathForAccession(accession))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSequenceNotFound
		}
		return nil, fmt.Errorf("failed to read sequence: %w", err)
	}
	return data, nil
}

// ReadRange reads the subsequence [start, end) without loading the whole
// sequence. end < 0 means the end of the sequence.
func (s *Store) ReadRange(accession string, start, end int) ([]byte, error) {
	if !isValidAccession(accession) {
		return nil, ErrInvalidAccession
	}
	f, err := os.Open(s.pathForAccession(accession))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSequenceNotFound
		}
		return nil, fmt.Errorf("failed to open sequence: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	length := int(fi.Size())
	if end < 0 {
		end = length
	}
	if start < 0 || start > end || end > length {
		return nil, fmt.Errorf("invalid range [%d, %d) for %s (length %d)", start, end, accession, length)
	}
	buf := make([]byte, end-start)
	if _, err := f.ReadAt(buf, int64(start)); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read range: %w", err)
	}
	return buf, nil
}

// Exists checks if a sequence with the given accession exists.
func (s *Store) Exists(accession string) bool {
	if !isValidAccession(accession) {
		return false
	}
	_, err := os.Stat(s.pathForAccession(accession))
	return err == nil
}

// Metadata returns the length and aliases recorded for an accession.
func (s *Store) Metadata(accession string) (*Meta, error) {
	if !isValidAccession(accession) {
		return nil, ErrInvalidAccession
	}
	data, err := os.ReadFile(s.metaPath(accession))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSequenceNotFound
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &meta, nil
}

// Resolve looks up the accession recorded for a namespaced alias.
// Returns ErrSequenceNotFound if no alias pointer exists.
func (s *Store) Resolve(alias string) (string, error) {
	data, err := os.ReadFile(s.aliasPath(alias))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrSequenceNotFound
		}
		return "", fmt.Errorf("failed to read alias pointer: %w", err)
	}
	var ptr aliasPointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return "", fmt.Errorf("failed to parse alias pointer: %w", err)
	}
	return ptr.Accession, nil
}

// aliasPointer is the structure stored in alias pointer files.
type aliasPointer struct {
	Accession string `json:"accession"`
}

func (s *Store) writeAliasPointer(alias, accession string) error {
	path := s.aliasPath(alias)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := json.Marshal(aliasPointer{Accession: accession})
	if err != nil {
		return fmt.Errorf("failed to marshal alias pointer: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write alias pointer: %w", err)
	}
	return nil
}

func (s *Store) writeMeta(accession string, meta *Meta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := writeAtomic(s.metaPath(accession), data); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// pathForAccession returns the file path for a stored sequence.
// Sequences are stored at: <root>/seqs/sq/<first2 of digest>/<accession>
func (s *Store) pathForAccession(accession string) string {
	prefix := accession[len(digest.PrefixSequence)+1:][:2]
	return filepath.Join(s.root, "seqs", "sq", prefix, accession)
}

func (s *Store) metaPath(accession string) string {
	return filepath.Join(s.root, "meta", accession+".json")
}

func (s *Store) aliasPath(alias string) string {
	return filepath.Join(s.root, "aliases", url.PathEscape(alias)+".json")
}

func isValidAccession(accession string) bool {
	return accessionPattern.MatchString(accession)
}

// writeAtomic writes data to path via a temp file and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tempPath := tempFile.Name()
	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return err
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
