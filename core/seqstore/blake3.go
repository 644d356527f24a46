package seqstore

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/zeebo/blake3"
)

// HashResult contains both the refget accession and BLAKE3 hash for a
// stored sequence.
type HashResult struct {
	Accession string `json:"accession"`
	BLAKE3    string `json:"blake3"`
}

// blake3Pointer is the structure stored in BLAKE3 pointer files.
type blake3Pointer struct {
	Accession string `json:"accession"`
}

// blake3Pattern matches a valid lowercase BLAKE3 hex string (64 characters).
var blake3Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// PutWithBlake3 stores the sequence and returns both its refget accession
// and its BLAKE3 hash. It creates a pointer file that maps the BLAKE3
// hash to the accession, so imports can be verified with a fast
// non-cryptographic-strength-critical secondary hash.
func (s *Store) PutWithBlake3(sequence []byte, aliases ...string) (*HashResult, error) {
	acc, err := s.Put(sequence, aliases...)
	if err != nil {
		return nil, err
	}

	b3 := blake3.Sum256(sequence)
	blake3Hash := hex.EncodeToString(b3[:])

	if err := s.createBlake3Pointer(blake3Hash, acc); err != nil {
		return nil, fmt.Errorf("failed to create BLAKE3 pointer: %w", err)
	}

	return &HashResult{Accession: acc, BLAKE3: blake3Hash}, nil
}

// createBlake3Pointer creates a pointer file that maps a BLAKE3 hash to
// a refget accession.
// Pointer files are stored at: <root>/seqs/blake3/<first2>/<blake3>.json
func (s *Store) createBlake3Pointer(blake3Hash, accession string) error {
	pointerPath := s.blake3Path(blake3Hash)
	if _, err := os.Stat(pointerPath); err == nil {
		return nil
	}
	data, err := json.Marshal(blake3Pointer{Accession: accession})
	if err != nil {
		return fmt.Errorf("failed to marshal pointer: %w", err)
	}
	if err := writeAtomic(pointerPath, data); err != nil {
		return fmt.Errorf("failed to write pointer: %w", err)
	}
	return nil
}

// LookupBlake3 looks up a refget accession by its corresponding BLAKE3
// hash. Returns ErrSequenceNotFound if no pointer file exists.
func (s *Store) LookupBlake3(blake3Hash string) (string, error) {
	if !blake3Pattern.MatchString(blake3Hash) {
		return "", ErrInvalidAccession
	}
	data, err := os.ReadFile(s.blake3Path(blake3Hash))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrSequenceNotFound
		}
		return "", fmt.Errorf("failed to read pointer: %w", err)
	}
	var pointer blake3Pointer
	if err := json.Unmarshal(data, &pointer); err != nil {
		return "", fmt.Errorf("failed to parse pointer: %w", err)
	}
	return pointer.Accession, nil
}

// GetByBlake3 retrieves a sequence by its BLAKE3 hash.
func (s *Store) GetByBlake3(blake3Hash string) ([]byte, error) {
	acc, err := s.LookupBlake3(blake3Hash)
	if err != nil {
		return nil, err
	}
	return s.Get(acc)
}

func (s *Store) blake3Path(blake3Hash string) string {
	prefix := blake3Hash[:2]
	return filepath.Join(s.root, "seqs", "blake3", prefix, blake3Hash+".json")
}

// Blake3Hash computes the BLAKE3 hash of the given data without storing it.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
