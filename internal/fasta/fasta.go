// Package fasta reads FASTA sequence files, optionally gzip- or
// xz-compressed, and loads their records into sequence repositories.
package fasta

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ulikunitz/xz"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/seqstore"
	"github.com/seqvarlab/varnorm/internal/logging"
)

// CompressionType identifies the compression of a FASTA file.
type CompressionType string

const (
	// CompressionNone is an uncompressed file.
	CompressionNone CompressionType = "none"
	// CompressionGzip is a gzip-compressed file.
	CompressionGzip CompressionType = "gzip"
	// CompressionXZ is an xz-compressed file.
	CompressionXZ CompressionType = "xz"
)

// refseqPattern matches RefSeq-style versioned accessions such as
// NC_000019.10 or NM_181798.1.
var refseqPattern = regexp.MustCompile(`^[A-Z]{2}_\d+(\.\d+)?$`)

// Record is a single FASTA entry. Name is the first whitespace-delimited
// token of the header line; Description is the remainder, if any.
type Record struct {
	Name        string
	Description string
	Sequence    string
}

// DetectCompression inspects a file's magic bytes to determine its
// compression. Files without a recognized magic are treated as plain text.
func DetectCompression(path string) (CompressionType, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", verrors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	magic := make([]byte, 6)
	n, err := io.ReadFull(file, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", verrors.Wrapf(err, "read magic bytes of %s", path)
	}

	// gzip magic (1f 8b)
	if n >= 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return CompressionGzip, nil
	}

	// XZ magic (fd 37 7a 58 5a 00)
	if n >= 6 && magic[0] == 0xfd && magic[1] == 0x37 && magic[2] == 0x7a &&
		magic[3] == 0x58 && magic[4] == 0x5a && magic[5] == 0x00 {
		return CompressionXZ, nil
	}

	return CompressionNone, nil
}

// Open opens a FASTA file for reading, transparently decompressing
// gzip and xz input based on the file's magic bytes.
func Open(path string) (io.ReadCloser, error) {
	compression, err := DetectCompression(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, verrors.Wrapf(err, "open %s", path)
	}

	switch compression {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, verrors.Wrapf(err, "create gzip reader for %s", path)
		}
		return &decompressCloser{Reader: gzReader, closers: []io.Closer{gzReader, file}}, nil
	case CompressionXZ:
		xzReader, err := xz.NewReader(file)
		if err != nil {
			file.Close()
			return nil, verrors.Wrapf(err, "create xz reader for %s", path)
		}
		return &decompressCloser{Reader: xzReader, closers: []io.Closer{file}}, nil
	default:
		return file, nil
	}
}

// decompressCloser pairs a decompression reader with the closers that
// must run when the consumer is done.
type decompressCloser struct {
	io.Reader
	closers []io.Closer
}

func (d *decompressCloser) Close() error {
	var firstErr error
	for _, c := range d.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Parse reads all FASTA records from r. Sequence residues are
// uppercased; blank lines are skipped.
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var records []Record
	var current *Record
	var seq strings.Builder
	line := 0

	flush := func() {
		if current != nil {
			current.Sequence = seq.String()
			records = append(records, *current)
			current = nil
			seq.Reset()
		}
	}

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text[0] == ';' {
			// Old-style comment line
			continue
		}
		if text[0] == '>' {
			flush()
			header := strings.TrimSpace(text[1:])
			if header == "" {
				return nil, verrors.NewSyntax("fasta", text, fmt.Sprintf("empty header at line %d", line))
			}
			name, description, _ := strings.Cut(header, " ")
			current = &Record{Name: name, Description: strings.TrimSpace(description)}
			continue
		}
		if current == nil {
			return nil, verrors.NewSyntax("fasta", text, fmt.Sprintf("sequence data before header at line %d", line))
		}
		seq.WriteString(strings.ToUpper(text))
	}
	if err := scanner.Err(); err != nil {
		return nil, verrors.Wrap(err, "scan fasta input")
	}
	flush()

	if len(records) == 0 {
		return nil, verrors.NewSyntax("fasta", "", "no records found")
	}
	return records, nil
}

// ReadFile reads all records from a FASTA file, decompressing as needed.
func ReadFile(path string) ([]Record, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r)
}

// Aliases derives repository aliases for a record: the raw name always,
// plus a refseq-namespaced form when the name looks like a RefSeq
// accession.
func Aliases(rec Record) []string {
	aliases := []string{rec.Name}
	if refseqPattern.MatchString(rec.Name) {
		aliases = append(aliases, "refseq:"+rec.Name)
	}
	return aliases
}

// IngestResult describes one record loaded into a repository.
type IngestResult struct {
	Name      string
	Accession string
	Length    int
	Aliases   []string
}

// IngestStore loads every record of a FASTA file into a sequence store.
// Sequences are digested on the way in, so re-ingesting a file is
// idempotent.
func IngestStore(store *seqstore.Store, path string) ([]IngestResult, error) {
	records, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	results := make([]IngestResult, 0, len(records))
	for _, rec := range records {
		aliases := Aliases(rec)
		hashes, err := store.PutWithBlake3([]byte(rec.Sequence), aliases...)
		if err != nil {
			return nil, verrors.Wrapf(err, "ingest %s", rec.Name)
		}
		logging.SequenceIngest(hashes.Accession, len(rec.Sequence), aliases, "source", path)
		results = append(results, IngestResult{
			Name:      rec.Name,
			Accession: hashes.Accession,
			Length:    len(rec.Sequence),
			Aliases:   aliases,
		})
	}
	return results, nil
}
