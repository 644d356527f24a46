package dataproxy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sequences (
	accession TEXT PRIMARY KEY,
	length    INTEGER NOT NULL,
	residues  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS aliases (
	alias     TEXT PRIMARY KEY,
	accession TEXT NOT NULL REFERENCES sequences(accession)
);
CREATE INDEX IF NOT EXISTS idx_aliases_accession ON aliases(accession);
`

// SQLiteProxy is a SequenceDataProxy backed by a local SQLite database.
// Range reads use substr so whole chromosomes are never loaded into
// memory by the driver's result path.
type SQLiteProxy struct {
	db *sql.DB
}

// OpenSQLiteProxy opens (creating if needed) a sequence database at path.
func OpenSQLiteProxy(path string) (*SQLiteProxy, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sequence db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sequence db schema: %w", err)
	}
	return &SQLiteProxy{db: db}, nil
}

// Close closes the underlying database.
func (p *SQLiteProxy) Close() error { return p.db.Close() }

// AddSequence stores a complete sequence under its computed refget
// accession and registers the given namespaced aliases. Returns the
// accession. Re-adding an existing sequence is a no-op apart from any
// new aliases.
func (p *SQLiteProxy) AddSequence(ctx context.Context, sequence string, aliases ...string) (string, error) {
	acc := RefgetAccession(sequence)
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sequences (accession, length, residues) VALUES (?, ?, ?)`,
		acc, len(sequence), sequence); err != nil {
		return "", fmt.Errorf("store sequence: %w", err)
	}
	for _, a := range append([]string{RefgetNamespace + ":" + acc}, aliases...) {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO aliases (alias, accession) VALUES (?, ?)`,
			a, acc); err != nil {
			return "", fmt.Errorf("store alias %q: %w", a, err)
		}
	}
	return acc, tx.Commit()
}

func (p *SQLiteProxy) resolve(ctx context.Context, id string) (string, error) {
	acc := strings.TrimPrefix(id, RefgetNamespace+":")
	var found string
	err := p.db.QueryRowContext(ctx,
		`SELECT accession FROM sequences WHERE accession = ?`, acc).Scan(&found)
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	err = p.db.QueryRowContext(ctx,
		`SELECT accession FROM aliases WHERE alias = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return "", verrors.NewNotFound("sequence", id)
	}
	if err != nil {
		return "", err
	}
	return found, nil
}

// GetSequence returns the subsequence [start, end); end < 0 means the end
// of the sequence.
func (p *SQLiteProxy) GetSequence(ctx context.Context, id string, start, end int) (string, error) {
	acc, err := p.resolve(ctx, id)
	if err != nil {
		return "", err
	}
	var length int
	if err := p.db.QueryRowContext(ctx,
		`SELECT length FROM sequences WHERE accession = ?`, acc).Scan(&length); err != nil {
		return "", err
	}
	if end < 0 {
		end = length
	}
	if start < 0 || start > end || end > length {
		return "", fmt.Errorf("invalid range [%d, %d) for %s (length %d)", start, end, id, length)
	}
	var slice string
	// substr is 1-based
	if err := p.db.QueryRowContext(ctx,
		`SELECT substr(residues, ?, ?) FROM sequences WHERE accession = ?`,
		start+1, end-start, acc).Scan(&slice); err != nil {
		return "", err
	}
	return slice, nil
}

// GetMetadata returns the sequence's length and aliases.
func (p *SQLiteProxy) GetMetadata(ctx context.Context, id string) (*Metadata, error) {
	acc, err := p.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	md := &Metadata{}
	if err := p.db.QueryRowContext(ctx,
		`SELECT length FROM sequences WHERE accession = ?`, acc).Scan(&md.Length); err != nil {
		return nil, err
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT alias FROM aliases WHERE accession = ? ORDER BY rowid`, acc)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		md.Aliases = append(md.Aliases, a)
	}
	return md, rows.Err()
}

// TranslateIdentifier returns the identified sequence's aliases in the
// given namespace ("" for all).
func (p *SQLiteProxy) TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error) {
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

var _ SequenceDataProxy = (*SQLiteProxy)(nil)
