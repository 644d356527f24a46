package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/seqvarlab/varnorm/core/sqlite"
)

func TestDriverInfo(t *testing.T) {
	info := sqlite.GetInfo()
	if info.DriverName == "" {
		t.Error("DriverName is empty")
	}
	if info.DriverType != "purego" && info.DriverType != "cgo" {
		t.Errorf("DriverType = %q", info.DriverType)
	}
	if info.IsCGO != sqlite.IsCGO() {
		t.Error("IsCGO mismatch")
	}
}

func TestOpenAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?)`, "hello", "world"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var v string
	if err := db.QueryRow(`SELECT v FROM kv WHERE k = ?`, "hello").Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "world" {
		t.Errorf("v = %q", v)
	}
}

func TestSubstrRangeRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.db")
	db := sqlite.MustOpen(path)
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE seq (id TEXT PRIMARY KEY, residues TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO seq (id, residues) VALUES (?, ?)`, "s1", "ACGTACGT"); err != nil {
		t.Fatal(err)
	}

	var slice string
	// substr is 1-based
	if err := db.QueryRow(`SELECT substr(residues, ?, ?) FROM seq WHERE id = ?`, 3, 4, "s1").Scan(&slice); err != nil {
		t.Fatal(err)
	}
	if slice != "GTAC" {
		t.Errorf("slice = %q, want GTAC", slice)
	}
}
