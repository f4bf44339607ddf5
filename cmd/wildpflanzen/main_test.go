package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wildpflanzen/wildpflanzen/internal/store"
)

const testSchema = `
DROP TABLE IF EXISTS fruits;
DROP TABLE IF EXISTS nuts;
CREATE TABLE fruits (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    reasons TEXT,
    start INTEGER NOT NULL,
    "end" INTEGER NOT NULL,
    location TEXT
);
CREATE TABLE nuts (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    start INTEGER NOT NULL,
    "end" INTEGER NOT NULL,
    location TEXT
);
`

const testInserts = `
INSERT INTO fruits (name, reasons, start, "end", location) VALUES ('Brombeere', 'Vitamin C', 7, 9, 'Waldränder');
INSERT INTO fruits (name, reasons, start, "end", location) VALUES ('Schlehe', 'Nach dem ersten Frost', 10, 12, 'Hecken');
INSERT INTO nuts (name, start, "end", location) VALUES ('Haselnuss', 8, 10, 'Hecken');
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&cli{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupDir(t *testing.T, schema, inserts string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, store.SchemaFile), []byte(schema), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, store.InsertsFile), []byte(inserts), 0o644); err != nil {
		t.Fatal(err)
	}
	// keep a stray .env in the package directory from leaking in
	t.Chdir(dir)
	return dir
}

func TestDBCreate(t *testing.T) {
	dir := setupDir(t, testSchema, testInserts)

	out, err := run(t, "db", "create", "--dir", dir)
	if err != nil {
		t.Fatalf("db create: %v", err)
	}

	want := "Created " + filepath.Join(dir, store.DefaultDBFile) + "\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	path := strings.TrimSpace(strings.TrimPrefix(out, "Created "))
	if !filepath.IsAbs(path) {
		t.Errorf("path %q is not absolute", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestDBCreateDefaultsToWorkingDirectory(t *testing.T) {
	dir := setupDir(t, testSchema, testInserts)
	t.Setenv("WILDPFLANZEN_DIR", "")

	out, err := run(t, "db", "create")
	if err != nil {
		t.Fatalf("db create: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join(filepath.Base(dir), store.DefaultDBFile)) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDBCreateFailures(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		inserts string
		wantErr error
	}{
		{
			name:    "unknown table",
			schema:  testSchema,
			inserts: `INSERT INTO mushrooms (name) VALUES ('Steinpilz');`,
			wantErr: store.ErrExecution,
		},
		{
			name:    "syntax error",
			schema:  `CREATE TABEL fruits (name TEXT);`,
			inserts: testInserts,
			wantErr: store.ErrExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupDir(t, tt.schema, tt.inserts)

			out, err := run(t, "db", "create", "--dir", dir)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			if strings.Contains(out, "Created") {
				t.Errorf("success line printed on failure: %q", out)
			}
		})
	}
}

func TestDBCreateMissingSchema(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, store.InsertsFile), []byte(testInserts), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "db", "create", "--dir", dir)
	if !errors.Is(err, store.ErrFileAccess) {
		t.Fatalf("got error %v, want ErrFileAccess", err)
	}
	if out != "" {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, store.DefaultDBFile)); !os.IsNotExist(err) {
		t.Errorf("database file exists after failed run: %v", err)
	}
}

func TestDBVerify(t *testing.T) {
	dir := setupDir(t, testSchema, testInserts)

	out, err := run(t, "db", "verify", "--dir", dir)
	if err == nil {
		t.Fatal("verify before create: expected error")
	}
	if !strings.Contains(out, "missing") {
		t.Errorf("missing state not reported: %q", out)
	}

	if _, err := run(t, "db", "create", "--dir", dir); err != nil {
		t.Fatalf("db create: %v", err)
	}
	out, err = run(t, "db", "verify", "--dir", dir)
	if err != nil {
		t.Fatalf("db verify: %v", err)
	}
	for _, want := range []string{"state:    ready", "fruits", "2 rows", "nuts", "1 rows"} {
		if !strings.Contains(out, want) {
			t.Errorf("verify output missing %q:\n%s", want, out)
		}
	}
}

func TestSeason(t *testing.T) {
	dir := setupDir(t, testSchema, testInserts)
	if _, err := run(t, "db", "create", "--dir", dir); err != nil {
		t.Fatalf("db create: %v", err)
	}

	tests := []struct {
		name     string
		args     []string
		want     []string
		dontWant []string
		wantErr  bool
	}{
		{
			name:     "august all",
			args:     []string{"--month", "8"},
			want:     []string{"Reif im August", "Brombeere", "Juli-September", "Haselnuss"},
			dontWant: []string{"Schlehe"},
		},
		{
			name:     "october nuts",
			args:     []string{"--month", "10", "--category", "nuts"},
			want:     []string{"Haselnuss", "August-Oktober"},
			dontWant: []string{"Schlehe"},
		},
		{
			name: "nothing ripe",
			args: []string{"--month", "3"},
			want: []string{"Keine Funde im März."},
		},
		{
			name:    "bad month",
			args:    []string{"--month", "13"},
			wantErr: true,
		},
		{
			name:    "explicit zero month",
			args:    []string{"--month", "0"},
			wantErr: true,
		},
		{
			name:    "bad category",
			args:    []string{"--category", "pilze"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"season", "--dir", dir}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("got error %v, wantErr %v", err, tt.wantErr)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.dontWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestVersion(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != version.String() {
		t.Errorf("got %q, want %q", out, version.String())
	}
}
