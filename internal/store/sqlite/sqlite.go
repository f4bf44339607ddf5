package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/wildpflanzen/wildpflanzen/internal/store"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using modernc.org/sqlite.
type SQLiteStore struct {
	dbPath   string
	db       *sql.DB
	readOnly bool
}

// New creates a new SQLiteStore. The file is created on Open if absent.
func New(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath}
}

// NewReadOnly creates a SQLiteStore that refuses writes and never creates the file.
func NewReadOnly(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath, readOnly: true}
}

// dsn escapes the path into a file: URI; the driver would otherwise cut a
// plain name at the first '?'.
func (s *SQLiteStore) dsn() string {
	u := &url.URL{Scheme: "file", Path: s.dbPath}
	if s.readOnly {
		u.RawQuery = "mode=ro"
	}
	return u.String()
}

// Open opens the SQLite database with safe defaults.
func (s *SQLiteStore) Open(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// DB returns the underlying handle, nil before Open.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// ExecScript hands the whole script to the driver, which runs the statements
// one after another and stops at the first failure.
// No transaction is opened here; the script may carry its own.
func (s *SQLiteStore) ExecScript(ctx context.Context, script store.Script) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if script.Empty() {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, script.SQL); err != nil {
		return fmt.Errorf("%w: %s: %w", store.ErrExecution, script.Name, err)
	}
	return nil
}

// Commit ends a transaction a script opened and left running.
// Without one it does nothing.
func (s *SQLiteStore) Commit(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.ExecContext(ctx, "COMMIT"); err != nil {
		if strings.Contains(err.Error(), "no transaction is active") {
			return nil
		}
		return fmt.Errorf("%w: commit: %w", store.ErrExecution, err)
	}
	return nil
}

// CheckState returns the current state of the datastore.
func (s *SQLiteStore) CheckState(ctx context.Context) (store.StoreState, error) {
	if s.db == nil {
		return store.StateMissing, fmt.Errorf("database not opened")
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`).Scan(&count)
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to count tables: %w", err)
	}

	if count == 0 {
		return store.StateUninitialized, nil
	}
	return store.StateReady, nil
}

// Tables returns the user tables ordered by name with their row counts.
func (s *SQLiteStore) Tables(ctx context.Context) ([]store.TableInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	names, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]store.TableInfo, 0, len(names))
	for _, name := range names {
		var rows int64
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(name)).Scan(&rows); err != nil {
			return nil, fmt.Errorf("failed to count rows of %s: %w", name, err)
		}
		tables = append(tables, store.TableInfo{Name: name, Rows: rows})
	}
	return tables, nil
}

// tableNames drains the listing before any count query; the pool holds one connection.
func (s *SQLiteStore) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
