// Package loader builds the wildpflanzen database from schema.sql and inserts.sql.
//
// Both scripts are read before the database is touched. They are executed,
// schema first, against a temporary file in the base directory which replaces
// wildpflanzen.db only after every statement succeeded and the connection was
// closed. A failed run removes the temporary file and leaves any existing
// database as it was.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wildpflanzen/wildpflanzen/internal/logger"
	"github.com/wildpflanzen/wildpflanzen/internal/store"
	"github.com/wildpflanzen/wildpflanzen/internal/store/sqlite"
)

// Initializer runs the two scripts of a base directory into a fresh database file.
type Initializer struct {
	log  logger.Logger
	open func(dbPath string) store.Store
}

// New returns an Initializer backed by modernc.org/sqlite.
// A nil logger selects logger.Default.
func New(log logger.Logger) *Initializer {
	if log == nil {
		log = logger.Default
	}
	return &Initializer{
		log: log,
		open: func(dbPath string) store.Store {
			return sqlite.New(dbPath)
		},
	}
}

// Run creates or replaces <baseDir>/wildpflanzen.db and returns its absolute path.
// Errors match store.ErrFileAccess or store.ErrExecution where they apply.
func (in *Initializer) Run(ctx context.Context, baseDir string) (string, error) {
	dir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w", err)
	}

	schema, err := store.ReadScript(dir, store.SchemaFile)
	if err != nil {
		return "", err
	}
	inserts, err := store.ReadScript(dir, store.InsertsFile)
	if err != nil {
		return "", err
	}

	dbPath := store.GetDBPath(dir)
	exists, err := store.CheckExists(dir)
	if err != nil {
		return "", err
	}
	if exists {
		in.log.Debug("replacing existing database %s", dbPath)
	}

	tmp, err := os.CreateTemp(dir, "."+store.DefaultDBFile+"-*")
	if err != nil {
		return "", fmt.Errorf("create build file: %w", err)
	}
	buildPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		in.removeBuild(buildPath)
		return "", fmt.Errorf("create build file: %w", err)
	}

	if err := in.build(ctx, buildPath, schema, inserts); err != nil {
		in.removeBuild(buildPath)
		return "", err
	}

	if err := os.Chmod(buildPath, 0o644); err != nil {
		in.removeBuild(buildPath)
		return "", fmt.Errorf("set database permissions: %w", err)
	}
	if err := os.Rename(buildPath, dbPath); err != nil {
		in.removeBuild(buildPath)
		return "", fmt.Errorf("install database: %w", err)
	}

	in.log.Info("database ready at %s", dbPath)
	return dbPath, nil
}

// build executes the scripts in order on one connection, closing it on every path.
func (in *Initializer) build(ctx context.Context, dbPath string, scripts ...store.Script) (err error) {
	st := in.open(dbPath)
	if err := st.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
	}()

	for _, script := range scripts {
		if script.Empty() {
			in.log.Debug("%s is empty, skipping", script.Path)
			continue
		}
		in.log.Debug("executing %s", script.Path)
		if err := st.ExecScript(ctx, script); err != nil {
			return err
		}
	}
	// a script may end inside BEGIN without COMMIT; Close would roll it back
	return st.Commit(ctx)
}

// removeBuild deletes a temporary database together with any journal SQLite left.
func (in *Initializer) removeBuild(path string) {
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			in.log.Warn("failed to remove %s: %v", p, err)
		}
	}
}
