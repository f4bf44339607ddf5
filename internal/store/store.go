package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

const (
	DefaultDBFile = "wildpflanzen.db"
	SchemaFile    = "schema.sql"
	InsertsFile   = "inserts.sql"
)

var (
	// ErrFileAccess reports a script that is missing, unreadable or not UTF-8 text.
	ErrFileAccess = errors.New("file access error")
	// ErrExecution reports a statement the database rejected.
	ErrExecution = errors.New("database execution error")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CheckExists verifies if the datastore exists at the given path.
// Returns true if the store exists, false otherwise.
func CheckExists(storePath string) (bool, error) {
	dbPath := filepath.Join(storePath, DefaultDBFile)
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check store existence: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("datastore path is a directory, expected file: %s", dbPath)
	}
	return true, nil
}

// GetStorePath returns the default base directory holding the scripts and the database.
func GetStorePath() string {
	return "."
}

// GetDBPath returns the full path to the database file.
func GetDBPath(storePath string) string {
	return filepath.Join(storePath, DefaultDBFile)
}

// ReadScript loads one SQL script from the base directory.
// The contents are returned verbatim apart from a leading byte order mark.
func ReadScript(storePath, name string) (Script, error) {
	path := filepath.Join(storePath, name)
	info, err := os.Stat(path)
	if err != nil {
		return Script{}, fmt.Errorf("%w: %s: %w", ErrFileAccess, name, err)
	}
	if info.IsDir() {
		return Script{}, fmt.Errorf("%w: %s is a directory", ErrFileAccess, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("%w: %s: %w", ErrFileAccess, name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return Script{}, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrFileAccess, path)
	}

	return Script{Name: name, Path: path, SQL: string(data)}, nil
}
