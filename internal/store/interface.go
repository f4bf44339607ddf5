package store

import (
	"context"
	"database/sql"
	"strings"
)

// StoreState represents the initialization state of the datastore.
type StoreState int

const (
	StateMissing       StoreState = iota // File doesn't exist
	StateUninitialized                   // File exists but holds no tables
	StateReady                           // At least one user table
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Script is one SQL text file, loaded once and executed as a batch.
type Script struct {
	Name string
	Path string
	SQL  string
}

// Empty reports whether the script has nothing to execute.
func (s Script) Empty() bool {
	return strings.TrimSpace(s.SQL) == ""
}

// TableInfo is a user table and its row count.
type TableInfo struct {
	Name string
	Rows int64
}

// Store defines the wildpflanzen datastore contract.
// A Store holds a single connection and is not meant for concurrent use.
type Store interface {
	// Open opens the datastore connection
	Open(ctx context.Context) error

	// Close closes the datastore connection
	Close() error

	// ExecScript runs every statement of the script in file order
	ExecScript(ctx context.Context, script Script) error

	// Commit ends any transaction left open by a script
	Commit(ctx context.Context) error

	// CheckState returns the current state of the datastore
	CheckState(ctx context.Context) (StoreState, error)

	// Tables lists user tables with their row counts
	Tables(ctx context.Context) ([]TableInfo, error)

	// DB exposes the open handle for read queries
	DB() *sql.DB
}
