package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for one loaded object tree.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Clear removes every loaded row, leaving an empty schema.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear: begin: %w", err)
	}
	defer tx.Rollback()
	if err := clearTx(ctx, tx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return tx.Commit()
}

// clearTx deletes children before parents so foreign keys hold throughout.
func clearTx(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"proc_params", "procs", "vars", "types", "files", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS types (
  id              INTEGER PRIMARY KEY,
  path_abs        TEXT NOT NULL UNIQUE,
  path_rel        TEXT NOT NULL,
  parent_id       INTEGER REFERENCES types(id),
  file_id         INTEGER,
  line            INTEGER,
  col             INTEGER
);

CREATE TABLE IF NOT EXISTS vars (
  id              INTEGER PRIMARY KEY,
  type_id         INTEGER NOT NULL REFERENCES types(id),
  name            TEXT NOT NULL,
  declared        BOOLEAN NOT NULL DEFAULT FALSE,
  decl_type       TEXT,
  value_kind      TEXT NOT NULL,
  value_text      TEXT,
  file_id         INTEGER,
  line            INTEGER,
  col             INTEGER,
  UNIQUE(type_id, name)
);

CREATE TABLE IF NOT EXISTS procs (
  id              INTEGER PRIMARY KEY,
  type_id         INTEGER NOT NULL REFERENCES types(id),
  name            TEXT NOT NULL,
  declared        BOOLEAN NOT NULL DEFAULT FALSE,
  builtin         BOOLEAN NOT NULL DEFAULT FALSE,
  file_id         INTEGER,
  line            INTEGER,
  col             INTEGER,
  body            TEXT
);

CREATE TABLE IF NOT EXISTS proc_params (
  proc_id         INTEGER NOT NULL REFERENCES procs(id),
  idx             INTEGER NOT NULL,
  name            TEXT NOT NULL,
  type_path       TEXT,
  PRIMARY KEY (proc_id, idx)
);

CREATE TABLE IF NOT EXISTS meta (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_types_parent ON types(parent_id);
CREATE INDEX IF NOT EXISTS idx_vars_type ON vars(type_id);
CREATE INDEX IF NOT EXISTS idx_procs_type_name ON procs(type_id, name);
`
