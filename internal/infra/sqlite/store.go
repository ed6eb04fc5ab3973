// Package sqlite is the persistence layer. A single Store wraps the
// database handle; all reads and writes go through it.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports that the targeted row does not exist.
var ErrNotFound = errors.New("sqlite: not found")

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	industry   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	date        TEXT NOT NULL,
	description TEXT NOT NULL,
	amount      REAL NOT NULL,
	category    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_company
	ON transactions(company_id);
`

// Store owns the SQLite handle and serves all persistence operations.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Foreign keys are enforced per connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("Open: opening database: %w", err)
	}

	// SQLite tolerates one writer at a time. Funneling everything through
	// one connection avoids SQLITE_BUSY under concurrent uploads.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
