// Package duckdb stores extracted gene features in DuckDB, so exported
// feature sets can be queried with SQL and re-exports skip unchanged
// library files.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding extracted features.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file, "" for in-memory stores.
func (s *Store) Path() string { return s.path }

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS gene_features (
		library VARCHAR,
		taxon_id BIGINT,
		gene VARCHAR,
		gene_type VARCHAR,
		chains VARCHAR,
		feature VARCHAR,
		sequence VARCHAR,
		length INTEGER,
		PRIMARY KEY (library, taxon_id, gene, feature)
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS library_sources (
		path VARCHAR PRIMARY KEY,
		size BIGINT,
		mod_time BIGINT
	)`)
	return err
}
