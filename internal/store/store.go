// Package store provides the DuckDB access layer for the screening
// warehouse: schema management, dataset import, and the read paths behind
// search, lookup, suggestions, and statistics.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// Store manages a DuckDB connection holding the screening dataset.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
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

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// SetLogger sets the logger used for import progress.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the connection is usable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// ensureSchema creates tables if they don't exist. The flat measurements
// table keeps the source dataset's text typing; the genes and experiments
// tables are normalized projections rebuilt after each import.
func (s *Store) ensureSchema() error {
	schema := `
		CREATE SEQUENCE IF NOT EXISTS measurements_rowid START 1;

		CREATE TABLE IF NOT EXISTS measurements (
			rowid BIGINT PRIMARY KEY DEFAULT nextval('measurements_rowid'),
			chr VARCHAR,
			start VARCHAR,
			end_ VARCHAR,
			strand VARCHAR,
			sequence VARCHAR,
			symbol VARCHAR,
			ensg VARCHAR,
			log2fc VARCHAR,
			reads_initial VARCHAR,
			reads_final VARCHAR,
			cellline VARCHAR,
			condition VARCHAR,
			cas VARCHAR,
			screentype VARCHAR,
			pubmed VARCHAR
		);

		CREATE TABLE IF NOT EXISTS genes (
			symbol VARCHAR PRIMARY KEY,
			ensg VARCHAR,
			chr VARCHAR
		);

		CREATE TABLE IF NOT EXISTS experiments (
			cellline VARCHAR,
			condition VARCHAR,
			cas VARCHAR,
			screentype VARCHAR,
			pubmed VARCHAR,
			PRIMARY KEY (cellline, condition)
		);

		CREATE INDEX IF NOT EXISTS idx_measurements_symbol ON measurements(symbol);
		CREATE INDEX IF NOT EXISTS idx_measurements_chr ON measurements(chr);
	`
	_, err := s.db.Exec(schema)
	return err
}
