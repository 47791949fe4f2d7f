package uistate

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps section states in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS section_states (
		scope TEXT NOT NULL,
		section TEXT NOT NULL,
		state TEXT NOT NULL CHECK (state IN ('expanded', 'collapsed')),
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (scope, section)
	);
	`)
	return err
}

func (s *SQLiteStore) Get(scope, section string) (SectionState, bool, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT state FROM section_states WHERE scope = ? AND section = ?`,
		scope, section,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read section state: %w", err)
	}
	st, err := ParseSectionState(raw)
	if err != nil {
		return "", false, err
	}
	return st, true, nil
}

func (s *SQLiteStore) Set(scope, section string, state SectionState) error {
	if _, err := ParseSectionState(string(state)); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO section_states (scope, section, state, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (scope, section) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`, scope, section, string(state))
	if err != nil {
		return fmt.Errorf("failed to write section state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) All(scope string) (map[string]SectionState, error) {
	rows, err := s.db.Query(`SELECT section, state FROM section_states WHERE scope = ?`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list section states: %w", err)
	}
	defer rows.Close()

	out := make(map[string]SectionState)
	for rows.Next() {
		var section, raw string
		if err := rows.Scan(&section, &raw); err != nil {
			return nil, err
		}
		st, err := ParseSectionState(raw)
		if err != nil {
			return nil, err
		}
		out[section] = st
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
