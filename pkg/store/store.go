// Package store keeps the learnable word sources in SQLite: per-language user
// dictionaries with their next-word pairs, the auto-learned dictionary and
// abbreviation expansions.
//
// Every source keeps its data in memory for keystroke queries. Mutations
// update memory first and are persisted in order by a single background
// writer, so a query never waits on the database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/wordmux/internal/logger"
	"github.com/bastiangx/wordmux/internal/utils"

	_ "modernc.org/sqlite"
)

var storeLog = logger.New("store")

const schema = `
CREATE TABLE IF NOT EXISTS user_words (
  language TEXT NOT NULL,
  word TEXT NOT NULL,
  frequency INTEGER NOT NULL,
  PRIMARY KEY (language, word)
);
CREATE TABLE IF NOT EXISTS next_words (
  language TEXT NOT NULL,
  word TEXT NOT NULL,
  next TEXT NOT NULL,
  usage INTEGER NOT NULL,
  PRIMARY KEY (language, word, next)
);
CREATE TABLE IF NOT EXISTS auto_words (
  language TEXT NOT NULL,
  word TEXT NOT NULL,
  frequency INTEGER NOT NULL,
  PRIMARY KEY (language, word)
);
CREATE TABLE IF NOT EXISTS abbreviations (
  language TEXT NOT NULL,
  abbreviation TEXT NOT NULL,
  expansion TEXT NOT NULL,
  PRIMARY KEY (language, abbreviation, expansion)
);
`

// Store owns the database and its writer. It outlives the sources it creates.
type Store struct {
	path string
	db   *sql.DB
	w    *writer
}

// Open opens (creating if needed) the SQLite file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection serializes the writer with loads
	db.SetMaxOpenConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{path: path, db: db}
	s.w = newWriter(db, 256)
	storeLog.Debug("opened word store", "path", path)
	return s, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Flush waits until every mutation queued so far is committed.
func (s *Store) Flush(ctx context.Context) error {
	return s.w.flush(ctx)
}

// Err returns the first asynchronous write error, if any.
func (s *Store) Err() error {
	return s.w.err()
}

// Close drains pending writes and closes the database.
func (s *Store) Close() error {
	s.w.close()
	return s.db.Close()
}

// UserDictionary creates the editable user dictionary of language.
func (s *Store) UserDictionary(language string) *UserDictionary {
	return newUserDictionary(s, language)
}

// AutoDictionary creates the auto-learned dictionary attributed to language.
// A word is promoted once its accumulated frequency reaches threshold.
func (s *Store) AutoDictionary(language string, threshold int) *AutoDictionary {
	return newAutoDictionary(s, language, threshold)
}

// Abbreviations creates the abbreviation source of language.
func (s *Store) Abbreviations(language string) *Abbreviations {
	return newAbbreviations(s, language)
}

// AddAbbreviation stores an expansion for abbreviation. Sources already
// loaded pick it up on their next load.
func (s *Store) AddAbbreviation(ctx context.Context, language, abbreviation, expansion string) error {
	if abbreviation == "" || expansion == "" {
		return fmt.Errorf("abbreviation and expansion must be non-empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO abbreviations (language, abbreviation, expansion) VALUES (?, ?, ?)`,
		language, utils.FoldKey(abbreviation), expansion)
	if err != nil {
		return fmt.Errorf("insert abbreviation: %w", err)
	}
	return nil
}

// RemoveAbbreviation deletes every expansion of abbreviation.
func (s *Store) RemoveAbbreviation(ctx context.Context, language, abbreviation string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM abbreviations WHERE language = ? AND abbreviation = ?`,
		language, utils.FoldKey(abbreviation))
	if err != nil {
		return fmt.Errorf("delete abbreviation: %w", err)
	}
	return nil
}
