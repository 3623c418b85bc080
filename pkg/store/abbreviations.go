package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/source"
)

// expansionFrequency is the score abbreviation expansions are emitted with.
const expansionFrequency = 255

// Abbreviations expands a typed abbreviation ("brb") into its stored expansions.
type Abbreviations struct {
	store    *Store
	language string

	mu         sync.RWMutex
	expansions map[string][]string
	closed     bool
}

func newAbbreviations(s *Store, language string) *Abbreviations {
	return &Abbreviations{store: s, language: language}
}

// Name implements source.Loadable.
func (a *Abbreviations) Name() string { return "abbreviations:" + a.language }

// Load reads the language's abbreviations.
func (a *Abbreviations) Load(ctx context.Context) error {
	fresh := make(map[string][]string)

	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return source.ErrClosed
	}

	result, ok := a.store.w.snapshot(func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT abbreviation, expansion FROM abbreviations WHERE language = ? ORDER BY abbreviation, expansion`, a.language)
		if err != nil {
			return fmt.Errorf("query abbreviations: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var abbr, expansion string
			if err := rows.Scan(&abbr, &expansion); err != nil {
				return err
			}
			fresh[abbr] = append(fresh[abbr], expansion)
		}
		return rows.Err()
	})
	if !ok {
		return errStoreClosed
	}
	if err := waitSnapshot(ctx, result); err != nil {
		return fmt.Errorf("loading abbreviations %s: %w", a.language, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return source.ErrClosed
	}
	a.expansions = fresh
	return nil
}

// IsValidWord reports whether word is a known abbreviation.
func (a *Abbreviations) IsValidWord(word string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.expansions[utils.FoldKey(word)]
	return ok
}

// Words emits the expansions of the typed abbreviation.
func (a *Abbreviations) Words(in source.Input, sink source.Sink) {
	key := utils.FoldKey(in.Word())
	if key == "" {
		return
	}
	a.mu.RLock()
	expansions := a.expansions[key]
	a.mu.RUnlock()

	for _, e := range expansions {
		if !sink.Add(e, expansionFrequency) {
			return
		}
	}
}

// Close drops the loaded abbreviations.
func (a *Abbreviations) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.expansions = nil
	return nil
}
