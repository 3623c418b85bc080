package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/dictionary"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/tchap/go-patricia/v2/patricia"
)

// AutoDictionary accumulates how often unknown words are typed. A word is
// learned once its accumulated frequency reaches the insertion threshold;
// only learned words validate or show up as candidates.
type AutoDictionary struct {
	store     *Store
	language  string
	threshold int

	mu      sync.RWMutex
	counts  *patricia.Trie
	loaded  bool
	closed  bool
	pending []func(*patricia.Trie)
}

func newAutoDictionary(s *Store, language string, threshold int) *AutoDictionary {
	if threshold < 1 {
		threshold = 1
	}
	return &AutoDictionary{store: s, language: language, threshold: threshold, counts: patricia.NewTrie()}
}

// Name implements source.Loadable.
func (a *AutoDictionary) Name() string { return "auto:" + a.language }

// Language returns the language new words are attributed to.
func (a *AutoDictionary) Language() string { return a.language }

// Threshold returns the insertion threshold.
func (a *AutoDictionary) Threshold() int { return a.threshold }

// Load reads the accumulated counts.
func (a *AutoDictionary) Load(ctx context.Context) error {
	fresh := patricia.NewTrie()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return source.ErrClosed
	}
	a.pending = nil
	result, ok := a.store.w.snapshot(func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT word, frequency FROM auto_words WHERE language = ?`, a.language)
		if err != nil {
			return fmt.Errorf("query auto words: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var word string
			var freq int
			if err := rows.Scan(&word, &freq); err != nil {
				return err
			}
			fresh.Set(patricia.Prefix(word), freq)
		}
		return rows.Err()
	})
	a.mu.Unlock()
	if !ok {
		return errStoreClosed
	}

	if err := waitSnapshot(ctx, result); err != nil {
		return fmt.Errorf("loading auto dictionary %s: %w", a.language, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return source.ErrClosed
	}
	for _, op := range a.pending {
		op(fresh)
	}
	a.pending = nil
	a.counts = fresh
	a.loaded = true
	return nil
}

func countOf(t *patricia.Trie, key string) int {
	if item := t.Get(patricia.Prefix(key)); item != nil {
		return item.(int)
	}
	return 0
}

// AddWord adds frequencyDelta to word's count and reports whether this call
// made the word reach the threshold.
func (a *AutoDictionary) AddWord(word string, frequencyDelta int) bool {
	key := utils.FoldKey(word)
	if key == "" || frequencyDelta <= 0 {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	bump := func(t *patricia.Trie) {
		t.Set(patricia.Prefix(key), countOf(t, key)+frequencyDelta)
	}
	before := countOf(a.counts, key)
	bump(a.counts)
	if !a.loaded {
		a.pending = append(a.pending, bump)
	}

	lang := a.language
	a.store.w.submit(func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO auto_words (language, word, frequency) VALUES (?, ?, ?)
ON CONFLICT(language, word) DO UPDATE SET frequency = frequency + excluded.frequency`, lang, key, frequencyDelta)
		return err
	})

	return before < a.threshold && before+frequencyDelta >= a.threshold
}

// DeleteWord forgets word and its count.
func (a *AutoDictionary) DeleteWord(word string) {
	key := utils.FoldKey(word)
	if key == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	drop := func(t *patricia.Trie) { t.Delete(patricia.Prefix(key)) }
	drop(a.counts)
	if !a.loaded {
		a.pending = append(a.pending, drop)
	}
	lang := a.language
	a.store.w.submit(func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM auto_words WHERE language = ? AND word = ?`, lang, key)
		return err
	})
}

// Count returns the accumulated frequency of word.
func (a *AutoDictionary) Count(word string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return countOf(a.counts, utils.FoldKey(word))
}

// IsValidWord reports whether word has been learned.
func (a *AutoDictionary) IsValidWord(word string) bool {
	key := utils.FoldKey(word)
	if key == "" {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded && countOf(a.counts, key) >= a.threshold
}

// Words emits learned words under the typed prefix.
func (a *AutoDictionary) Words(in source.Input, sink source.Sink) {
	typed := in.Word()
	prefix := utils.FoldKey(typed)
	if prefix == "" {
		return
	}
	a.mu.RLock()
	if !a.loaded {
		a.mu.RUnlock()
		return
	}
	found := dictionary.SearchTrie(a.counts, prefix)
	a.mu.RUnlock()

	capitals := utils.CapitalPositions(typed)
	for _, c := range found {
		if c.Frequency < a.threshold {
			continue
		}
		if !sink.Add(utils.ApplyCapitalization(c.Word, capitals), c.Frequency) {
			return
		}
	}
}

// Close drops the in-memory counts.
func (a *AutoDictionary) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.loaded = false
	a.pending = nil
	a.counts = patricia.NewTrie()
	return nil
}
