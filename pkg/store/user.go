package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/dictionary"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/tchap/go-patricia/v2/patricia"
)

var errStoreClosed = errors.New("word store closed")

type userState struct {
	words *patricia.Trie
	next  map[string]map[string]int
}

func newUserState() *userState {
	return &userState{words: patricia.NewTrie(), next: make(map[string]map[string]int)}
}

// UserDictionary is the editable per-language dictionary of words the user
// added, plus the next-word pairs learned from what they type.
type UserDictionary struct {
	store    *Store
	language string

	mu      sync.RWMutex
	state   *userState
	prev    string
	loaded  bool
	closed  bool
	pending []func(*userState)
}

func newUserDictionary(s *Store, language string) *UserDictionary {
	return &UserDictionary{store: s, language: language, state: newUserState()}
}

// Name implements source.Loadable.
func (u *UserDictionary) Name() string { return "user:" + u.language }

// Language returns the dictionary's language tag.
func (u *UserDictionary) Language() string { return u.language }

// Load reads the stored words and pairs. Mutations made while loading are
// replayed on top of what was read.
func (u *UserDictionary) Load(ctx context.Context) error {
	fresh := newUserState()

	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return source.ErrClosed
	}
	u.pending = nil
	result, ok := u.store.w.snapshot(func(ctx context.Context, tx *sql.Tx) error {
		return readUserState(ctx, tx, u.language, fresh)
	})
	u.mu.Unlock()
	if !ok {
		return errStoreClosed
	}

	if err := waitSnapshot(ctx, result); err != nil {
		return fmt.Errorf("loading user dictionary %s: %w", u.language, err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return source.ErrClosed
	}
	for _, op := range u.pending {
		op(fresh)
	}
	u.pending = nil
	u.state = fresh
	u.loaded = true
	return nil
}

func readUserState(ctx context.Context, tx *sql.Tx, language string, st *userState) error {
	rows, err := tx.QueryContext(ctx, `SELECT word, frequency FROM user_words WHERE language = ?`, language)
	if err != nil {
		return fmt.Errorf("query user words: %w", err)
	}
	for rows.Next() {
		var word string
		var freq int
		if err := rows.Scan(&word, &freq); err != nil {
			rows.Close()
			return err
		}
		st.words.Set(patricia.Prefix(word), freq)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = tx.QueryContext(ctx, `SELECT word, next, usage FROM next_words WHERE language = ?`, language)
	if err != nil {
		return fmt.Errorf("query next words: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var word, next string
		var usage int
		if err := rows.Scan(&word, &next, &usage); err != nil {
			return err
		}
		if st.next[word] == nil {
			st.next[word] = make(map[string]int)
		}
		st.next[word][next] = usage
	}
	return rows.Err()
}

// mutate applies op to the live state, remembers it if a load is in flight
// and queues its persistence. Holds u.mu across the submit to keep order.
func (u *UserDictionary) mutate(op func(*userState), persist writeFunc) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return false
	}
	op(u.state)
	if !u.loaded {
		u.pending = append(u.pending, op)
	}
	if !u.store.w.submit(persist) {
		storeLog.Warn("word store closed, change kept in memory only", "source", u.Name())
	}
	return true
}

// IsValidWord implements source.Dictionary.
func (u *UserDictionary) IsValidWord(word string) bool {
	key := utils.FoldKey(word)
	if key == "" {
		return false
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	if !u.loaded {
		return false
	}
	return u.state.words.Get(patricia.Prefix(key)) != nil
}

// Words implements source.Dictionary.
func (u *UserDictionary) Words(in source.Input, sink source.Sink) {
	typed := in.Word()
	prefix := utils.FoldKey(typed)
	if prefix == "" {
		return
	}
	u.mu.RLock()
	if !u.loaded {
		u.mu.RUnlock()
		return
	}
	found := dictionary.SearchTrie(u.state.words, prefix)
	u.mu.RUnlock()

	capitals := utils.CapitalPositions(typed)
	for _, c := range found {
		if !sink.Add(utils.ApplyCapitalization(c.Word, capitals), c.Frequency) {
			return
		}
	}
}

// AddWord stores word with frequency, replacing a previous frequency.
func (u *UserDictionary) AddWord(word string, frequency int) bool {
	key := utils.FoldKey(word)
	if key == "" {
		return false
	}
	lang := u.language
	return u.mutate(func(st *userState) {
		st.words.Set(patricia.Prefix(key), frequency)
	}, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO user_words (language, word, frequency) VALUES (?, ?, ?)
ON CONFLICT(language, word) DO UPDATE SET frequency = excluded.frequency`, lang, key, frequency)
		return err
	})
}

// DeleteWord removes word.
func (u *UserDictionary) DeleteWord(word string) {
	key := utils.FoldKey(word)
	if key == "" {
		return
	}
	lang := u.language
	u.mutate(func(st *userState) {
		st.words.Delete(patricia.Prefix(key))
	}, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM user_words WHERE language = ? AND word = ?`, lang, key)
		return err
	})
}

// NotifyTyped records that word followed the previously typed word.
func (u *UserDictionary) NotifyTyped(word string) {
	key := utils.FoldKey(word)
	if key == "" {
		return
	}

	u.mu.Lock()
	prev := u.prev
	u.prev = key
	u.mu.Unlock()
	if prev == "" {
		return
	}

	lang := u.language
	u.mutate(func(st *userState) {
		if st.next[prev] == nil {
			st.next[prev] = make(map[string]int)
		}
		st.next[prev][key]++
	}, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO next_words (language, word, next, usage) VALUES (?, ?, ?, 1)
ON CONFLICT(language, word, next) DO UPDATE SET usage = usage + 1`, lang, prev, key)
		return err
	})
}

// NextWords returns the words most often typed after current with at least
// minUsage occurrences, most used first.
func (u *UserDictionary) NextWords(current string, maxResults, minUsage int) []string {
	key := utils.FoldKey(current)
	if key == "" || maxResults <= 0 {
		return nil
	}
	u.mu.RLock()
	if !u.loaded {
		u.mu.RUnlock()
		return nil
	}
	candidates := make([]source.Candidate, 0, len(u.state.next[key]))
	for next, usage := range u.state.next[key] {
		if usage >= minUsage {
			candidates = append(candidates, source.Candidate{Word: next, Frequency: usage})
		}
	}
	u.mu.RUnlock()

	return rankCandidates(candidates, maxResults)
}

// ResetSentence forgets the previously typed word.
func (u *UserDictionary) ResetSentence() {
	u.mu.Lock()
	u.prev = ""
	u.mu.Unlock()
}

// Close drops the in-memory words. Writes already queued still reach the store.
func (u *UserDictionary) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	u.loaded = false
	u.pending = nil
	u.state = newUserState()
	return nil
}

// rankCandidates sorts by frequency (then word) and keeps at most limit words.
func rankCandidates(candidates []source.Candidate, limit int) []string {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Frequency != candidates[j].Frequency {
			return candidates[i].Frequency > candidates[j].Frequency
		}
		return candidates[i].Word < candidates[j].Word
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	words := make([]string, len(candidates))
	for i, c := range candidates {
		words[i] = c.Word
	}
	return words
}
