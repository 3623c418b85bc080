package contacts

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/tchap/go-patricia/v2/patricia"
)

const (
	// baseFrequency is the score of a name part seen in a single contact.
	baseFrequency = 200
	maxFrequency  = 255
)

type namePart struct {
	word      string
	frequency int
}

type index struct {
	names *patricia.Trie
	next  map[string]map[string]int
}

// Dictionary is the contacts word source. It is a source.Predictor: the same
// instance answers word queries and next-word queries, and both die with it.
type Dictionary struct {
	provider Provider

	mu     sync.RWMutex
	idx    *index
	loaded bool
	closed bool
}

// NewDictionary creates an unloaded contacts dictionary over provider.
func NewDictionary(provider Provider) *Dictionary {
	return &Dictionary{provider: provider}
}

// Name implements source.Loadable.
func (d *Dictionary) Name() string { return "contacts" }

// Load reads the address book and indexes every name part.
func (d *Dictionary) Load(ctx context.Context) error {
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return source.ErrClosed
	}

	contacts, err := d.provider.Contacts(ctx)
	if err != nil {
		return fmt.Errorf("reading contacts: %w", err)
	}
	idx := buildIndex(contacts)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return source.ErrClosed
	}
	d.idx = idx
	d.loaded = true
	return nil
}

func buildIndex(contacts []Contact) *index {
	idx := &index{names: patricia.NewTrie(), next: make(map[string]map[string]int)}
	add := func(part string) string {
		key := utils.FoldKey(part)
		if key == "" {
			return ""
		}
		if item := idx.names.Get(patricia.Prefix(key)); item != nil {
			p := item.(*namePart)
			p.frequency = min(p.frequency+1, maxFrequency)
		} else {
			idx.names.Set(patricia.Prefix(key), &namePart{word: part, frequency: baseFrequency})
		}
		return key
	}

	for _, c := range contacts {
		prev := ""
		for _, part := range nameParts(c.Name) {
			key := add(part)
			if key == "" {
				continue
			}
			if prev != "" {
				if idx.next[prev] == nil {
					idx.next[prev] = make(map[string]int)
				}
				idx.next[prev][part]++
			}
			prev = key
		}
		for _, part := range nameParts(c.Nickname) {
			add(part)
		}
	}
	return idx
}

// IsValidWord reports whether word is part of a contact's name.
func (d *Dictionary) IsValidWord(word string) bool {
	key := utils.FoldKey(word)
	if key == "" {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.loaded {
		return false
	}
	return d.idx.names.Get(patricia.Prefix(key)) != nil
}

// Words emits name parts starting with the typed prefix, spelled as stored.
func (d *Dictionary) Words(in source.Input, sink source.Sink) {
	prefix := utils.FoldKey(in.Word())
	if prefix == "" {
		return
	}

	d.mu.RLock()
	if !d.loaded {
		d.mu.RUnlock()
		return
	}
	var found []namePart
	_ = d.idx.names.VisitSubtree(patricia.Prefix(prefix), func(_ patricia.Prefix, item patricia.Item) error {
		found = append(found, *item.(*namePart))
		return nil
	})
	d.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		if found[i].frequency != found[j].frequency {
			return found[i].frequency > found[j].frequency
		}
		return found[i].word < found[j].word
	})
	for _, p := range found {
		if !sink.Add(p.word, p.frequency) {
			return
		}
	}
}

// NextWords returns the name parts that follow current in some contact's
// name, most common first. minUsage does not apply: every pair comes from
// the address book rather than from typing.
func (d *Dictionary) NextWords(current string, maxResults, _ int) []string {
	key := utils.FoldKey(current)
	if key == "" || maxResults <= 0 {
		return nil
	}

	d.mu.RLock()
	if !d.loaded {
		d.mu.RUnlock()
		return nil
	}
	candidates := make([]source.Candidate, 0, len(d.idx.next[key]))
	for next, n := range d.idx.next[key] {
		candidates = append(candidates, source.Candidate{Word: next, Frequency: n})
	}
	d.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Frequency != candidates[j].Frequency {
			return candidates[i].Frequency > candidates[j].Frequency
		}
		return candidates[i].Word < candidates[j].Word
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	words := make([]string, len(candidates))
	for i, c := range candidates {
		words[i] = c.Word
	}
	return words
}

// NotifyTyped is a no-op; the contacts source does not learn from typing.
func (d *Dictionary) NotifyTyped(string) {}

// ResetSentence is a no-op; predictions depend on the current word only.
func (d *Dictionary) ResetSentence() {}

// Len returns the number of distinct name parts.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.loaded {
		return 0
	}
	n := 0
	_ = d.idx.names.Visit(func(patricia.Prefix, patricia.Item) error {
		n++
		return nil
	})
	return n
}

// Close drops the index.
func (d *Dictionary) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.loaded = false
	d.idx = nil
	return nil
}

var _ source.Predictor = (*Dictionary)(nil)
