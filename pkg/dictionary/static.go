// Package dictionary provides the bundled, read-only language dictionaries and the language packs that build them.
package dictionary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// WordListName is the text word list a pack may ship instead of chunks.
const WordListName = "words.txt"

// Static is a read-only dictionary held in a patricia trie.
// It answers nothing until Load has finished.
type Static struct {
	name     string
	language string
	dir      string
	maxWords int

	mu           sync.RWMutex
	trie         *patricia.Trie
	totalWords   int
	maxFrequency int
	closed       bool
}

// NewStatic creates a dictionary reading chunks (or a word list) from dir.
// maxWords bounds how many words are loaded; 0 loads everything.
func NewStatic(name, language, dir string, maxWords int) *Static {
	return &Static{
		name:     name,
		language: language,
		dir:      dir,
		maxWords: maxWords,
	}
}

// NewStaticWords creates an already loaded dictionary from a word to frequency map.
func NewStaticWords(name, language string, words map[string]int) *Static {
	d := NewStatic(name, language, "", 0)
	trie := patricia.NewTrie()
	var st loadStats
	for w, f := range words {
		st.insert(trie, w, f)
	}
	d.trie = trie
	d.totalWords, d.maxFrequency = st.words, st.maxFrequency
	return d
}

// Name implements source.Loadable.
func (d *Static) Name() string { return d.name }

// Language returns the dictionary's language tag.
func (d *Static) Language() string { return d.language }

// Load reads the dictionary files into a fresh trie and publishes it.
func (d *Static) Load(ctx context.Context) error {
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return source.ErrClosed
	}

	trie := patricia.NewTrie()
	var st loadStats
	if err := d.readInto(ctx, trie, &st); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return source.ErrClosed
	}
	d.trie = trie
	d.totalWords, d.maxFrequency = st.words, st.maxFrequency
	log.Debugf("Dictionary %s (%s) loaded %d words", d.name, d.language, st.words)
	return nil
}

type loadStats struct {
	words        int
	maxFrequency int
}

// Entry is a trie item that keeps the dictionary spelling of a word stored
// under its folded key.
type Entry struct {
	Word      string
	Frequency int
}

// insert adds word to trie, reporting whether it was new. The first spelling
// of a folded key wins.
func (st *loadStats) insert(trie *patricia.Trie, word string, freq int) bool {
	word = strings.TrimSpace(word)
	key := utils.FoldKey(word)
	if key == "" {
		return false
	}
	if !trie.Insert(patricia.Prefix(key), &Entry{Word: word, Frequency: freq}) {
		return false
	}
	st.words++
	if freq > st.maxFrequency {
		st.maxFrequency = freq
	}
	return true
}

func (d *Static) readInto(ctx context.Context, trie *patricia.Trie, st *loadStats) error {
	chunks, err := ListChunks(d.dir)
	if err != nil {
		return err
	}

	add := func(word string, score int) {
		if d.maxWords > 0 && st.words >= d.maxWords {
			return
		}
		st.insert(trie, word, score)
	}

	if len(chunks) > 0 {
		for _, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.maxWords > 0 && st.words >= d.maxWords {
				break
			}
			if err := ValidateFileFormat(chunk.Filename, FormatChunk); err != nil {
				return err
			}
			if _, err := ReadChunk(chunk.Filename, add); err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.ID, err)
			}
		}
		return nil
	}

	list := filepath.Join(d.dir, WordListName)
	if _, err := DetectFileFormat(list); err != nil {
		return fmt.Errorf("no dictionary files in %s", d.dir)
	}
	_, err = ReadWordList(list, add)
	return err
}

// IsValidWord implements source.Dictionary.
func (d *Static) IsValidWord(word string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.trie == nil {
		return false
	}
	return d.trie.Get(patricia.Prefix(utils.FoldKey(word))) != nil
}

// Words emits every word starting with the typed prefix, most frequent first,
// carrying over the capitals of the input.
func (d *Static) Words(in source.Input, sink source.Sink) {
	typed := in.Word()
	lowerPrefix := utils.FoldKey(typed)
	if lowerPrefix == "" {
		return
	}

	d.mu.RLock()
	var found []source.Candidate
	if d.trie != nil {
		found = SearchTrie(d.trie, lowerPrefix)
	}
	d.mu.RUnlock()

	capitals := utils.CapitalPositions(typed)
	for _, c := range found {
		if !sink.Add(utils.ApplyCapitalization(c.Word, capitals), c.Frequency) {
			return
		}
	}
}

// Close drops the trie; later loads fail with source.ErrClosed.
func (d *Static) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.trie = nil
	return nil
}

// Stats returns statistics about the loaded dictionary
func (d *Static) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return map[string]int{
		"totalWords":   d.totalWords,
		"maxFrequency": d.maxFrequency,
	}
}

// SearchTrie collects every entry under lowerPrefix sorted by frequency,
// highest first. Items are *Entry or a bare frequency keyed by the word.
func SearchTrie(trie *patricia.Trie, lowerPrefix string) []source.Candidate {
	var found []source.Candidate
	err := trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		word, freq := string(p), 1
		switch v := item.(type) {
		case *Entry:
			word, freq = v.Word, v.Frequency
		case int:
			freq = v
		case int32:
			freq = int(v)
		case uint32:
			freq = int(v)
		default:
			log.Errorf("Unknown item type: %T for word %s", item, p)
		}
		found = append(found, source.Candidate{Word: word, Frequency: freq})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Frequency != found[j].Frequency {
			return found[i].Frequency > found[j].Frequency
		}
		return strings.Compare(found[i].Word, found[j].Word) < 0
	})
	return found
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
