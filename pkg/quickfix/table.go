// Package quickfix holds the per-language typo to correction tables applied after a word is typed.
package quickfix

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/wordmux/internal/utils"
)

// Entry is one pattern and its correction.
type Entry struct {
	Pattern    string `toml:"pattern"`
	Correction string `toml:"correction"`
}

// Table is a read-only quick-fix lookup for one language.
type Table struct {
	language string
	exact    map[string]string
	folded   map[string]string
}

// New builds a table from entries. Later duplicates of a pattern win.
// Entries with an empty pattern or correction are dropped.
func New(language string, entries []Entry) *Table {
	t := &Table{
		language: language,
		exact:    make(map[string]string, len(entries)),
		folded:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if e.Pattern == "" || e.Correction == "" {
			continue
		}
		t.exact[e.Pattern] = e.Correction
		t.folded[utils.FoldKey(e.Pattern)] = e.Correction
	}
	return t
}

// FromMap builds a table from a pattern to correction map, the shape used in pack manifests.
func FromMap(language string, fixes map[string]string) *Table {
	entries := make([]Entry, 0, len(fixes))
	for pattern, correction := range fixes {
		entries = append(entries, Entry{Pattern: pattern, Correction: correction})
	}
	return New(language, entries)
}

type file struct {
	Language string            `toml:"language"`
	Fixes    map[string]string `toml:"fixes"`
	Entries  []Entry           `toml:"entry"`
}

// LoadFile reads a standalone quick-fix TOML file:
//
//	language = "en"
//	[fixes]
//	teh = "the"
//	[[entry]]
//	pattern = "dont"
//	correction = "don't"
func LoadFile(path string) (*Table, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("reading quick fixes %s: %w", path, err)
	}
	t := FromMap(f.Language, f.Fixes)
	for _, e := range f.Entries {
		if e.Pattern == "" || e.Correction == "" {
			continue
		}
		t.exact[e.Pattern] = e.Correction
		t.folded[utils.FoldKey(e.Pattern)] = e.Correction
	}
	return t, nil
}

// Language returns the language tag the table belongs to.
func (t *Table) Language() string { return t.language }

// Len returns the number of patterns.
func (t *Table) Len() int { return len(t.exact) }

// Lookup returns the correction for word. An exact pattern wins; otherwise a
// case-insensitive match is returned with the capitals of word carried over,
// so "Teh" becomes "The".
func (t *Table) Lookup(word string) (string, bool) {
	if t == nil || word == "" {
		return "", false
	}
	if fix, ok := t.exact[word]; ok {
		return fix, true
	}
	fix, ok := t.folded[utils.FoldKey(word)]
	if !ok {
		return "", false
	}
	if strings.ToLower(fix) != fix {
		return fix, true
	}
	return utils.ApplyCapitalization(fix, utils.CapitalPositions(word)), true
}
