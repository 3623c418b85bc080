package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/wordmux/pkg/quickfix"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/charmbracelet/log"
)

// ManifestName is the file describing a language pack.
const ManifestName = "pack.toml"

// Manifest is the content of pack.toml:
//
//	id = "en-basic"
//	language = "en"
//	max_words = 50000
//	initial_suggestions = [".", ",", "?", "!"]
//
//	[fixes]
//	teh = "the"
type Manifest struct {
	ID                 string            `toml:"id"`
	Language           string            `toml:"language"`
	MaxWords           int               `toml:"max_words"`
	InitialSuggestions []string          `toml:"initial_suggestions"`
	Fixes              map[string]string `toml:"fixes"`
}

// Pack is a language pack directory: the dictionary files plus its manifest.
// It builds the per-language sources the suggestion provider asks for.
type Pack struct {
	dir      string
	manifest Manifest
	maxWords int
}

// OpenPack reads dir/pack.toml. maxWords caps the pack's own max_words when positive.
func OpenPack(dir string, maxWords int) (*Pack, error) {
	if !dirExists(dir) {
		return nil, fmt.Errorf("pack dir %s does not exist", dir)
	}
	var m Manifest
	path := filepath.Join(dir, ManifestName)
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("reading pack manifest %s: %w", path, err)
	}
	if m.Language == "" {
		return nil, fmt.Errorf("pack manifest %s has no language", path)
	}
	if m.ID == "" {
		m.ID = filepath.Base(dir)
	}

	limit := m.MaxWords
	if maxWords > 0 && (limit == 0 || maxWords < limit) {
		limit = maxWords
	}
	return &Pack{dir: dir, manifest: m, maxWords: limit}, nil
}

// DiscoverPacks opens every pack directly under root whose language is in
// languages, keeping the order of languages. An empty languages list opens
// every pack, ordered by id. Packs that fail to open are logged and skipped.
func DiscoverPacks(root string, languages []string, maxWords int) ([]*Pack, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading packs dir %s: %w", root, err)
	}

	var all []*Pack
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := OpenPack(filepath.Join(root, e.Name()), maxWords)
		if err != nil {
			log.Warnf("Skipping pack %s: %v", e.Name(), err)
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })

	if len(languages) == 0 {
		return all, nil
	}
	var picked []*Pack
	for _, lang := range languages {
		found := false
		for _, p := range all {
			if p.Language() == lang {
				picked = append(picked, p)
				found = true
			}
		}
		if !found {
			log.Warnf("No pack found for language %s under %s", lang, root)
		}
	}
	return picked, nil
}

// ID returns the pack id.
func (p *Pack) ID() string { return p.manifest.ID }

// Language returns the pack's language tag.
func (p *Pack) Language() string { return p.manifest.Language }

// Dir returns the pack directory.
func (p *Pack) Dir() string { return p.dir }

// CreateDictionary builds the pack's main dictionary. The returned dictionary
// is empty until loaded; an error means the pack carries no dictionary files.
func (p *Pack) CreateDictionary() (source.Dictionary, error) {
	chunks, err := ListChunks(p.dir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		if _, err := DetectFileFormat(filepath.Join(p.dir, WordListName)); err != nil {
			return nil, fmt.Errorf("pack %s has no dictionary files", p.ID())
		}
	}
	return NewStatic(p.ID(), p.Language(), p.dir, p.maxWords), nil
}

// CreateQuickFixes returns the pack's quick-fix table, or nil when it has none.
func (p *Pack) CreateQuickFixes() (*quickfix.Table, error) {
	if len(p.manifest.Fixes) == 0 {
		return nil, nil
	}
	return quickfix.FromMap(p.Language(), p.manifest.Fixes), nil
}

// InitialSuggestions returns the words offered when nothing has been typed yet.
func (p *Pack) InitialSuggestions() []string {
	return append([]string(nil), p.manifest.InitialSuggestions...)
}
