package dictionary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordmux/pkg/source"
)

func writePack(t *testing.T, dir, manifest string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestChunkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries := []WordRank{{"the", 1}, {"then", 2}, {"there", 3}}
	if err := WriteChunk(filepath.Join(dir, ChunkName(1)), entries); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}

	chunks, err := ListChunks(dir)
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != 1 || chunks[0].WordCount != 3 {
		t.Fatalf("unexpected chunk listing: %+v", chunks)
	}

	got := map[string]int{}
	n, err := ReadChunk(chunks[0].Filename, func(word string, score int) { got[word] = score })
	if err != nil || n != 3 {
		t.Fatalf("ReadChunk: n=%d err=%v", n, err)
	}
	if got["the"] != 65535 || got["there"] != 65533 {
		t.Errorf("unexpected scores: %v", got)
	}
}

func TestStaticLoadsChunks(t *testing.T) {
	dir := t.TempDir()
	if err := WriteChunk(filepath.Join(dir, ChunkName(1)), []WordRank{{"hello", 1}, {"help", 2}}); err != nil {
		t.Fatal(err)
	}
	if err := WriteChunk(filepath.Join(dir, ChunkName(2)), []WordRank{{"helmet", 3}, {"world", 4}}); err != nil {
		t.Fatal(err)
	}

	d := NewStatic("en", "en", dir, 0)
	if d.IsValidWord("hello") {
		t.Fatal("dictionary must answer nothing before Load")
	}
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !d.IsValidWord("hello") || !d.IsValidWord("World") {
		t.Error("expected loaded words to validate case-insensitively")
	}
	if d.IsValidWord("hel") {
		t.Error("a prefix is not a word")
	}

	var sink source.Collector
	d.Words(source.TypedWord("Hel"), &sink)
	expected := []string{"Hello", "Help", "Helmet"}
	got := sink.Words()
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("position %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestStaticRespectsMaxWords(t *testing.T) {
	dir := t.TempDir()
	if err := WriteChunk(filepath.Join(dir, ChunkName(1)), []WordRank{{"a", 1}, {"b", 2}, {"c", 3}}); err != nil {
		t.Fatal(err)
	}
	d := NewStatic("en", "en", dir, 2)
	if err := d.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d.Stats()["totalWords"] != 2 {
		t.Errorf("expected 2 words, got %d", d.Stats()["totalWords"])
	}
	if d.IsValidWord("c") {
		t.Error("word beyond the limit must not load")
	}
}

func TestStaticStopsWhenSinkIsFull(t *testing.T) {
	d := NewStaticWords("en", "en", map[string]int{"car": 3, "cat": 2, "cab": 1})
	sink := source.Collector{Limit: 2}
	d.Words(source.TypedWord("ca"), &sink)
	if len(sink.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(sink.Candidates))
	}
	if sink.Candidates[0].Word != "car" {
		t.Errorf("expected most frequent first, got %s", sink.Candidates[0].Word)
	}
}

func TestStaticLoadsWordList(t *testing.T) {
	dir := t.TempDir()
	list := "# common words\nthe 500\nof\nand 300\n"
	if err := os.WriteFile(filepath.Join(dir, WordListName), []byte(list), 0o644); err != nil {
		t.Fatal(err)
	}
	d := NewStatic("en", "en", dir, 0)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, w := range []string{"the", "of", "and"} {
		if !d.IsValidWord(w) {
			t.Errorf("expected %q to be loaded", w)
		}
	}
}

func TestStaticKeepsDictionarySpelling(t *testing.T) {
	dir := t.TempDir()
	list := "iPhone 500\nNASA 400\nnasal 300\n"
	if err := os.WriteFile(filepath.Join(dir, WordListName), []byte(list), 0o644); err != nil {
		t.Fatal(err)
	}
	d := NewStatic("en", "en", dir, 0)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		typed string
		want  []string
	}{
		{"ip", []string{"iPhone"}},
		{"na", []string{"NASA", "nasal"}},
		{"Na", []string{"NASA", "Nasal"}},
	}
	for _, tt := range tests {
		var sink source.Collector
		d.Words(source.TypedWord(tt.typed), &sink)
		got := sink.Words()
		if len(got) != len(tt.want) {
			t.Errorf("Words(%q) = %v, want %v", tt.typed, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Words(%q) = %v, want %v", tt.typed, got, tt.want)
				break
			}
		}
	}
	if !d.IsValidWord("iphone") || !d.IsValidWord("IPHONE") {
		t.Error("lookups must stay case-insensitive")
	}
}

func TestStaticFailsWithoutFiles(t *testing.T) {
	d := NewStatic("en", "en", t.TempDir(), 0)
	if err := d.Load(context.Background()); err == nil {
		t.Fatal("expected an error for an empty dictionary dir")
	}
}

func TestStaticLoadAfterClose(t *testing.T) {
	dir := t.TempDir()
	if err := WriteChunk(filepath.Join(dir, ChunkName(1)), []WordRank{{"x", 1}}); err != nil {
		t.Fatal(err)
	}
	d := NewStatic("en", "en", dir, 0)
	d.Close()
	if err := d.Load(context.Background()); !errors.Is(err, source.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if d.IsValidWord("x") {
		t.Fatal("closed dictionary must know no words")
	}
}

func TestPackBuildsSources(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "en")
	writePack(t, dir, `id = "en-basic"
language = "en"
max_words = 100
initial_suggestions = [".", ","]

[fixes]
teh = "the"
`)
	if err := WriteChunk(filepath.Join(dir, ChunkName(1)), []WordRank{{"the", 1}}); err != nil {
		t.Fatal(err)
	}

	p, err := OpenPack(dir, 0)
	if err != nil {
		t.Fatalf("OpenPack: %v", err)
	}
	if p.ID() != "en-basic" || p.Language() != "en" {
		t.Errorf("unexpected pack identity %s/%s", p.ID(), p.Language())
	}

	d, err := p.CreateDictionary()
	if err != nil {
		t.Fatalf("CreateDictionary: %v", err)
	}
	if err := d.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !d.IsValidWord("the") {
		t.Error("expected pack dictionary to load its chunk")
	}

	fixes, err := p.CreateQuickFixes()
	if err != nil || fixes == nil {
		t.Fatalf("CreateQuickFixes: %v", err)
	}
	if fix, ok := fixes.Lookup("teh"); !ok || fix != "the" {
		t.Errorf("expected quick fix, got %q", fix)
	}

	seeds := p.InitialSuggestions()
	seeds[0] = "changed"
	if p.InitialSuggestions()[0] != "." {
		t.Error("InitialSuggestions must return a copy")
	}
}

func TestPackWithoutDictionaryFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fr")
	writePack(t, dir, "language = \"fr\"\n")
	p, err := OpenPack(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.CreateDictionary(); err == nil {
		t.Fatal("expected CreateDictionary to fail without files")
	}
	if fixes, err := p.CreateQuickFixes(); err != nil || fixes != nil {
		t.Fatalf("expected no quick fixes, got %v %v", fixes, err)
	}
}

func TestDiscoverPacksKeepsLanguageOrder(t *testing.T) {
	root := t.TempDir()
	writePack(t, filepath.Join(root, "a"), "id = \"a\"\nlanguage = \"en\"\n")
	writePack(t, filepath.Join(root, "b"), "id = \"b\"\nlanguage = \"de\"\n")
	writePack(t, filepath.Join(root, "broken"), "language = ")

	packs, err := DiscoverPacks(root, []string{"de", "en", "xx"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(packs) != 2 || packs[0].Language() != "de" || packs[1].Language() != "en" {
		t.Fatalf("unexpected packs: %v", packs)
	}

	all, err := DiscoverPacks(root, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID() != "a" {
		t.Fatalf("expected every valid pack ordered by id, got %d", len(all))
	}
}
