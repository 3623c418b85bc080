package suggest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/wordmux/pkg/contacts"
	"github.com/bastiangx/wordmux/pkg/dictionary"
	"github.com/bastiangx/wordmux/pkg/loader"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/bastiangx/wordmux/pkg/store"
	"github.com/bastiangx/wordmux/pkg/suggest"
)

const testManifest = `id = "en-test"
language = "en"
initial_suggestions = [".", "?"]

[fixes]
teh = "the"
`

const testWords = `# test words
the 1000
there 900
hello 800
help 700
`

func writePack(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "en")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, dictionary.ManifestName), []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, dictionary.WordListName), []byte(testWords), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProviderWithRealSources(t *testing.T) {
	ctx := context.Background()

	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "words.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	pool := loader.NewPool(4)
	defer pool.Close()

	book := contacts.List{{Name: "Heloise Abelard"}}
	p := suggest.NewProvider(pool, suggest.Factory{
		User:          func(lang string) source.Learner { return db.UserDictionary(lang) },
		Abbreviations: func(lang string) source.Dictionary { return db.Abbreviations(lang) },
		Auto:          func(lang string, threshold int) source.Editable { return db.AutoDictionary(lang, threshold) },
		Contacts:      func() source.Predictor { return contacts.NewDictionary(book) },
	})
	defer p.Close()

	pack, err := dictionary.OpenPack(writePack(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	p.Configure([]suggest.Builder{pack})

	eventually(t, "main dictionary", func() bool { return p.IsValidWord("hello") })
	eventually(t, "contacts", func() bool { return p.IsValidWord("heloise") })

	if fix, ok := p.LookupQuickFix("teh"); !ok || fix != "the" {
		t.Errorf("LookupQuickFix(teh) = %q, %v", fix, ok)
	}

	// the user dictionary loads independently; wait until it accepts words
	// that survive its load
	eventually(t, "user dictionary", func() bool {
		p.AddWordToPrimaryUserDictionary("helium")
		return p.IsValidWord("helium")
	})

	sink := source.Collector{}
	p.Suggestions(source.TypedWord("Hel"), &sink)
	got := sink.Words()
	if len(got) < 4 || got[0] != "Heloise" || got[1] != "Helium" {
		t.Fatalf("unexpected suggestion order %v", got)
	}

	if err := db.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if err := db.Err(); err != nil {
		t.Fatalf("store write failed: %v", err)
	}
}
