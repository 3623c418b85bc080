package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordmux/pkg/source"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func reopen(t *testing.T, s *Store, path string) *Store {
	t.Helper()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	again, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { again.Close() })
	return again
}

func TestUserDictionaryPersistsWords(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	u := s.UserDictionary("en")
	if err := u.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !u.AddWord("Gopher", 128) {
		t.Fatal("AddWord returned false")
	}
	u.AddWord("gophers", 100)
	u.AddWord("golang", 90)
	u.DeleteWord("golang")

	if !u.IsValidWord("gopher") {
		t.Error("added word must validate immediately")
	}

	var sink source.Collector
	u.Words(source.TypedWord("Go"), &sink)
	got := sink.Words()
	if len(got) != 2 || got[0] != "Gopher" || got[1] != "Gophers" {
		t.Errorf("unexpected candidates: %v", got)
	}

	s = reopen(t, s, path)
	again := s.UserDictionary("en")
	if err := again.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if !again.IsValidWord("gopher") || !again.IsValidWord("gophers") {
		t.Error("words must survive a reopen")
	}
	if again.IsValidWord("golang") {
		t.Error("deleted word must stay deleted")
	}

	other := s.UserDictionary("de")
	if err := other.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if other.IsValidWord("gopher") {
		t.Error("user words are per language")
	}
}

func TestUserDictionaryEmptyUntilLoaded(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()

	u := s.UserDictionary("en")
	u.AddWord("early", 128)
	if u.IsValidWord("early") {
		t.Error("queries must return nothing before load")
	}
	if err := u.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !u.IsValidWord("early") {
		t.Error("a word added before load must be present after it")
	}
}

func TestUserNextWords(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	u := s.UserDictionary("en")
	if err := u.Load(ctx); err != nil {
		t.Fatal(err)
	}
	for _, sentence := range [][]string{
		{"good", "morning"},
		{"good", "morning"},
		{"good", "night"},
		{"good", "luck"},
	} {
		for _, w := range sentence {
			u.NotifyTyped(w)
		}
		u.ResetSentence()
	}

	got := u.NextWords("good", 2, 1)
	if len(got) != 2 || got[0] != "morning" || got[1] != "luck" {
		t.Errorf("expected [morning luck], got %v", got)
	}
	if got := u.NextWords("good", 5, 2); len(got) != 1 || got[0] != "morning" {
		t.Errorf("minUsage must filter rare pairs, got %v", got)
	}
	if got := u.NextWords("morning", 5, 1); len(got) != 0 {
		t.Errorf("reset must break the sentence chain, got %v", got)
	}

	s = reopen(t, s, path)
	again := s.UserDictionary("en")
	if err := again.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if got := again.NextWords("good", 1, 2); len(got) != 1 || got[0] != "morning" {
		t.Errorf("pairs must survive a reopen, got %v", got)
	}
}

func TestUserDictionaryClose(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()

	u := s.UserDictionary("en")
	if err := u.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	u.AddWord("bye", 128)
	u.Close()

	if u.IsValidWord("bye") {
		t.Error("closed dictionary must know no words")
	}
	if u.AddWord("again", 1) {
		t.Error("closed dictionary must refuse additions")
	}
	if err := u.Load(context.Background()); !errors.Is(err, source.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestAutoDictionaryThreshold(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	a := s.AutoDictionary("en", 3)
	if err := a.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if a.AddWord("wordmux", 1) {
		t.Error("first sighting must not promote")
	}
	if a.IsValidWord("wordmux") {
		t.Error("word below threshold must not validate")
	}
	if !a.AddWord("wordmux", 2) {
		t.Error("reaching the threshold must promote")
	}
	if a.AddWord("wordmux", 1) {
		t.Error("a word is promoted only once")
	}
	if !a.IsValidWord("WordMux") {
		t.Error("promoted word must validate")
	}

	var sink source.Collector
	a.Words(source.TypedWord("word"), &sink)
	if len(sink.Candidates) != 1 || sink.Candidates[0].Frequency != 4 {
		t.Errorf("unexpected candidates: %+v", sink.Candidates)
	}

	s = reopen(t, s, path)
	again := s.AutoDictionary("en", 3)
	if err := again.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if again.Count("wordmux") != 4 {
		t.Errorf("expected persisted count 4, got %d", again.Count("wordmux"))
	}
}

func TestAbbreviations(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	defer s.Close()

	if err := s.AddAbbreviation(ctx, "en", "BRB", "be right back"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddAbbreviation(ctx, "en", "brb", "bathroom break"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddAbbreviation(ctx, "en", "", "nothing"); err == nil {
		t.Error("expected empty abbreviation to be rejected")
	}

	a := s.Abbreviations("en")
	if err := a.Load(ctx); err != nil {
		t.Fatal(err)
	}
	var sink source.Collector
	a.Words(source.TypedWord("Brb"), &sink)
	got := sink.Words()
	if len(got) != 2 || got[0] != "bathroom break" || got[1] != "be right back" {
		t.Errorf("unexpected expansions: %v", got)
	}

	if err := s.RemoveAbbreviation(ctx, "en", "brb"); err != nil {
		t.Fatal(err)
	}
	if err := a.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if a.IsValidWord("brb") {
		t.Error("removed abbreviation must be gone after reload")
	}
}

func TestLoadAfterStoreClose(t *testing.T) {
	s, _ := openTestStore(t)
	u := s.UserDictionary("en")
	s.Close()
	if err := u.Load(context.Background()); err == nil {
		t.Fatal("expected load to fail on a closed store")
	}
}
