package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordmux/pkg/suggest"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
	if cfg.Server.MaxLimit != 64 || cfg.Dict.LoadWorkers != 4 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	again, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Suggest != cfg.Suggest {
		t.Errorf("saved defaults do not load back: %+v vs %+v", again.Suggest, cfg.Suggest)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, `
[suggest]
quick_fixes = false
min_word_usage = 2
next_word_mode = "words"
auto_threshold = 0

[dict]
languages = ["de", "en"]
packs_dir = "/opt/packs"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Suggest.QuickFixes || cfg.Suggest.MinWordUsage != 2 || cfg.Suggest.AutoThreshold != 0 {
		t.Errorf("suggest section not applied: %+v", cfg.Suggest)
	}
	if !cfg.Suggest.Contacts {
		t.Error("unset keys must keep their defaults")
	}
	if len(cfg.Dict.Languages) != 2 || cfg.Dict.Languages[0] != "de" {
		t.Errorf("unexpected languages %v", cfg.Dict.Languages)
	}
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := writeFile(t, `
[suggest]
min_word_usage = "lots"
max_next_words = 5

[dict]
languages = ["fr"]
max_words = "many"

[server]
max_limit = 12
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.Suggest.MinWordUsage != def.Suggest.MinWordUsage {
		t.Errorf("mistyped value must fall back to default, got %d", cfg.Suggest.MinWordUsage)
	}
	if cfg.Suggest.MaxNextWords != 5 || cfg.Server.MaxLimit != 12 {
		t.Errorf("well typed values must survive: %+v %+v", cfg.Suggest, cfg.Server)
	}
	if len(cfg.Dict.Languages) != 1 || cfg.Dict.Languages[0] != "fr" {
		t.Errorf("unexpected languages %v", cfg.Dict.Languages)
	}
	if cfg.Dict.MaxWords != def.Dict.MaxWords {
		t.Errorf("expected default max words, got %d", cfg.Dict.MaxWords)
	}
}

func TestSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suggest.NextWordMode = "words_punctuation"
	cfg.Suggest.MaxNextWords = 7

	s := cfg.Settings()
	if s.NextWordMode != suggest.ModeWordsAndPunctuation || s.MaxNextWordCount != 7 {
		t.Errorf("unexpected settings %+v", s)
	}

	cfg.Suggest.NextWordMode = "sometimes"
	if cfg.Settings().NextWordMode != suggest.ModeWords {
		t.Error("unknown mode must fall back to words")
	}
}

func TestUpdate(t *testing.T) {
	path := writeFile(t, "")
	cfg := DefaultConfig()

	off := false
	usage := 4
	if err := cfg.Update(path, SuggestUpdate{Contacts: &off, MinWordUsage: &usage}); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Suggest.Contacts || loaded.Suggest.MinWordUsage != 4 {
		t.Errorf("update not persisted: %+v", loaded.Suggest)
	}

	bad := "never"
	if err := cfg.Update("", SuggestUpdate{NextWordMode: &bad}); err == nil {
		t.Error("expected an unknown mode to be rejected")
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		configPath, p, name, want string
	}{
		{"/etc/wordmux/config.toml", "", "words.db", "/etc/wordmux/words.db"},
		{"/etc/wordmux/config.toml", "data", "x", "/etc/wordmux/data"},
		{"/etc/wordmux/config.toml", "/srv/words.db", "x", "/srv/words.db"},
		{"", "", "words.db", "words.db"},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.configPath, tt.p, tt.name); got != tt.want {
			t.Errorf("ResolvePath(%q, %q, %q) = %q, want %q", tt.configPath, tt.p, tt.name, got, tt.want)
		}
	}
}
