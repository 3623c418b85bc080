package quickfix

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookup(t *testing.T) {
	table := FromMap("en", map[string]string{
		"teh":  "the",
		"dont": "don't",
		"i":    "I",
		"":     "ignored",
	})

	testCases := []struct {
		input    string
		expected string
		found    bool
	}{
		{"teh", "the", true},
		{"Teh", "The", true},
		{"TEH", "THE", true},
		{"dont", "don't", true},
		{"i", "I", true},
		{"the", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := table.Lookup(tc.input)
			if ok != tc.found || got != tc.expected {
				t.Errorf("Lookup(%q) = %q, %v; expected %q, %v", tc.input, got, ok, tc.expected, tc.found)
			}
		})
	}

	if table.Len() != 3 {
		t.Errorf("expected 3 patterns, got %d", table.Len())
	}
}

func TestNilTableLookup(t *testing.T) {
	var table *Table
	if _, ok := table.Lookup("teh"); ok {
		t.Fatal("nil table must not match")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixes.toml")
	content := `language = "en"

[fixes]
teh = "the"

[[entry]]
pattern = "recieve"
correction = "receive"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if table.Language() != "en" {
		t.Errorf("expected language en, got %q", table.Language())
	}
	if fix, ok := table.Lookup("recieve"); !ok || fix != "receive" {
		t.Errorf("expected receive, got %q", fix)
	}
	if fix, ok := table.Lookup("teh"); !ok || fix != "the" {
		t.Errorf("expected the, got %q", fix)
	}
}

func TestLoadFileRejectsBrokenToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixes.toml")
	if err := os.WriteFile(path, []byte("[fixes\nteh="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
