package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetPacksDir(t *testing.T) {
	configDir := t.TempDir()
	packs := filepath.Join(configDir, "packs")
	if err := os.MkdirAll(filepath.Join(packs, "en"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(packs, "en", PackMarker), []byte(`language = "en"`), 0644); err != nil {
		t.Fatal(err)
	}

	pr, err := NewPathResolver(configDir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"relative to config", "packs", packs},
		{"absolute", packs, packs},
		{"missing falls back to first candidate", "nowhere", filepath.Join(configDir, "nowhere")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pr.GetPacksDir(tt.dir); got != tt.want {
				t.Errorf("GetPacksDir(%q) = %q, want %q", tt.dir, got, tt.want)
			}
		})
	}

	if IsPacksDir(filepath.Join(packs, "en")) {
		t.Error("a pack itself is not a packs directory")
	}
}
