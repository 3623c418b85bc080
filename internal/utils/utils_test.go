package utils

import (
	"reflect"
	"testing"
)

func TestIsValidInput(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"hel", true},
		{"don't", true},
		{"über", true},
		{"1234", false},
		{"he$lo", false},
		{"aaa", false},
		{"aa", true},
	}
	for _, tt := range tests {
		if got := IsValidInput(tt.in); got != tt.want {
			t.Errorf("IsValidInput(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCapitalization(t *testing.T) {
	if CapitalPositions("hello") != nil {
		t.Error("lower-case input must have no capital positions")
	}
	pos := CapitalPositions("ÉcO")
	if !reflect.DeepEqual(pos, []bool{true, false, true}) {
		t.Fatalf("CapitalPositions = %v", pos)
	}
	if got := ApplyCapitalization("écoles", pos); got != "ÉcOles" {
		t.Errorf("ApplyCapitalization = %q", got)
	}
}

func TestSuggestionFilter(t *testing.T) {
	f := NewSuggestionFilter("Hel")
	var kept []string
	for _, w := range []string{"hel", "hello", "Hello", "help", "HELP"} {
		if f.ShouldInclude(w) {
			kept = append(kept, w)
		}
	}
	if !reflect.DeepEqual(kept, []string{"hello", "help"}) {
		t.Errorf("kept %v", kept)
	}
}
