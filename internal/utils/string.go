package utils

import (
	"strings"
	"unicode"
)

// CapitalPositions records which runes of s are upper case.
// Returns nil when s has no capitals.
func CapitalPositions(s string) []bool {
	var positions []bool
	i := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			if positions == nil {
				positions = make([]bool, len([]rune(s)))
			}
			positions[i] = true
		}
		i++
	}
	return positions
}

// ApplyCapitalization upper-cases the runes of word at the given positions.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}

// FoldKey is the lookup key every source uses for case-insensitive matching.
func FoldKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
