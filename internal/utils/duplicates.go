package utils

// SuggestionFilter drops repeated suggestions, compared case-insensitively.
// Sources may emit the same word; removing those is left to whoever
// collects the results.
type SuggestionFilter struct {
	seenWords map[string]bool
}

// NewSuggestionFilter creates a filter that also excludes the input word itself.
func NewSuggestionFilter(input string) *SuggestionFilter {
	seenWords := make(map[string]bool)
	if key := FoldKey(input); key != "" {
		seenWords[key] = true
	}
	return &SuggestionFilter{seenWords: seenWords}
}

// ShouldInclude reports whether word is new, and remembers it.
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	key := FoldKey(word)
	if f.seenWords[key] {
		return false
	}
	f.seenWords[key] = true
	return true
}
