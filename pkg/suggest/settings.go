package suggest

import (
	"fmt"
	"strings"
)

// NextWordMode selects what NextWords may return.
type NextWordMode int

const (
	// ModeWords predicts words only.
	ModeWords NextWordMode = iota
	// ModeWordsAndPunctuation also falls back to the language seed list.
	ModeWordsAndPunctuation
)

func (m NextWordMode) String() string {
	switch m {
	case ModeWords:
		return "words"
	case ModeWordsAndPunctuation:
		return "words_punctuation"
	default:
		return fmt.Sprintf("NextWordMode(%d)", int(m))
	}
}

// ParseNextWordMode accepts the names String produces.
func ParseNextWordMode(s string) (NextWordMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "words", "":
		return ModeWords, nil
	case "words_punctuation", "words-punctuation", "words_and_punctuation":
		return ModeWordsAndPunctuation, nil
	default:
		return ModeWords, fmt.Errorf("unknown next word mode %q", s)
	}
}

// Settings is the full preference snapshot the Provider reads on every
// query. It is always replaced as a whole.
type Settings struct {
	QuickFixesEnabled bool
	ContactsEnabled   bool
	MinWordUsage      int
	NextWordMode      NextWordMode
	MaxNextWordCount  int
	// AutoDictionaryThreshold is the accumulated frequency at which a typed
	// word is learned. Zero disables the auto dictionary.
	AutoDictionaryThreshold int
}

// DefaultSettings returns the settings used before any are applied.
func DefaultSettings() Settings {
	return Settings{
		QuickFixesEnabled:       true,
		ContactsEnabled:         true,
		MinWordUsage:            1,
		NextWordMode:            ModeWordsAndPunctuation,
		MaxNextWordCount:        3,
		AutoDictionaryThreshold: 3,
	}
}

func (s Settings) normalized() Settings {
	if s.MinWordUsage < 0 {
		s.MinWordUsage = 0
	}
	if s.MaxNextWordCount < 0 {
		s.MaxNextWordCount = 0
	}
	if s.AutoDictionaryThreshold < 0 {
		s.AutoDictionaryThreshold = 0
	}
	return s
}
