package suggest

import (
	"github.com/bastiangx/wordmux/pkg/quickfix"
	"github.com/bastiangx/wordmux/pkg/source"
)

// Builder produces the bundled sources of one language.
type Builder interface {
	ID() string
	Language() string
	// CreateDictionary builds the unloaded main dictionary.
	CreateDictionary() (source.Dictionary, error)
	// CreateQuickFixes returns the language's quick-fix table, or nil.
	CreateQuickFixes() (*quickfix.Table, error)
	InitialSuggestions() []string
}

// Loader runs a source's Load off the query path. Exactly one of the
// callbacks is invoked per submission, on any goroutine.
type Loader interface {
	Submit(src source.Loadable, onDone func(), onFailed func(error))
}

// Factory creates the storage-backed sources. A nil constructor leaves
// that kind of source out.
type Factory struct {
	User          func(language string) source.Learner
	Abbreviations func(language string) source.Dictionary
	Auto          func(language string, threshold int) source.Editable
	Contacts      func() source.Predictor
}
