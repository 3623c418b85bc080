// Package source defines the capabilities every word source exposes to the suggestion provider.
package source

import (
	"context"
	"errors"
)

// ErrClosed is returned by sources that are loaded after Close.
var ErrClosed = errors.New("source closed")

// Input is the in-progress composition handed through to every source.
type Input interface {
	// Word returns the characters typed so far.
	Word() string
}

// TypedWord is the plain string Input.
type TypedWord string

// Word implements Input.
func (w TypedWord) Word() string { return string(w) }

// Sink receives candidate words from a source.
// Add returns false when the sink wants no more candidates.
type Sink interface {
	Add(word string, frequency int) bool
}

// Loadable is anything the async loader can warm up.
type Loadable interface {
	Name() string
	Load(ctx context.Context) error
}

// Dictionary is a word source: validity checks and candidate emission for one vocabulary.
// Queries against a dictionary that has not finished loading return nothing.
type Dictionary interface {
	Loadable
	IsValidWord(word string) bool
	Words(in Input, sink Sink)
	Close() error
}

// Editable is a Dictionary that can learn and forget words.
type Editable interface {
	Dictionary
	AddWord(word string, frequency int) bool
	DeleteWord(word string)
}

// NextWords predicts continuations from recently typed words.
type NextWords interface {
	NextWords(current string, maxResults, minUsage int) []string
	NotifyTyped(word string)
	ResetSentence()
}

// Predictor is a Dictionary that also predicts next words, like the contacts source.
type Predictor interface {
	Dictionary
	NextWords
}

// Learner is an Editable that also predicts next words, like a user dictionary.
type Learner interface {
	Editable
	NextWords
}

// Collector is an append-only Sink keeping every candidate in arrival order.
type Collector struct {
	Candidates []Candidate
	Limit      int
}

// Candidate is one word emitted into a Collector.
type Candidate struct {
	Word      string
	Frequency int
}

// Add implements Sink.
func (c *Collector) Add(word string, frequency int) bool {
	if c.Limit > 0 && len(c.Candidates) >= c.Limit {
		return false
	}
	c.Candidates = append(c.Candidates, Candidate{Word: word, Frequency: frequency})
	return c.Limit <= 0 || len(c.Candidates) < c.Limit
}

// Words returns the collected words in arrival order.
func (c *Collector) Words() []string {
	words := make([]string, len(c.Candidates))
	for i, cand := range c.Candidates {
		words[i] = cand.Word
	}
	return words
}
