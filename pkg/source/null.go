package source

import "context"

type nullDictionary struct{}

// Null is the absent source. It is a valid value for every capability in this
// package: it knows no words, predicts nothing and ignores every mutation, so
// call sites never need a nil check.
var Null Learner = nullDictionary{}

func (nullDictionary) Name() string { return "NULL" }

func (nullDictionary) Load(context.Context) error { return nil }

func (nullDictionary) IsValidWord(string) bool { return false }

func (nullDictionary) Words(Input, Sink) {}

func (nullDictionary) Close() error { return nil }

func (nullDictionary) AddWord(string, int) bool { return false }

func (nullDictionary) DeleteWord(string) {}

func (nullDictionary) NextWords(string, int, int) []string { return nil }

func (nullDictionary) NotifyTyped(string) {}

func (nullDictionary) ResetSentence() {}
