/*
Package server implements msgpack IPC over stdin/stdout for the suggestion provider.

# IPC

The server operates on a request response model where clients write msgpack
maps to stdin and read one response map per request from stdout. Every
request carries an id and an action; a request without an action is a
suggestion request:

	{"id": "req_001", "p": "ame", "l": 24}

The server responds with suggestions in provider order, deduplicated:

	{"id": "req_001", "s": [{"w": "amenity", "r": 1}, {"w": "america", "r": 2}], "c": 2, "t": 145}

Other actions reuse the same fields:

	{"id": "n1", "action": "next", "p": "good", "l": 3}
	{"id": "v1", "action": "valid", "p": "hello"}
	{"id": "l1", "action": "learn", "p": "wordmux", "f": 1}
	{"id": "i1", "action": "incognito", "on": true}
	{"id": "c1", "action": "configure", "settings": {"contacts": false}}

# Message Types

CompletionResponse answers suggest, abbrev and next. ValidResponse,
QuickFixResponse, StatusResponse and InfoResponse answer the rest.
Failed requests get a CompletionError with a status-like code.
*/
package server

// Actions understood by the server.
const (
	ActionSuggest   = "suggest"
	ActionAbbrev    = "abbrev"
	ActionNext      = "next"
	ActionValid     = "valid"
	ActionLearn     = "learn"
	ActionAdd       = "add"
	ActionDelete    = "delete"
	ActionQuickFix  = "quickfix"
	ActionReset     = "reset"
	ActionIncognito = "incognito"
	ActionConfigure = "configure"
	ActionReload    = "reload"
	ActionInfo      = "info"
)

// Request is the union of every request shape.
type Request struct {
	ID        string           `msgpack:"id"`
	Action    string           `msgpack:"action,omitempty"`
	Prefix    string           `msgpack:"p,omitempty"`
	Limit     int              `msgpack:"l,omitempty"`
	Frequency int              `msgpack:"f,omitempty"`
	On        *bool            `msgpack:"on,omitempty"`
	Settings  *SettingsRequest `msgpack:"settings,omitempty"`
}

// SettingsRequest holds the preference fields a configure request may change.
type SettingsRequest struct {
	QuickFixes    *bool   `msgpack:"quick_fixes,omitempty"`
	Contacts      *bool   `msgpack:"contacts,omitempty"`
	MinWordUsage  *int    `msgpack:"min_word_usage,omitempty"`
	NextWordMode  *string `msgpack:"next_word_mode,omitempty"`
	MaxNextWords  *int    `msgpack:"max_next_words,omitempty"`
	AutoThreshold *int    `msgpack:"auto_threshold,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// ValidResponse answers a valid request.
type ValidResponse struct {
	ID    string `msgpack:"id"`
	Valid bool   `msgpack:"v"`
}

// QuickFixResponse answers a quickfix request.
type QuickFixResponse struct {
	ID         string `msgpack:"id"`
	Found      bool   `msgpack:"ok"`
	Correction string `msgpack:"fix,omitempty"`
}

// StatusResponse answers mutation and control requests.
type StatusResponse struct {
	ID        string `msgpack:"id"`
	Status    string `msgpack:"status"`
	Changed   bool   `msgpack:"changed,omitempty"`
	Incognito bool   `msgpack:"incognito,omitempty"`
}

// InfoResponse describes the live source generation.
type InfoResponse struct {
	ID            string   `msgpack:"id"`
	Generation    string   `msgpack:"generation"`
	Languages     []string `msgpack:"languages"`
	Mains         int      `msgpack:"mains"`
	Users         int      `msgpack:"users"`
	Abbreviations int      `msgpack:"abbreviations"`
	QuickFixes    int      `msgpack:"quickfixes"`
	AutoLanguage  string   `msgpack:"auto_language,omitempty"`
	Contacts      bool     `msgpack:"contacts"`
	Incognito     bool     `msgpack:"incognito"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
