package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/config"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/bastiangx/wordmux/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const defaultLimit = 10

// ReloadFunc rebuilds the language builders, e.g. after packs changed on disk.
type ReloadFunc func() ([]suggest.Builder, error)

// Server handles the msgpack IPC for a Provider.
type Server struct {
	provider   *suggest.Provider
	config     *config.Config
	configPath string
	reload     ReloadFunc

	dec *msgpack.Decoder
	out *bufio.Writer
	enc *msgpack.Encoder
}

// NewServer creates a server reading stdin and writing stdout.
func NewServer(provider *suggest.Provider, cfg *config.Config, configPath string) *Server {
	return NewServerIO(provider, cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerIO creates a server on the given streams.
func NewServerIO(provider *suggest.Provider, cfg *config.Config, configPath string, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	out := bufio.NewWriter(w)
	return &Server{
		provider:   provider,
		config:     cfg,
		configPath: configPath,
		dec:        msgpack.NewDecoder(bufio.NewReader(r)),
		out:        out,
		enc:        msgpack.NewEncoder(out),
	}
}

// SetReload enables the reload action.
func (s *Server) SetReload(fn ReloadFunc) {
	s.reload = fn
}

// Start serves requests until the input ends.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	s.send(StatusResponse{Status: "ready"})

	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "invalid request", 400)
			continue
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	switch req.Action {
	case "", ActionSuggest:
		s.handleCompletion(req, s.provider.Suggestions)
	case ActionAbbrev:
		s.handleCompletion(req, s.provider.Abbreviations)
	case ActionNext:
		s.handleNext(req)
	case ActionValid:
		s.send(ValidResponse{ID: req.ID, Valid: s.provider.IsValidWord(req.Prefix)})
	case ActionQuickFix:
		fix, ok := s.provider.LookupQuickFix(req.Prefix)
		s.send(QuickFixResponse{ID: req.ID, Found: ok, Correction: fix})
	case ActionLearn:
		freq := req.Frequency
		if freq <= 0 {
			freq = 1
		}
		s.sendStatus(req.ID, s.provider.AddLearnedWord(req.Prefix, freq))
	case ActionAdd:
		s.sendStatus(req.ID, s.provider.AddWordToPrimaryUserDictionary(req.Prefix))
	case ActionDelete:
		s.provider.DeleteWordFromAllUserDictionaries(req.Prefix)
		s.sendStatus(req.ID, false)
	case ActionReset:
		s.provider.ResetNextWordContext()
		s.sendStatus(req.ID, false)
	case ActionIncognito:
		changed := false
		if req.On != nil {
			changed = s.provider.Incognito() != *req.On
			s.provider.SetIncognito(*req.On)
		}
		s.sendStatus(req.ID, changed)
	case ActionConfigure:
		s.handleConfigure(req)
	case ActionReload:
		s.handleReload(req)
	case ActionInfo:
		s.handleInfo(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) limit(requested int) int {
	limit := requested
	if limit < 1 {
		limit = defaultLimit
	}
	if maxLimit := s.config.Server.MaxLimit; maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func (s *Server) handleCompletion(req Request, query func(source.Input, source.Sink)) {
	prefix := req.Prefix
	if prefix == "" {
		s.sendError(req.ID, "missing prefix", 400)
		return
	}
	n := len([]rune(prefix))
	if n < s.config.Server.MinPrefix {
		s.sendError(req.ID, fmt.Sprintf("prefix must be at least %d characters", s.config.Server.MinPrefix), 400)
		return
	}
	if maxPrefix := s.config.Server.MaxPrefix; maxPrefix > 0 && n > maxPrefix {
		s.sendError(req.ID, fmt.Sprintf("prefix exceeds maximum length of %d characters", maxPrefix), 400)
		return
	}

	start := time.Now()
	sink := newCollectSink(prefix, s.limit(req.Limit))
	if !s.config.Server.EnableFilter || utils.IsValidInput(prefix) {
		query(source.TypedWord(prefix), sink)
	}
	s.sendWords(req.ID, sink.words, time.Since(start))
}

func (s *Server) handleNext(req Request) {
	start := time.Now()
	words := s.provider.NextWords(req.Prefix, s.limit(req.Limit))
	s.sendWords(req.ID, words, time.Since(start))
}

func (s *Server) handleConfigure(req Request) {
	if req.Settings == nil {
		s.sendError(req.ID, "missing settings", 400)
		return
	}
	u := config.SuggestUpdate{
		QuickFixes:    req.Settings.QuickFixes,
		Contacts:      req.Settings.Contacts,
		MinWordUsage:  req.Settings.MinWordUsage,
		NextWordMode:  req.Settings.NextWordMode,
		MaxNextWords:  req.Settings.MaxNextWords,
		AutoThreshold: req.Settings.AutoThreshold,
	}
	if err := s.config.Update(s.configPath, u); err != nil {
		s.sendError(req.ID, err.Error(), 400)
		return
	}
	s.provider.ApplySettings(s.config.Settings())
	s.sendStatus(req.ID, true)
}

func (s *Server) handleReload(req Request) {
	if s.reload == nil {
		s.sendError(req.ID, "reload not supported", 501)
		return
	}
	builders, err := s.reload()
	if err != nil {
		log.Errorf("Reloading packs: %v", err)
		s.sendError(req.ID, err.Error(), 500)
		return
	}
	s.provider.Configure(builders)
	s.sendStatus(req.ID, true)
}

func (s *Server) handleInfo(req Request) {
	st := s.provider.Stats()
	s.send(InfoResponse{
		ID:            req.ID,
		Generation:    st.Generation,
		Languages:     st.Languages,
		Mains:         st.Mains,
		Users:         st.Users,
		Abbreviations: st.Abbreviations,
		QuickFixes:    st.QuickFixes,
		AutoLanguage:  st.AutoLanguage,
		Contacts:      st.Contacts,
		Incognito:     st.Incognito,
	})
}

func (s *Server) sendWords(id string, words []string, elapsed time.Duration) {
	suggestions := make([]CompletionSuggestion, len(words))
	for i, w := range words {
		suggestions[i] = CompletionSuggestion{Word: w, Rank: uint16(i + 1)}
	}
	s.send(CompletionResponse{
		ID:          id,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) sendStatus(id string, changed bool) {
	s.send(StatusResponse{ID: id, Status: "ok", Changed: changed, Incognito: s.provider.Incognito()})
}

func (s *Server) sendError(id, message string, code int) {
	s.send(CompletionError{ID: id, Error: message, Code: code})
}

func (s *Server) send(response any) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

// collectSink keeps the first limit distinct words, skipping the typed input.
type collectSink struct {
	filter *utils.SuggestionFilter
	words  []string
	limit  int
}

func newCollectSink(input string, limit int) *collectSink {
	return &collectSink{filter: utils.NewSuggestionFilter(input), limit: limit}
}

func (c *collectSink) Add(word string, _ int) bool {
	if len(c.words) >= c.limit {
		return false
	}
	if c.filter.ShouldInclude(word) {
		c.words = append(c.words, word)
	}
	return len(c.words) < c.limit
}
