// Package suggest merges every word source of the configured languages into
// the single suggestion surface queried on each keystroke.
//
// A Provider owns one generation of sources at a time. Configure closes the
// previous generation and builds the next one; each source loads in the
// background and answers nothing until it is ready. Failed loads demote the
// source's slot to the null source, unless a newer generation has already
// replaced that source.
package suggest

import (
	"sync"
	"sync/atomic"

	"github.com/bastiangx/wordmux/internal/logger"
	"github.com/bastiangx/wordmux/pkg/quickfix"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/google/uuid"
)

// UserWordFrequency is the frequency of words the user adds explicitly.
const UserWordFrequency = 128

var plog = logger.New("suggest")

type loadJob struct {
	src      source.Loadable
	onFailed func(error)
}

// Provider is the suggestion aggregator.
type Provider struct {
	loader  Loader
	factory Factory

	incognito atomic.Bool

	mu         sync.RWMutex
	settings   Settings
	live       bool
	generation string
	builders   []Builder

	mains         []source.Dictionary
	users         []source.Learner
	abbreviations []source.Dictionary
	quickFixes    []*quickfix.Table
	seeds         []string
	auto          source.Editable
	autoLanguage  string
	contacts      source.Predictor
}

// NewProvider creates an unconfigured Provider with DefaultSettings.
func NewProvider(loader Loader, factory Factory) *Provider {
	return &Provider{
		loader:   loader,
		factory:  factory,
		settings: DefaultSettings(),
		auto:     source.Null,
		contacts: source.Null,
	}
}

// Configure replaces the whole source set with one built from builders, in
// order. A language whose main dictionary cannot be built keeps its other
// sources.
func (p *Provider) Configure(builders []Builder) {
	p.mu.Lock()
	p.closeLocked()

	p.live = true
	p.generation = uuid.NewString()
	p.builders = append([]Builder(nil), builders...)

	var jobs []loadJob
	languages := make([]string, 0, len(builders))
	for _, b := range builders {
		lang := b.Language()
		languages = append(languages, lang)

		if dict, err := b.CreateDictionary(); err != nil {
			plog.Warn("skipping main dictionary", "generation", p.generation, "pack", b.ID(), "language", lang, "err", err)
		} else if dict != nil {
			p.mains = append(p.mains, dict)
			jobs = append(jobs, loadJob{dict, p.dropMain(dict)})
		}

		if p.factory.User != nil {
			user := p.factory.User(lang)
			p.users = append(p.users, user)
			jobs = append(jobs, loadJob{user, p.dropUser(user)})
		}

		if p.settings.QuickFixesEnabled {
			jobs = append(jobs, p.addQuickFixesLocked(b)...)
		}

		p.seeds = append(p.seeds, b.InitialSuggestions()...)

		if p.auto == source.Null && p.settings.AutoDictionaryThreshold > 0 {
			if job, ok := p.createAutoLocked(lang); ok {
				jobs = append(jobs, job)
			}
		}
	}

	if p.settings.ContactsEnabled && p.contacts == source.Null {
		if job, ok := p.createContactsLocked(); ok {
			jobs = append(jobs, job)
		}
	}

	generation := p.generation
	plog.Info("configured sources", "generation", generation, "languages", languages,
		"mains", len(p.mains), "users", len(p.users), "quickfixes", len(p.quickFixes))
	p.mu.Unlock()

	p.submit(generation, jobs)
}

// addQuickFixesLocked loads b's quick-fix table and creates its abbreviations.
func (p *Provider) addQuickFixesLocked(b Builder) []loadJob {
	table, err := b.CreateQuickFixes()
	if err != nil {
		plog.Warn("skipping quick fixes", "generation", p.generation, "pack", b.ID(), "err", err)
	} else if table != nil {
		p.quickFixes = append(p.quickFixes, table)
	}

	if p.factory.Abbreviations == nil {
		return nil
	}
	abbr := p.factory.Abbreviations(b.Language())
	p.abbreviations = append(p.abbreviations, abbr)
	return []loadJob{{abbr, p.dropAbbreviations(abbr)}}
}

func (p *Provider) createAutoLocked(language string) (loadJob, bool) {
	if p.factory.Auto == nil {
		return loadJob{}, false
	}
	auto := p.factory.Auto(language, p.settings.AutoDictionaryThreshold)
	p.auto = auto
	p.autoLanguage = language
	return loadJob{auto, p.dropAuto(auto)}, true
}

func (p *Provider) createContactsLocked() (loadJob, bool) {
	if p.factory.Contacts == nil {
		return loadJob{}, false
	}
	contacts := p.factory.Contacts()
	p.contacts = contacts
	return loadJob{contacts, p.dropContacts(contacts)}, true
}

// submit hands jobs to the loader. It must run without p.mu held since a
// loader may report failures synchronously.
func (p *Provider) submit(generation string, jobs []loadJob) {
	for _, job := range jobs {
		name := job.src.Name()
		p.loader.Submit(job.src, func() {
			plog.Debug("source ready", "generation", generation, "source", name)
		}, job.onFailed)
	}
}

func indexOf[T comparable](list []T, v T) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func remove[T comparable](list []T, v T) ([]T, bool) {
	i := indexOf(list, v)
	if i < 0 {
		return list, false
	}
	return append(list[:i:i], list[i+1:]...), true
}

func (p *Provider) dropMain(d source.Dictionary) func(error) {
	return func(err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		var ok bool
		if p.mains, ok = remove(p.mains, d); !ok {
			plog.Debug("ignoring stale load failure", "source", d.Name(), "err", err)
			return
		}
		plog.Warn("main dictionary failed to load", "generation", p.generation, "source", d.Name(), "err", err)
		d.Close()
	}
}

func (p *Provider) dropUser(u source.Learner) func(error) {
	return func(err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		var ok bool
		if p.users, ok = remove(p.users, u); !ok {
			plog.Debug("ignoring stale load failure", "source", u.Name(), "err", err)
			return
		}
		plog.Warn("user dictionary failed to load", "generation", p.generation, "source", u.Name(), "err", err)
		u.Close()
	}
}

func (p *Provider) dropAbbreviations(a source.Dictionary) func(error) {
	return func(err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		var ok bool
		if p.abbreviations, ok = remove(p.abbreviations, a); !ok {
			plog.Debug("ignoring stale load failure", "source", a.Name(), "err", err)
			return
		}
		plog.Warn("abbreviations failed to load", "generation", p.generation, "source", a.Name(), "err", err)
		a.Close()
	}
}

func (p *Provider) dropAuto(a source.Editable) func(error) {
	return func(err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.auto != a {
			plog.Debug("ignoring stale load failure", "source", a.Name(), "err", err)
			return
		}
		plog.Warn("auto dictionary failed to load", "generation", p.generation, "err", err)
		a.Close()
		p.auto = source.Null
		p.autoLanguage = ""
	}
}

func (p *Provider) dropContacts(c source.Predictor) func(error) {
	return func(err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.contacts != c {
			plog.Debug("ignoring stale load failure", "source", c.Name(), "err", err)
			return
		}
		plog.Warn("contacts failed to load", "generation", p.generation, "err", err)
		c.Close()
		p.contacts = source.Null
	}
}

// IsValidWord reports whether any main, user or contacts source knows word.
func (p *Provider) IsValidWord(word string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isValidWordLocked(word)
}

func (p *Provider) isValidWordLocked(word string) bool {
	if word == "" {
		return false
	}
	for _, d := range p.mains {
		if d.IsValidWord(word) {
			return true
		}
	}
	for _, u := range p.users {
		if u.IsValidWord(word) {
			return true
		}
	}
	return p.contacts.IsValidWord(word)
}

// Suggestions emits candidates into sink: contacts first, then the user
// dictionaries and finally the main dictionaries, both in configuration
// order. Duplicates across sources are left to the caller.
func (p *Provider) Suggestions(in source.Input, sink source.Sink) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	p.contacts.Words(in, sink)
	for _, u := range p.users {
		u.Words(in, sink)
	}
	for _, d := range p.mains {
		d.Words(in, sink)
	}
}

// Abbreviations emits the expansions of every abbreviation source.
func (p *Provider) Abbreviations(in source.Input, sink source.Sink) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, a := range p.abbreviations {
		a.Words(in, sink)
	}
}

// LookupQuickFix returns the first correction any quick-fix table has for word.
func (p *Provider) LookupQuickFix(word string) (string, bool) {
	if word == "" {
		return "", false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, t := range p.quickFixes {
		if fix, ok := t.Lookup(word); ok && fix != "" {
			return fix, true
		}
	}
	return "", false
}

// NextWords predicts up to maxResults words to follow current. User sources
// come first and learn current unless incognito; contacts follow, then the
// seed list when the mode allows it. maxResults <= 0 uses the configured
// count.
func (p *Provider) NextWords(current string, maxResults int) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	budget := maxResults
	if budget <= 0 {
		budget = p.settings.MaxNextWordCount
	}
	if budget <= 0 {
		return nil
	}

	out := make([]string, 0, budget)
	take := func(words []string) bool {
		for _, w := range words {
			if budget == 0 {
				break
			}
			out = append(out, w)
			budget--
		}
		return budget > 0
	}

	learn := !p.incognito.Load()
	minUsage := p.settings.MinWordUsage
	for _, u := range p.users {
		if learn {
			u.NotifyTyped(current)
		}
		if !take(u.NextWords(current, budget, minUsage)) {
			return out
		}
	}
	if !take(p.contacts.NextWords(current, budget, minUsage)) {
		return out
	}
	if p.settings.NextWordMode == ModeWordsAndPunctuation {
		take(p.seeds)
	}
	return out
}

// ResetNextWordContext marks a sentence boundary for every next-word source.
func (p *Provider) ResetNextWordContext() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.users {
		u.ResetSentence()
	}
	p.contacts.ResetSentence()
}

// AddLearnedWord feeds word to the auto dictionary unless it is already
// known. It reports whether the auto dictionary learned the word.
func (p *Provider) AddLearnedWord(word string, frequencyDelta int) bool {
	if p.incognito.Load() {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if word == "" || p.isValidWordLocked(word) {
		return false
	}
	return p.auto.AddWord(word, frequencyDelta)
}

// AddWordToPrimaryUserDictionary adds word to the first configured user
// dictionary.
func (p *Provider) AddWordToPrimaryUserDictionary(word string) bool {
	if p.incognito.Load() || word == "" {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.users) == 0 {
		return false
	}
	return p.users[0].AddWord(word, UserWordFrequency)
}

// DeleteWordFromAllUserDictionaries removes word from every user dictionary.
func (p *Provider) DeleteWordFromAllUserDictionaries(word string) {
	if p.incognito.Load() || word == "" {
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.users {
		u.DeleteWord(word)
	}
}

// SetIncognito toggles incognito mode. Reads are unaffected.
func (p *Provider) SetIncognito(on bool) {
	if p.incognito.Swap(on) != on {
		plog.Info("incognito changed", "on", on)
	}
}

// Incognito reports whether incognito mode is on.
func (p *Provider) Incognito() bool {
	return p.incognito.Load()
}

// Close closes every source. It is safe to call more than once and before
// Configure. In-flight loads are not waited for.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Provider) closeLocked() {
	if !p.live {
		return
	}
	for _, u := range p.users {
		u.ResetSentence()
	}
	p.contacts.ResetSentence()

	closeAll(p.mains)
	closeAll(p.users)
	closeAll(p.abbreviations)
	p.auto.Close()
	p.contacts.Close()

	plog.Debug("closed sources", "generation", p.generation)

	p.mains = nil
	p.users = nil
	p.abbreviations = nil
	p.quickFixes = nil
	p.seeds = nil
	p.builders = nil
	p.auto = source.Null
	p.autoLanguage = ""
	p.contacts = source.Null
	p.generation = ""
	p.live = false
}

func closeAll[T source.Dictionary](list []T) {
	for _, d := range list {
		if err := d.Close(); err != nil {
			plog.Warn("closing source", "source", d.Name(), "err", err)
		}
	}
}

// ApplySettings replaces the settings snapshot. Contacts, the auto
// dictionary and quick fixes of a live generation follow the new values
// singly; nothing else is rebuilt.
func (p *Provider) ApplySettings(s Settings) {
	s = s.normalized()

	p.mu.Lock()
	prev := p.settings
	p.settings = s
	if !p.live {
		p.mu.Unlock()
		return
	}

	var jobs []loadJob

	switch {
	case !s.ContactsEnabled && p.contacts != source.Null:
		p.contacts.Close()
		p.contacts = source.Null
	case s.ContactsEnabled && p.contacts == source.Null:
		if job, ok := p.createContactsLocked(); ok {
			jobs = append(jobs, job)
		}
	}

	if s.AutoDictionaryThreshold != prev.AutoDictionaryThreshold || p.auto == source.Null {
		language := p.autoLanguage
		if language == "" && len(p.builders) > 0 {
			language = p.builders[0].Language()
		}
		if p.auto != source.Null {
			p.auto.Close()
			p.auto = source.Null
			p.autoLanguage = ""
		}
		if s.AutoDictionaryThreshold > 0 && language != "" {
			if job, ok := p.createAutoLocked(language); ok {
				jobs = append(jobs, job)
			}
		}
	}

	if s.QuickFixesEnabled != prev.QuickFixesEnabled {
		closeAll(p.abbreviations)
		p.abbreviations = nil
		p.quickFixes = nil
		if s.QuickFixesEnabled {
			for _, b := range p.builders {
				jobs = append(jobs, p.addQuickFixesLocked(b)...)
			}
		}
	}

	generation := p.generation
	p.mu.Unlock()

	p.submit(generation, jobs)
}

// Settings returns the current settings snapshot.
func (p *Provider) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// Stats describes the live generation.
type Stats struct {
	Generation    string
	Languages     []string
	Mains         int
	Users         int
	Abbreviations int
	QuickFixes    int
	Seeds         int
	AutoLanguage  string
	Contacts      bool
	Incognito     bool
}

// Stats returns a snapshot of the live generation.
func (p *Provider) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st := Stats{
		Generation:    p.generation,
		Mains:         len(p.mains),
		Users:         len(p.users),
		Abbreviations: len(p.abbreviations),
		QuickFixes:    len(p.quickFixes),
		Seeds:         len(p.seeds),
		AutoLanguage:  p.autoLanguage,
		Contacts:      p.contacts != source.Null,
		Incognito:     p.incognito.Load(),
	}
	for _, b := range p.builders {
		st.Languages = append(st.Languages, b.Language())
	}
	return st
}
