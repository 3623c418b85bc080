// Package cli is an interactive shell over the suggestion provider, for
// debugging sources in real time.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/bastiangx/wordmux/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler reads lines and answers them from the provider. A plain line
// is a prefix to complete; lines starting with ':' are commands.
type InputHandler struct {
	provider     *suggest.Provider
	suggestLimit int
	noFilter     bool

	in  io.Reader
	out io.Writer
}

// NewInputHandler creates a handler on stdin and stdout.
func NewInputHandler(provider *suggest.Provider, limit int, noFilter bool) *InputHandler {
	return NewInputHandlerIO(provider, limit, noFilter, os.Stdin, os.Stdout)
}

// NewInputHandlerIO creates a handler on the given streams.
func NewInputHandlerIO(provider *suggest.Provider, limit int, noFilter bool, in io.Reader, out io.Writer) *InputHandler {
	if limit <= 0 {
		limit = 24
	}
	return &InputHandler{
		provider:     provider,
		suggestLimit: limit,
		noFilter:     noFilter,
		in:           in,
		out:          out,
	}
}

// Start runs the loop until the input ends.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, titleStyle.Render("wordmux shell"))
	fmt.Fprintln(h.out, hintStyle.Render("type a prefix and press Enter, :help for commands (Ctrl+D to exit)"))

	scanner := bufio.NewScanner(h.in)
	for {
		fmt.Fprint(h.out, promptStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := h.handleLine(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			log.Error(err)
		}
	}
}

var errQuit = errors.New("quit")

func (h *InputHandler) handleLine(line string) error {
	if !strings.HasPrefix(line, ":") {
		h.handlePrefix(line)
		return nil
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "q", "quit":
		return errQuit
	case "help":
		h.printHelp()
	case "next":
		start := time.Now()
		words := h.provider.NextWords(arg, 0)
		log.Debugf("Took %v for next words of '%s'", time.Since(start), arg)
		h.printWords("next after "+quote(arg), wordsToCandidates(words))
	case "valid":
		h.printResult(arg, h.provider.IsValidWord(arg))
	case "fix":
		if fix, ok := h.provider.LookupQuickFix(arg); ok {
			fmt.Fprintf(h.out, "%s -> %s\n", arg, wordStyle.Render(fix))
		} else {
			fmt.Fprintln(h.out, hintStyle.Render("no quick fix for "+quote(arg)))
		}
	case "add":
		h.printResult("added "+quote(arg), h.provider.AddWordToPrimaryUserDictionary(arg))
	case "learn":
		h.printResult("learned "+quote(arg), h.provider.AddLearnedWord(arg, 1))
	case "del":
		h.provider.DeleteWordFromAllUserDictionaries(arg)
		fmt.Fprintln(h.out, hintStyle.Render("deleted "+quote(arg)))
	case "reset":
		h.provider.ResetNextWordContext()
		fmt.Fprintln(h.out, hintStyle.Render("sentence context reset"))
	case "incognito":
		switch arg {
		case "on":
			h.provider.SetIncognito(true)
		case "off":
			h.provider.SetIncognito(false)
		case "":
		default:
			return fmt.Errorf("usage: :incognito on|off")
		}
		h.printResult("incognito", h.provider.Incognito())
	case "info":
		h.printStats(h.provider.Stats())
	default:
		return fmt.Errorf("unknown command :%s, try :help", cmd)
	}
	return nil
}

func (h *InputHandler) handlePrefix(prefix string) {
	if !h.noFilter && !utils.IsValidInput(prefix) {
		log.Warnf("No suggestions found for prefix: '%s' (filtered out)", prefix)
		return
	}

	start := time.Now()
	sink := source.Collector{Limit: h.suggestLimit}
	h.provider.Suggestions(source.TypedWord(prefix), &sink)
	abbreviations := source.Collector{Limit: h.suggestLimit}
	h.provider.Abbreviations(source.TypedWord(prefix), &abbreviations)
	log.Debugf("Took %v for prefix '%s'", time.Since(start), prefix)

	if fix, ok := h.provider.LookupQuickFix(prefix); ok {
		fmt.Fprintf(h.out, "quick fix: %s\n", wordStyle.Render(fix))
	}
	if len(abbreviations.Candidates) > 0 {
		h.printWords("expansions of "+quote(prefix), abbreviations.Candidates)
	}
	if len(sink.Candidates) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}
	h.printWords("suggestions for "+quote(prefix), sink.Candidates)
}

func (h *InputHandler) printHelp() {
	lines := []string{
		":next <word>       predict the next words",
		":valid <word>      check a word against every source",
		":fix <word>        look up a quick fix",
		":add <word>        add to the primary user dictionary",
		":learn <word>      feed the auto dictionary",
		":del <word>        delete from every user dictionary",
		":reset             forget the sentence context",
		":incognito on|off  toggle incognito mode",
		":info              show the loaded sources",
		":quit              leave",
	}
	for _, l := range lines {
		fmt.Fprintln(h.out, hintStyle.Render(l))
	}
}

func wordsToCandidates(words []string) []source.Candidate {
	out := make([]source.Candidate, len(words))
	for i, w := range words {
		out[i] = source.Candidate{Word: w}
	}
	return out
}

func quote(s string) string {
	return "'" + s + "'"
}
