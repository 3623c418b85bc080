package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/wordmux/pkg/dictionary"
	"github.com/bastiangx/wordmux/pkg/quickfix"
	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/bastiangx/wordmux/pkg/suggest"
)

type readyLoader struct{}

func (readyLoader) Submit(_ source.Loadable, onDone func(), _ func(error)) { onDone() }

type testBuilder struct{}

func (testBuilder) ID() string       { return "cli-en" }
func (testBuilder) Language() string { return "en" }
func (testBuilder) CreateDictionary() (source.Dictionary, error) {
	return dictionary.NewStaticWords("cli-en", "en", map[string]int{"gopher": 5000, "golang": 1200}), nil
}
func (testBuilder) CreateQuickFixes() (*quickfix.Table, error) {
	return quickfix.FromMap("en", map[string]string{"teh": "the"}), nil
}
func (testBuilder) InitialSuggestions() []string { return []string{"."} }

func runShell(t *testing.T, input string) string {
	t.Helper()
	p := suggest.NewProvider(readyLoader{}, suggest.Factory{})
	p.Configure([]suggest.Builder{testBuilder{}})
	defer p.Close()

	var out bytes.Buffer
	h := NewInputHandlerIO(p, 10, false, strings.NewReader(input), &out)
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return out.String()
}

func TestShellSuggestions(t *testing.T) {
	out := runShell(t, "go\n")
	for _, want := range []string{"2 suggestions for 'go'", "gopher", "5,000", "golang"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "gopher") > strings.Index(out, "golang") {
		t.Error("suggestions must keep provider order")
	}
}

func TestShellCommands(t *testing.T) {
	out := runShell(t, strings.Join([]string{
		":valid gopher",
		":fix teh",
		":incognito on",
		":next gopher",
		":info",
		":quit",
		"never reached",
	}, "\n"))

	for _, want := range []string{"gopher: yes", "teh -> the", "incognito: yes", "next after 'gopher'", "languages", "en"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "never reached") {
		t.Error(":quit must stop the shell")
	}
}

func TestFormatWithCommas(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-65536, "-65,536"},
	}
	for _, tt := range tests {
		if got := formatWithCommas(tt.in); got != tt.want {
			t.Errorf("formatWithCommas(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
