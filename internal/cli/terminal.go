package cli

import (
	"fmt"
	"strings"

	"github.com/bastiangx/wordmux/pkg/source"
	"github.com/bastiangx/wordmux/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	wordStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (h *InputHandler) printWords(title string, candidates []source.Candidate) {
	if len(candidates) == 0 {
		fmt.Fprintln(h.out, hintStyle.Render("nothing for "+title))
		return
	}
	fmt.Fprintf(h.out, "%d %s:\n", len(candidates), title)
	for i, c := range candidates {
		if c.Frequency > 0 {
			fmt.Fprintf(h.out, "%2d. %-30s (freq: %8s)\n", i+1, wordStyle.Render(c.Word), formatWithCommas(c.Frequency))
		} else {
			fmt.Fprintf(h.out, "%2d. %s\n", i+1, wordStyle.Render(c.Word))
		}
	}
}

func (h *InputHandler) printResult(label string, ok bool) {
	if ok {
		fmt.Fprintf(h.out, "%s: %s\n", label, okStyle.Render("yes"))
	} else {
		fmt.Fprintf(h.out, "%s: %s\n", label, failStyle.Render("no"))
	}
}

func (h *InputHandler) printStats(st suggest.Stats) {
	rows := [][2]string{
		{"generation", st.Generation},
		{"languages", strings.Join(st.Languages, ", ")},
		{"main dictionaries", fmt.Sprint(st.Mains)},
		{"user dictionaries", fmt.Sprint(st.Users)},
		{"abbreviations", fmt.Sprint(st.Abbreviations)},
		{"quick fix tables", fmt.Sprint(st.QuickFixes)},
		{"seed suggestions", fmt.Sprint(st.Seeds)},
		{"auto dictionary", st.AutoLanguage},
		{"contacts", fmt.Sprint(st.Contacts)},
		{"incognito", fmt.Sprint(st.Incognito)},
	}
	for _, r := range rows {
		fmt.Fprintf(h.out, "%-18s %s\n", hintStyle.Render(r[0]), r[1])
	}
}

// formatWithCommas formats an integer with comma separators
func formatWithCommas(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 && n > -1000 {
		return str
	}
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	var b strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(char)
	}
	return sign + b.String()
}
