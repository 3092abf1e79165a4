package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/tutor-assistant/internal"
)

var (
	moduleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	systemMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	typingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	mathBlockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Padding(0, 2)

	mathInlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	boldStyle = lipgloss.NewStyle().Bold(true)
)

// terminalMarkup renders math and emphasis with terminal styles
var terminalMarkup = internal.Markup{
	BlockMath:  func(expr string) string { return "\n" + mathBlockStyle.Render(expr) + "\n" },
	InlineMath: func(expr string) string { return mathInlineStyle.Render(expr) },
	Bold:       func(text string) string { return boldStyle.Render(text) },
	LineBreak:  "\n",
}

// terminalView draws the assistant panel as a scrolling transcript
type terminalView struct {
	mu          sync.Mutex
	out         io.Writer
	open        bool
	placeholder string
	suggestions []string
}

func newTerminalView(out io.Writer) *terminalView {
	return &terminalView{out: out}
}

func (v *terminalView) SetModuleName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = fmt.Fprintln(v.out, moduleStyle.Render("📍 "+name))
}

func (v *terminalView) SetPlaceholder(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.placeholder = text
}

func (v *terminalView) AppendMessage(role internal.Role, markup string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if role == internal.RoleSystem {
		_, _ = fmt.Fprintln(v.out, systemMessageStyle.Render("— "+markup))
		return
	}
	_, _ = fmt.Fprintln(v.out, roleLabel(role))
	_, _ = fmt.Fprintln(v.out, messageContentStyle.Render(strings.TrimSpace(markup)))
}

func (v *terminalView) ClearMessages() {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = fmt.Fprintln(v.out, typingStyle.Render(strings.Repeat("─", 60)))
}

func (v *terminalView) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = fmt.Fprintln(v.out, typingStyle.Render("  … thinking"))
}

func (v *terminalView) HideTyping() {}

func (v *terminalView) SetSuggestions(suggestions []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.suggestions = append([]string(nil), suggestions...)
	if !v.open || len(suggestions) == 0 {
		return
	}
	for i, s := range suggestions {
		_, _ = fmt.Fprintf(v.out, "  %s %s\n", suggestionStyle.Render(fmt.Sprintf("[%d]", i+1)), s)
	}
}

func (v *terminalView) ClearInput() {}

func (v *terminalView) SetInput(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = fmt.Fprintln(v.out, typingStyle.Render("> "+text))
}

func (v *terminalView) SetOpen(open bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.open = open
	state := "closed"
	if open {
		state = "open"
	}
	_, _ = fmt.Fprintln(v.out, typingStyle.Render("Assistant panel "+state))
}

// Prompt returns the input prompt derived from the placeholder
func (v *terminalView) Prompt() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.placeholder == "" {
		return "> "
	}
	return v.placeholder + " > "
}

func roleLabel(role internal.Role) string {
	switch role {
	case internal.RoleUser:
		return userMessageStyle.Render("👤 You")
	case internal.RoleAssistant:
		return assistantMessageStyle.Render("🤖 Tutor")
	default:
		return systemMessageStyle.Render(fmt.Sprintf("🔧 %s", role))
	}
}
