package internal

// View is the set of render targets the assistant draws into: the toggle,
// the message list, the suggestion chips, the input and the module label.
// Implementations must treat calls made while the panel is closed, or after
// the input has gone away, as no-ops.
type View interface {
	SetModuleName(name string)
	SetPlaceholder(text string)

	// AppendMessage adds an already rendered message to the message list
	AppendMessage(role Role, markup string)
	ClearMessages()

	ShowTyping()
	HideTyping()

	SetSuggestions(suggestions []string)

	ClearInput()
	SetInput(text string)

	SetOpen(open bool)
}

// NopView discards every update
type NopView struct{}

func (NopView) SetModuleName(string) {}
func (NopView) SetPlaceholder(string) {}
func (NopView) AppendMessage(Role, string) {}
func (NopView) ClearMessages() {}
func (NopView) ShowTyping() {}
func (NopView) HideTyping() {}
func (NopView) SetSuggestions([]string) {}
func (NopView) ClearInput() {}
func (NopView) SetInput(string) {}
func (NopView) SetOpen(bool) {}

// Placeholder returns the input placeholder for a module
func Placeholder(m ModuleContext) string {
	return "Ask about " + m.DisplayName + "..."
}
