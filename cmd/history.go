package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/tutor-assistant/internal"
	"github.com/spf13/cobra"
)

var (
	limit int
	since string
	raw   bool
)

var (
	// Styles for history command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show the messages of the live or an archived session",
	Long: `Display the chat history of the live session, or of an archived session
when its id is given. Use 'tutor-assistant list' to see archived session ids.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, kv, closeFn, err := openStorage()
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		var session *internal.ArchivedSession
		if len(args) == 1 {
			session, err = findArchived(kv, args[0])
		} else {
			session, err = liveSession(kv)
		}
		if err != nil {
			return err
		}

		messages := session.ChatHistory
		if since != "" {
			sinceTime, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			messages = messagesSince(messages, sinceTime)
		}

		out := cmd.OutOrStdout()
		displaySessionHeader(out, session)

		// Apply limit if specified
		total := len(messages)
		if limit > 0 && limit < total {
			messages = messages[:limit]
		}

		renderer := internal.NewRenderer(terminalMarkup, false)
		for i, msg := range messages {
			displayMessage(out, renderer, i+1, msg, total)
		}

		if limit > 0 && limit < total {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", total-limit)))
		}
		return nil
	},
}

// liveSession reads the live session without creating one
func liveSession(kv internal.KV) (*internal.ArchivedSession, error) {
	id, err := kv.Get(internal.KeySessionID)
	if err != nil && !errors.Is(err, internal.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to read session id: %w", err)
	}
	chat, conv := internal.NewPersistence(kv).Load()
	return &internal.ArchivedSession{
		SessionID:           id,
		ChatHistory:         chat,
		ConversationHistory: conv,
	}, nil
}

// findArchived looks an archived session up by id
func findArchived(kv internal.KV, id string) (*internal.ArchivedSession, error) {
	for _, a := range internal.NewPersistence(kv).ListArchived() {
		if a.SessionID == id {
			a := a
			return &a, nil
		}
	}
	return nil, fmt.Errorf("session not found: %s", id)
}

func messagesSince(messages []internal.ChatMessage, t time.Time) []internal.ChatMessage {
	filtered := make([]internal.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Timestamp > 0 && !msg.GetTime().Before(t) {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

func displaySessionHeader(out io.Writer, session *internal.ArchivedSession) {
	if session == nil {
		return
	}
	title := session.SessionID
	if title == "" {
		title = "(no session yet)"
	}
	_, _ = fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", title)))

	var metaParts []string
	if session.Timestamp != "" {
		metaParts = append(metaParts, fmt.Sprintf("Archived: %s", session.Timestamp))
	}
	metaParts = append(metaParts, fmt.Sprintf("Messages: %d", len(session.ChatHistory)))
	metaParts = append(metaParts, fmt.Sprintf("Turns: %d", len(session.ConversationHistory)))
	_, _ = fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	_, _ = fmt.Fprintln(out)
}

func displayMessage(out io.Writer, renderer *internal.Renderer, index int, msg internal.ChatMessage, total int) {
	header := roleLabel(msg.Role) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if msg.Timestamp > 0 {
		header += " " + timestampStyle.Render(msg.GetTime().Format("15:04:05"))
	}
	_, _ = fmt.Fprintln(out, header)

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		_, _ = fmt.Fprintln(out, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
		_, _ = fmt.Fprintln(out)
		return
	}
	if raw {
		content = wrapText(content, 80)
	} else {
		content = renderer.Render(wrapText(content, 80))
	}
	_, _ = fmt.Fprintln(out, messageContentStyle.Render(content))
	_, _ = fmt.Fprintln(out)
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		// Wrap long lines
		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
				}
				currentLine = word
			} else if currentLine == "" {
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	historyCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339)")
	historyCmd.Flags().BoolVar(&raw, "raw", false, "Show message text without math and bold styling")
}
