package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/tutor-assistant/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format. Math delimiters are kept as-is.
func (e *MarkdownExporter) Export(session *internal.ArchivedSession, w io.Writer) error {
	if err := checkSession(session); err != nil {
		return err
	}
	// Header
	_, _ = fmt.Fprintf(w, "# Session %s\n\n", session.SessionID)

	if session.Timestamp != "" {
		_, _ = fmt.Fprintf(w, "**Archived:** %s  \n", session.Timestamp)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d  \n", len(session.ChatHistory))
	_, _ = fmt.Fprintf(w, "**Turns:** %d\n\n", len(session.ConversationHistory))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range session.ChatHistory {
		if msg.Role == internal.RoleSystem {
			_, _ = fmt.Fprintf(w, "> _%s_\n\n", msg.Content)
		} else {
			timestamp := ""
			if msg.Timestamp > 0 {
				timestamp = fmt.Sprintf(" (%s)", msg.GetTime().UTC().Format(time.RFC3339))
			}
			_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, timestamp, escapeMarkdown(msg.Content))
		}

		// Add horizontal rule after each message (except the last one)
		if i < len(session.ChatHistory)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes underscores outside code blocks and math spans.
// Bold markers are left alone since messages use them deliberately.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock || strings.Contains(line, "$") {
			result = append(result, line)
		} else {
			result = append(result, strings.ReplaceAll(line, "__", "\\_\\_"))
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
