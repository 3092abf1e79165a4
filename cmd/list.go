package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/tutor-assistant/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	Long:  `List the live session and every archived session, newest last.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, kv, closeFn, err := openStorage()
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		live, err := liveSession(kv)
		if err != nil {
			return err
		}
		archived := internal.NewPersistence(kv).ListArchived()

		displaySessions(cmd.OutOrStdout(), live, archived, time.Now())
		return nil
	},
}

func displaySessions(out io.Writer, live *internal.ArchivedSession, archived []internal.ArchivedSession, now time.Time) {
	if live != nil && live.SessionID != "" {
		_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🟢 Live session %s (%d message(s))", live.SessionID, len(live.ChatHistory))))
		_, _ = fmt.Fprintln(out)
	}

	if len(archived) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No archived sessions"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d archived session(s)", len(archived))))
	_, _ = fmt.Fprintln(out)

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Turns")+"\t"+titleStyle.Render("Archived")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	for _, a := range archived {
		msgCount := countStyle.Render(strconv.Itoa(len(a.ChatHistory)))
		turnCount := countStyle.Render(strconv.Itoa(len(a.ConversationHistory)))
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", idStyle.Render(a.SessionID), msgCount, turnCount, formatArchived(a.Timestamp, now))
	}

	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(archived[0].SessionID)+
		idStyle.Render(") with `tutor-assistant history <id>`"))
}

// formatArchived shortens an archive timestamp relative to now
func formatArchived(timestamp string, now time.Time) string {
	if timestamp == "" {
		return dateStyle.Render("—")
	}
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return dateStyle.Render(timestamp)
	}
	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return dateStyle.Render(t.Format("Today 15:04"))
	case diff < 7*24*time.Hour:
		return dateStyle.Render(t.Format("Mon 15:04"))
	case diff < 365*24*time.Hour:
		return dateStyle.Render(t.Format("Jan 02 15:04"))
	default:
		return dateStyle.Render(t.Format("2006-01-02"))
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
