package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ShowProgress runs fn while a spinner with message is drawn on w.
// When w is not a terminal the message is logged and fn runs plainly.
func ShowProgress(ctx context.Context, w io.Writer, message string, fn func() error) error {
	if !IsTerminal(w) {
		LogDebug("%s", message)
		return fn()
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case err := <-done:
			if err != nil {
				_, _ = fmt.Fprintf(w, "\r%s %s\n", errorStyle.Render("✗"), message)
				return err
			}
			_, _ = fmt.Fprintf(w, "\r%s %s\n", successStyle.Render("✓"), message)
			return nil
		case <-ctx.Done():
			_, _ = fmt.Fprintf(w, "\r%s %s\n", warningStyle.Render("…"), message)
			return ctx.Err()
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, "\r%s %s", progressStyle.Render(spinnerFrames[i%len(spinnerFrames)]), message)
		}
	}
}

// IsTerminal checks if the writer is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	printMarked(w, successStyle.Render("✓"), "", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	printMarked(w, errorStyle.Render("✗"), "ERROR: ", message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	printMarked(w, progressStyle.Render("ℹ"), "", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	printMarked(w, warningStyle.Render("⚠"), "WARNING: ", message)
}

func printMarked(w io.Writer, mark, plainPrefix, message string) {
	if IsTerminal(w) {
		_, _ = fmt.Fprintf(w, "%s %s\n", mark, message)
		return
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", plainPrefix, message)
}
