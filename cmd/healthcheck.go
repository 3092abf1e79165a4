package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/tutor-assistant/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that storage and the backend are reachable",
	Long: `Check the health of tutor-assistant by verifying:
  • Configuration loads
  • The assistant database opens
  • Stored sessions decode
  • The backend answers at its base URL`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 Tutor Assistant Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to load configuration:"), err)
			return err
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(out, "   Backend: %s (timeout %s)\n", cfg.Backend.BaseURL, cfg.Backend.Timeout)
			_, _ = fmt.Fprintf(out, "   Storage: %s\n", cfg.Storage.Path)
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: Storage
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Opening storage..."))
		storageOK := true
		db, err := internal.OpenDatabase(cfg.Storage.Path)
		if err != nil {
			storageOK = false
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Storage unavailable, the assistant will run in memory:"), err)
		} else {
			defer func() { _ = db.Close() }()
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Storage opened"))
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: Stored sessions
		archivedCount := 0
		if storageOK {
			_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Reading stored sessions..."))
			kv := internal.NewSQLiteKV(db)
			live, err := liveSession(kv)
			if err != nil {
				_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Failed to read the live session:"), err)
			} else if live.SessionID == "" {
				_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  No live session yet"))
			} else {
				_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Live session %s with %d message(s)", live.SessionID, len(live.ChatHistory))))
			}
			archived := internal.NewPersistence(kv).ListArchived()
			archivedCount = len(archived)
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %d archived session(s)", archivedCount)))
			if healthcheckVerbose {
				for i, a := range archived {
					if i == 5 {
						_, _ = fmt.Fprintf(out, "   ... and %d more\n", len(archived)-5)
						break
					}
					_, _ = fmt.Fprintf(out, "   [%d] %s (%s)\n", i+1, a.SessionID, a.Timestamp)
				}
			}
			_, _ = fmt.Fprintln(out)
		}

		// Step 4: Backend
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting backend..."))
		backend := internal.NewHTTPBackend(cfg.Backend.BaseURL, cfg.Backend.Timeout)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		backendErr := internal.ShowProgress(ctx, cmd.ErrOrStderr(), "Pinging "+cfg.Backend.BaseURL, func() error {
			return backend.Ping(ctx)
		})
		if backendErr != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), backendErr)
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Backend reachable"))
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)

		switch {
		case backendErr != nil:
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			_, _ = fmt.Fprintln(out, "   • Messages cannot be answered until the backend is reachable")
			return fmt.Errorf("health check failed: %w", backendErr)
		case !storageOK:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Backend reachable but storage unavailable"))
			_, _ = fmt.Fprintln(out, "   • Conversations will not survive a restart")
			return nil
		default:
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Archived sessions: %d", archivedCount)))
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
