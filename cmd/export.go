package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/tutor-assistant/internal"
	"github.com/iksnae/tutor-assistant/internal/export"
	"github.com/spf13/cobra"
)

var (
	format       string
	outputDir    string
	sessionID    string
	archivedOnly bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to file",
	Long: `Export the live session and archived sessions to various formats (jsonl, md, yaml, json).

You can export everything or a specific session by ID.
Use 'tutor-assistant list' to see available session IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create exporter first so a bad format fails before touching storage
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		_, kv, closeFn, err := openStorage()
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		sessions, err := sessionsToExport(kv)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			internal.PrintInfo(out, "No sessions to export")
			return nil
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		err = internal.ShowProgress(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Exporting %d session(s) to %s", len(sessions), outputDir), func() error {
			for _, session := range sessions {
				if err := exportSession(exporter, session, outputDir); err != nil {
					internal.LogError("%v", err)
					continue
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(out, fmt.Sprintf("Export complete: %d session(s) exported to %s", exported, outputDir))
		return nil
	},
}

// sessionsToExport collects the live session (when it has messages) and the
// archived ones, filtered by --session-id
func sessionsToExport(kv internal.KV) ([]*internal.ArchivedSession, error) {
	var sessions []*internal.ArchivedSession

	if !archivedOnly {
		live, err := liveSession(kv)
		if err != nil {
			return nil, err
		}
		if live.SessionID != "" && len(live.ChatHistory) > 0 {
			sessions = append(sessions, live)
		}
	}
	for _, a := range internal.NewPersistence(kv).ListArchived() {
		a := a
		sessions = append(sessions, &a)
	}

	if sessionID == "" {
		return sessions, nil
	}
	for _, s := range sessions {
		if s.SessionID == sessionID {
			return []*internal.ArchivedSession{s}, nil
		}
	}
	return nil, fmt.Errorf("session not found: %s (use 'tutor-assistant list' to see available sessions)", sessionID)
}

func exportSession(exporter export.Exporter, session *internal.ArchivedSession, dir string) error {
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", session.SessionID, exporter.Extension()))

	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format ("+strings.Join(export.Formats(), ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
	exportCmd.Flags().BoolVar(&archivedOnly, "archived", false, "Export archived sessions only")
}
