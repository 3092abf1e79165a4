package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/tutor-assistant/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat string
	inspectValues bool
	inspectWidth  int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [key-prefix]",
	Short: "Inspect the raw keys in the assistant database",
	Long: `List the raw keys stored in the assistant database, optionally limited to a
key prefix such as 'archivedSession:'.

Examples:
  tutor-assistant inspect                         # All keys with value sizes
  tutor-assistant inspect archivedSession: --values
  tutor-assistant inspect --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		db, err := internal.OpenDatabase(cfg.Storage.Path)
		if err != nil {
			return &internal.StorageError{Key: prefix, Op: "open", Err: err}
		}
		defer func() { _ = db.Close() }()

		pairs, err := internal.QueryAssistantKV(db, prefix)
		if err != nil {
			return &internal.StorageError{Key: prefix, Op: "scan", Err: err}
		}

		out := cmd.OutOrStdout()
		if inspectFormat == "json" {
			return writeKeysJSON(out, pairs)
		}
		writeKeys(out, cfg.Storage.Path, pairs)
		return nil
	},
}

func writeKeys(out io.Writer, path string, pairs []internal.KeyValuePair) {
	_, _ = fmt.Fprintf(out, "📋 Database: %s\n", path)
	_, _ = fmt.Fprintf(out, "📊 Found %d key(s)\n\n", len(pairs))
	for _, pair := range pairs {
		_, _ = fmt.Fprintf(out, "  • %s (%d bytes)\n", pair.Key, len(pair.Value))
		if inspectValues {
			_, _ = fmt.Fprintf(out, "      %s\n", truncate(pair.Value, inspectWidth))
		}
	}
}

func writeKeysJSON(out io.Writer, pairs []internal.KeyValuePair) error {
	entries := make([]map[string]interface{}, 0, len(pairs))
	for _, pair := range pairs {
		entry := map[string]interface{}{
			"key":  pair.Key,
			"size": len(pair.Value),
		}
		if inspectValues {
			entry["value"] = pair.Value
		}
		entries = append(entries, entry)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func truncate(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().BoolVar(&inspectValues, "values", false, "Show stored values")
	inspectCmd.Flags().IntVar(&inspectWidth, "width", 120, "Truncate values to this many bytes in text output (0 = no limit)")
}
