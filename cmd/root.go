package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/tutor-assistant/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	backendURL  string
	storagePath string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tutor-assistant",
	Short: "Context-aware chat assistant for the math tutor",
	Long: `A terminal host for the math tutor's chat assistant.

The assistant follows the module you are on, keeps one conversation per
session, archives old sessions and offers follow-up suggestions.

Features:
  • Interactive chat with module-aware context
  • Persistent history across restarts
  • Archived sessions you can list, view and export
  • Export in multiple formats (JSONL, Markdown, YAML, JSON)

Quick Start:
  tutor-assistant chat                    # Start chatting on the dashboard
  tutor-assistant chat --path /vectors    # Start on the Vector Spaces module
  tutor-assistant list                    # List archived sessions
  tutor-assistant export --format md      # Export sessions as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetLogOutput(cmd.ErrOrStderr())
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
	return cfg, nil
}

// openStorage loads the config and opens its KV store. The returned close
// function must be called when the command is done.
func openStorage() (*internal.Config, internal.KV, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	kv, closeFn := internal.OpenKV(cfg.Storage.Path)
	return cfg, kv, closeFn, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.tutor-assistant/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Path to the assistant database (overrides config)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
