package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/tutor-assistant/testutil"
)

// resetFlags restores every package-level flag variable so commands do not
// see values parsed by an earlier test
func resetFlags(t *testing.T) {
	t.Helper()
	verbose = false
	configPath = filepath.Join(testutil.CreateTempDir(t), "missing.yaml")
	backendURL = ""
	storagePath = ""
	limit, since, raw = 0, "", false
	format, outputDir, sessionID, archivedOnly = "jsonl", "./exports", "", false
	resetYes = false
	chatPath, chatClosed = "/", false
	inspectFormat, inspectValues, inspectWidth = "text", false, 120
	healthcheckVerbose = false

	t.Setenv("TUTOR_BACKEND_URL", "")
	t.Setenv("TUTOR_STORAGE_PATH", "")
}

// executeCommand runs the root command with args and stdin, returning stdout
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeCommandWithStderr(t, stdin, args...)
	return stdout, err
}

// executeCommandWithStderr is executeCommand that also returns stderr
func executeCommandWithStderr(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
