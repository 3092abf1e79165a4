package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/tutor-assistant/internal"
	"github.com/iksnae/tutor-assistant/testutil"
)

func TestInspectCommand(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	db := testutil.CreateStorageFixture(t, dir, "session_3_live", testutil.ArchivedAt("session_1_aaaa", 0))

	out, err := executeCommand(t, "", "inspect", "--storage", db)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, key := range []string{internal.KeySessionID, internal.KeyChatHistory, internal.KeyConversationHistory, internal.KeyArchivedPrefix} {
		if !strings.Contains(out, key) {
			t.Errorf("inspect output missing key %q:\n%s", key, out)
		}
	}
}

func TestInspectCommand_PrefixJSON(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	db := testutil.CreateStorageFixture(t, dir, "session_3_live",
		testutil.ArchivedAt("session_1_aaaa", 0),
		testutil.ArchivedAt("session_2_bbbb", 1),
	)

	out, err := executeCommand(t, "", "inspect", internal.KeyArchivedPrefix, "--storage", db, "--format", "json", "--values")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("inspect --format json produced invalid JSON: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("inspect returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if !strings.HasPrefix(e["key"].(string), internal.KeyArchivedPrefix) {
			t.Errorf("key %v does not have the archived prefix", e["key"])
		}
		if _, ok := e["value"]; !ok {
			t.Errorf("entry %v missing value", e["key"])
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{in: "hello", width: 0, want: "hello"},
		{in: "hello", width: 10, want: "hello"},
		{in: "hello world", width: 8, want: "hello..."},
		{in: "hello", width: 2, want: "he"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
