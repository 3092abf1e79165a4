package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/tutor-assistant/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	session := internal.CreateTestArchivedSession("session_1_abcd", at)

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(&session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "# tutor-assistant session session_1_abcd\n") {
		t.Errorf("Export() output missing header comment:\n%s", out)
	}
	if !strings.Contains(out, "session_id: session_1_abcd") {
		t.Errorf("Export() output missing session_id:\n%s", out)
	}

	var back internal.ArchivedSession
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("Export() produced invalid YAML: %v", err)
	}
	if back.SessionID != session.SessionID {
		t.Errorf("SessionID = %q, want %q", back.SessionID, session.SessionID)
	}
	if len(back.ChatHistory) != len(session.ChatHistory) {
		t.Errorf("ChatHistory has %d entries, want %d", len(back.ChatHistory), len(session.ChatHistory))
	}
	if len(back.ConversationHistory) != len(session.ConversationHistory) {
		t.Errorf("ConversationHistory has %d entries, want %d", len(back.ConversationHistory), len(session.ConversationHistory))
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("Extension() = %q, want %q", got, "yaml")
	}
}
