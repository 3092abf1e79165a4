package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/iksnae/tutor-assistant/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	session := internal.CreateTestArchivedSession("session_1_abcd", at)

	var buf bytes.Buffer
	exporter := &JSONExporter{}
	if err := exporter.Export(&session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Export() produced invalid JSON: %v", err)
	}

	for _, key := range []string{"sessionId", "timestamp", "chatHistory", "conversationHistory"} {
		if _, ok := got[key]; !ok {
			t.Errorf("Export() output missing key %q", key)
		}
	}
	if got["sessionId"] != "session_1_abcd" {
		t.Errorf("sessionId = %v, want %q", got["sessionId"], "session_1_abcd")
	}
	if got["timestamp"] != "2024-03-01T12:00:00.000Z" {
		t.Errorf("timestamp = %v, want %q", got["timestamp"], "2024-03-01T12:00:00.000Z")
	}
	if msgs, ok := got["chatHistory"].([]interface{}); !ok || len(msgs) != 2 {
		t.Errorf("chatHistory = %v, want 2 messages", got["chatHistory"])
	}
}

func TestJSONExporter_EmptySession(t *testing.T) {
	session := &internal.ArchivedSession{
		SessionID:           "session_2_ef01",
		ChatHistory:         []internal.ChatMessage{},
		ConversationHistory: []internal.ConversationTurn{},
	}

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var back internal.ArchivedSession
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("Export() produced invalid JSON: %v", err)
	}
	if back.SessionID != session.SessionID {
		t.Errorf("SessionID = %q, want %q", back.SessionID, session.SessionID)
	}
	if len(back.ChatHistory) != 0 {
		t.Errorf("ChatHistory has %d entries, want 0", len(back.ChatHistory))
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	if got := (&JSONExporter{}).Extension(); got != "json" {
		t.Errorf("Extension() = %q, want %q", got, "json")
	}
}
