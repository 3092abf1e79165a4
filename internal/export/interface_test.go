package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/tutor-assistant/internal"
	"gopkg.in/yaml.v3"
)

func TestNewExporter(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	session := internal.CreateTestArchivedSession("session_1709294400000_abcd1234", at)

	tests := []struct {
		format  string
		wantExt string
		check   func(t *testing.T, out []byte)
	}{
		{format: "json", wantExt: "json", check: func(t *testing.T, out []byte) {
			var back internal.ArchivedSession
			if err := json.Unmarshal(out, &back); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			assertSameSession(t, &back, &session)
		}},
		{format: "yaml", wantExt: "yaml", check: func(t *testing.T, out []byte) {
			var back internal.ArchivedSession
			if err := yaml.Unmarshal(out, &back); err != nil {
				t.Fatalf("invalid YAML: %v", err)
			}
			assertSameSession(t, &back, &session)
		}},
		{format: "YML", wantExt: "yaml", check: nil},
		{format: "jsonl", wantExt: "jsonl", check: func(t *testing.T, out []byte) {
			scanner := bufio.NewScanner(bytes.NewReader(out))
			var back []internal.ChatMessage
			for scanner.Scan() {
				var line struct {
					SessionID string        `json:"session_id"`
					Role      internal.Role `json:"role"`
					Content   string        `json:"content"`
				}
				if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
					t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
				}
				if line.SessionID != session.SessionID {
					t.Errorf("session_id = %q, want %q", line.SessionID, session.SessionID)
				}
				back = append(back, internal.ChatMessage{Role: line.Role, Content: line.Content})
			}
			if len(back) != len(session.ChatHistory) {
				t.Fatalf("JSONL has %d lines, want %d", len(back), len(session.ChatHistory))
			}
			for i, msg := range back {
				if msg.Role != session.ChatHistory[i].Role || msg.Content != session.ChatHistory[i].Content {
					t.Errorf("line %d = %+v, want %+v", i, msg, session.ChatHistory[i])
				}
			}
		}},
		{format: "md", wantExt: "md", check: func(t *testing.T, out []byte) {
			if !strings.HasPrefix(string(out), "# Session "+session.SessionID) {
				t.Errorf("Markdown header = %q", strings.SplitN(string(out), "\n", 2)[0])
			}
		}},
		{format: " Markdown ", wantExt: "md", check: nil},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if err != nil {
				t.Fatalf("NewExporter(%q) error = %v", tt.format, err)
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}

			var buf bytes.Buffer
			if err := exporter.Export(&session, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, buf.Bytes())
			}
		})
	}
}

func TestNewExporter_Unsupported(t *testing.T) {
	for _, format := range []string{"", "xml", "csv"} {
		exporter, err := NewExporter(format)
		if err == nil {
			t.Errorf("NewExporter(%q) error = nil, want error", format)
		}
		if exporter != nil {
			t.Errorf("NewExporter(%q) = %T, want nil", format, exporter)
		}
		if err != nil && !strings.Contains(err.Error(), strings.Join(Formats(), ", ")) {
			t.Errorf("error %q does not list the supported formats", err)
		}
	}
}

func TestExporters_RejectMissingSession(t *testing.T) {
	for _, format := range Formats() {
		exporter, _ := NewExporter(format)
		var buf bytes.Buffer
		if err := exporter.Export(nil, &buf); err == nil {
			t.Errorf("%s Export(nil) error = nil, want error", format)
		}
		if err := exporter.Export(&internal.ArchivedSession{}, &buf); err == nil {
			t.Errorf("%s Export(no id) error = nil, want error", format)
		}
		if buf.Len() != 0 {
			t.Errorf("%s wrote %d bytes for a missing session", format, buf.Len())
		}
	}
}

func assertSameSession(t *testing.T, got, want *internal.ArchivedSession) {
	t.Helper()
	if got.SessionID != want.SessionID || got.Timestamp != want.Timestamp {
		t.Errorf("session = %s@%s, want %s@%s", got.SessionID, got.Timestamp, want.SessionID, want.Timestamp)
	}
	if len(got.ChatHistory) != len(want.ChatHistory) {
		t.Fatalf("chatHistory has %d entries, want %d", len(got.ChatHistory), len(want.ChatHistory))
	}
	for i := range got.ChatHistory {
		if got.ChatHistory[i] != want.ChatHistory[i] {
			t.Errorf("chatHistory[%d] = %+v, want %+v", i, got.ChatHistory[i], want.ChatHistory[i])
		}
	}
}
