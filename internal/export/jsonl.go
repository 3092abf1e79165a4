package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/tutor-assistant/internal"
)

// JSONLExporter exports chat messages in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.ArchivedSession, w io.Writer) error {
	if err := checkSession(session); err != nil {
		return err
	}
	enc := json.NewEncoder(w)

	for _, msg := range session.ChatHistory {
		obj := map[string]interface{}{
			"session_id": session.SessionID,
			"role":       msg.Role,
			"content":    msg.Content,
		}

		if msg.Timestamp > 0 {
			obj["timestamp"] = msg.GetTime().UTC().Format(time.RFC3339)
		}

		// Encode to single line
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
