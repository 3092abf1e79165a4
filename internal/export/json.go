package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/tutor-assistant/internal"
)

// JSONExporter writes the archive shape stored under archivedSession keys, indented
type JSONExporter struct{}

func (e *JSONExporter) Export(session *internal.ArchivedSession, w io.Writer) error {
	if err := checkSession(session); err != nil {
		return err
	}
	out := *session
	if out.ChatHistory == nil {
		out.ChatHistory = []internal.ChatMessage{}
	}
	if out.ConversationHistory == nil {
		out.ConversationHistory = []internal.ConversationTurn{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
