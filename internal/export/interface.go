package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/tutor-assistant/internal"
)

// Exporter writes one archived or live session in a file format
type Exporter interface {
	Export(session *internal.ArchivedSession, w io.Writer) error
	Extension() string
}

var exporters = map[string]func() Exporter{
	"jsonl":    func() Exporter { return &JSONLExporter{} },
	"md":       func() Exporter { return &MarkdownExporter{} },
	"markdown": func() Exporter { return &MarkdownExporter{} },
	"yaml":     func() Exporter { return &YAMLExporter{} },
	"yml":      func() Exporter { return &YAMLExporter{} },
	"json":     func() Exporter { return &JSONExporter{} },
}

// Formats lists the canonical format names accepted by NewExporter
func Formats() []string {
	return []string{"jsonl", "md", "yaml", "json"}
}

// NewExporter returns the exporter for format. Names are case-insensitive.
func NewExporter(format string) (Exporter, error) {
	build, ok := exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	return build(), nil
}

func checkSession(session *internal.ArchivedSession) error {
	if session == nil || session.SessionID == "" {
		return fmt.Errorf("no session to export")
	}
	return nil
}
