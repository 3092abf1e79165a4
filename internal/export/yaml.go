package export

import (
	"io"

	"github.com/iksnae/tutor-assistant/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes a session as one YAML document headed by a comment
type YAMLExporter struct{}

func (e *YAMLExporter) Export(session *internal.ArchivedSession, w io.Writer) error {
	if err := checkSession(session); err != nil {
		return err
	}

	var body yaml.Node
	if err := body.Encode(session); err != nil {
		return err
	}
	doc := yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "tutor-assistant session " + session.SessionID,
		Content:     []*yaml.Node{&body},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
