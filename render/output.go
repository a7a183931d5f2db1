package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/giygas/druginfo/formatter"
	"gopkg.in/yaml.v3"
)

// Output formats for one-shot mode
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteDocument writes doc to w as styled text, JSON or YAML
func WriteDocument(w io.Writer, doc formatter.Document, format string, width int) error {
	var out []byte
	switch format {
	case FormatText, "":
		out = []byte(NewRenderer(width).RenderDocument(doc) + "\n")
	case FormatJSON:
		data, err := json.MarshalIndent(doc.View(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode document as json: %w", err)
		}
		out = append(data, '\n')
	case FormatYAML:
		data, err := yaml.Marshal(doc.View())
		if err != nil {
			return fmt.Errorf("failed to encode document as yaml: %w", err)
		}
		out = data
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, FormatText, FormatJSON, FormatYAML)
	}

	_, err := w.Write(out)
	return err
}
