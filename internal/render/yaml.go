package render

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// RenderYAML writes the document as YAML for consumption by other tools.
func RenderYAML(doc *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding changelog YAML: %w", err)
	}
	return enc.Close()
}
