package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderJSON writes v as indented JSON. HTML escaping is off so filter
// queries keep their "&" terms readable.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json render: %w", err)
	}
	return nil
}
