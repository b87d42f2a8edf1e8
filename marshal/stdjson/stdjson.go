// Package stdjson provides an elster.Marshaler backed by encoding/json.
package stdjson

import (
	"bytes"
	"encoding/json"

	"github.com/reoring/elster"
)

// Marshaler returns an elster.Marshaler backed by encoding/json. HTML
// characters are escaped, as json.Marshal does.
func Marshaler() elster.Marshaler { return marshaler{escapeHTML: true} }

// MarshalerNoHTMLEscape is like Marshaler but leaves <, > and & as-is.
func MarshalerNoHTMLEscape() elster.Marshaler { return marshaler{} }

type marshaler struct{ escapeHTML bool }

func (m marshaler) Marshal(v any) ([]byte, error) {
	if m.escapeHTML {
		return json.Marshal(v)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder terminates each value with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func (m marshaler) Name() string {
	if m.escapeHTML {
		return "encoding/json"
	}
	return "encoding/json (no html escape)"
}
