package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Field is one labelled value of a command result.
type Field struct {
	Key   string
	Label string
	Value string
}

// Fields is an ordered result. Text output is aligned "Label: value"
// lines; JSON output is an object keyed by Key.
type Fields []Field

// Render writes the aligned text form.
func (fs Fields) Render(w io.Writer) error {
	width := 0
	for _, f := range fs {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}
	for _, f := range fs {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width+1, f.Label+":", f.Value); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes the fields as an object keyed by Key.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			sb.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		sb.Write(k)
		sb.WriteByte(':')
		sb.Write(v)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}
