package models

import (
	"bytes"
	"encoding/json"
	"io"
)

// Fields is the field set of a create or update request, keyed by JSON field
// name. Values are decoded JSON values (numbers as json.Number); a nil value
// clears the column.
type Fields map[string]any

// DecodeFields parses a JSON object body. Anything that is not a single JSON
// object yields an empty field set, so a malformed body behaves like an empty
// one. The second return value reports whether the body was usable.
func DecodeFields(body []byte) (Fields, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Fields{}, true
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return Fields{}, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return Fields{}, false
	}
	if m == nil {
		return Fields{}, true
	}
	return Fields(m), true
}
