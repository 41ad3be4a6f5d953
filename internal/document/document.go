// Package document implements the opaque, JSON-compatible structured
// document type shared by task configuration and initial-inputs
// payloads. Canonical serialization relies on encoding/json, which
// already sorts map keys deterministically — the Go-native equivalent
// of the original implementation's canonical rapidjson writer.
package document

import (
	"encoding/json"
)

// Document is a deep-copyable, JSON-compatible value tree: nil, bool,
// float64/int64 (via json.Number avoided — plain float64, matching
// encoding/json's default decode target), string, map[string]any, or
// []any.
type Document struct {
	value any
}

// Empty returns the canonical empty document, which serializes to "{}".
func Empty() Document {
	return Document{value: map[string]any{}}
}

// FromValue wraps an already-decoded Go value (e.g. the result of
// yaml.v3 decoding into `any`) as a Document, normalizing nil to the
// empty document.
func FromValue(v any) Document {
	if v == nil {
		return Empty()
	}
	return Document{value: normalize(v)}
}

// Parse decodes canonical JSON text into a Document. A literal "null"
// normalizes to the empty document.
func Parse(data []byte) (Document, error) {
	var v any
	if len(data) == 0 {
		return Empty(), nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return Document{}, err
	}
	return FromValue(v), nil
}

// String renders the canonical serialization. An empty or nil-backed
// document renders as "{}".
func (d Document) String() string {
	if d.value == nil {
		return "{}"
	}
	out, err := json.Marshal(d.value)
	if err != nil {
		return "{}"
	}
	if string(out) == "null" {
		return "{}"
	}
	return string(out)
}

// Clone produces an independent deep copy.
func (d Document) Clone() Document {
	return Document{value: deepCopy(d.value)}
}

// Equal compares two documents via their canonical serialized form.
func (d Document) Equal(other Document) bool {
	return d.String() == other.String()
}

// Get performs single-level field access into a mapping document, used
// by the loader to read named fields. Returns false if the document is
// not a mapping or the key is absent.
func (d Document) Get(key string) (any, bool) {
	m, ok := d.value.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// IsEmpty reports whether the document serializes to "{}".
func (d Document) IsEmpty() bool {
	return d.String() == "{}"
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		// yaml.v3 decodes mappings with interface{} keys by default in
		// some paths; coerce to string keys for JSON compatibility.
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[toStringKey(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func toStringKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	out, err := json.Marshal(k)
	if err != nil {
		return ""
	}
	return string(out)
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
