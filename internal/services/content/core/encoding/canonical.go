// Package encoding provides canonical serialisation and content addressing for
// dimension space points and published events.
package encoding

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalJSON produces deterministic JSON output inspired by RFC 8785 (JCS):
// object keys sorted lexicographically, no insignificant whitespace, and no
// HTML escaping.
func CanonicalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	out, err := marshalWithoutHTMLEscape(canonicalize(raw))
	if err != nil {
		return nil, fmt.Errorf("encode canonical: %w", err)
	}
	return out, nil
}

// ContentHash computes a SHA-256 hash of the canonical JSON representation,
// truncated to 128 bits (32 hex characters).
func ContentHash(v any) (string, error) {
	canonical, err := CanonicalJSON(v)
	if err != nil {
		return "", fmt.Errorf("canonical json: %w", err)
	}
	return truncatedHash(canonical), nil
}

// CoordinatesHash hashes a flat string map in canonical form. It is the
// identity of a dimension space point: two coordinate maps hash equally iff
// they hold the same key/value pairs.
func CoordinatesHash(coordinates map[string]string) string {
	return truncatedHash(CoordinatesJSON(coordinates))
}

// CoordinatesJSON renders a flat string map as canonical JSON.
func CoordinatesJSON(coordinates map[string]string) []byte {
	keys := make([]string, 0, len(coordinates))
	for k := range coordinates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, k)
		buf.WriteByte(':')
		writeString(&buf, coordinates[k])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func truncatedHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// writeString appends a JSON string literal. Marshalling a Go string cannot
// fail, so the error is dropped.
func writeString(buf *bytes.Buffer, s string) {
	encoded, _ := marshalWithoutHTMLEscape(s)
	buf.Write(encoded)
}

func canonicalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		values := make(map[string]any, len(val))
		for _, k := range keys {
			values[k] = canonicalize(val[k])
		}
		return orderedMap{keys: keys, values: values}

	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = canonicalize(item)
		}
		return result

	default:
		return v
	}
}

// orderedMap marshals map keys in sorted order.
type orderedMap struct {
	keys   []string
	values map[string]any
}

// MarshalJSON implements json.Marshaler with sorted keys.
func (o orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := marshalWithoutHTMLEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		valJSON, err := marshalWithoutHTMLEscape(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalWithoutHTMLEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
