// Package jsondoc implements reading and writing of nested JSON translation
// documents with preserved key order.
//
// A document is a tree of JSON objects whose leaves are strings (the
// translatable texts) or other scalar values. Arrays are never descended
// into; an array value is carried through as an opaque leaf. Key order is
// preserved on parse and reproduced on write, so re-writing an untouched
// document is a semantic no-op.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Object is a JSON object with ordered keys. Values are either string
// leaves, *Object subtrees, or json.RawMessage for opaque scalars and
// arrays.
type Object struct {
	keys   []string
	values map[string]any
}

// New returns an empty Object.
func New() *Object {
	return &Object{values: make(map[string]any)}
}

// ParseFile reads and parses a JSON document from disk.
func ParseFile(path string) (*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse parses JSON data into an ordered Object. The top-level value must
// be a JSON object.
func Parse(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	obj, err := parseObject(dec)
	if err != nil {
		return nil, err
	}
	// Trailing garbage after the closing brace is malformed input.
	if t, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("trailing data: %w", err)
		}
		return nil, fmt.Errorf("unexpected trailing token %v", t)
	}
	return obj, nil
}

// parseObject consumes one JSON object from the decoder, preserving key
// order and recursing into nested objects.
func parseObject(dec *json.Decoder) (*Object, error) {
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected {, got %v", t)
	}

	obj := New()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		// Grab the raw value, then decide whether to recurse.
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}

		val, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}
		obj.Set(key, val)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

// decodeValue turns a raw JSON value into a string leaf, a nested *Object,
// or an opaque compacted raw leaf (numbers, booleans, null, arrays).
func decodeValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty value")
	}
	switch trimmed[0] {
	case '{':
		return Parse(trimmed)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return json.RawMessage(buf.Bytes()), nil
	}
}

// Keys returns the object's keys in their original order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Get returns the value for a key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores a value for a key, appending the key if it is new. Existing
// keys keep their position.
func (o *Object) Set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Equal reports whether two objects have the same keys and values,
// ignoring key order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for _, k := range o.keys {
		av := o.values[k]
		bv, ok := other.values[k]
		if !ok {
			return false
		}
		if !valueEqual(av, bv) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bs, ok := b.(string)
		return ok && av == bs
	case *Object:
		bo, ok := b.(*Object)
		return ok && av.Equal(bo)
	case json.RawMessage:
		br, ok := b.(json.RawMessage)
		return ok && bytes.Equal(av, br)
	default:
		return false
	}
}

// WriteFile writes the document to disk with 4-space indentation,
// creating parent directories as needed.
func (o *Object) WriteFile(path string) error {
	data, err := o.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal produces the JSON output with 4-space indentation, keys in
// their stored order, and a trailing newline.
func (o *Object) Marshal() ([]byte, error) {
	var b strings.Builder
	if err := o.write(&b, 0); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (o *Object) write(b *strings.Builder, depth int) error {
	if o.Len() == 0 {
		b.WriteString("{}")
		return nil
	}

	indent := strings.Repeat("    ", depth+1)
	b.WriteString("{\n")
	for i, k := range o.keys {
		b.WriteString(indent)
		b.WriteString(jsonString(k))
		b.WriteString(": ")

		switch v := o.values[k].(type) {
		case string:
			b.WriteString(jsonString(v))
		case *Object:
			if err := v.write(b, depth+1); err != nil {
				return err
			}
		case json.RawMessage:
			b.Write(v)
		default:
			return fmt.Errorf("key %q: unsupported value type %T", k, v)
		}

		if i < o.Len()-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteByte('}')
	return nil
}

// jsonString returns a JSON-encoded string value (with proper escaping).
func jsonString(s string) string {
	return strconv.Quote(s)
}
