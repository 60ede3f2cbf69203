package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// field is one top-level member of a raw payload.
type field struct {
	key string
	raw json.RawMessage
}

// payload is a raw JSON object decoded in source order.
type payload struct {
	fields []field
	index  map[string]int
}

// decodePayload reads the top-level members of a JSON object without
// reordering them. A repeated key keeps its first position and its last value.
func decodePayload(data []byte) (*payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidPayload)
	}

	p := &payload{index: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidPayload, tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidPayload, key, err)
		}
		if i, ok := p.index[key]; ok {
			p.fields[i].raw = raw
			continue
		}
		p.index[key] = len(p.fields)
		p.fields = append(p.fields, field{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidPayload)
	}
	return p, nil
}

// get returns the raw value of key. Null values count as absent.
func (p *payload) get(key string) (json.RawMessage, bool) {
	i, ok := p.index[key]
	if !ok || isNull(p.fields[i].raw) {
		return nil, false
	}
	return p.fields[i].raw, true
}

// stringField returns key as a string. A non-string value is an error.
func (p *payload) stringField(key string) (*string, error) {
	raw, ok := p.get(key)
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, invalidField(key, "expected a string")
	}
	return &s, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// Kind names the JSON type of raw: object, array, string, number, bool or null.
func Kind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "null"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// Shape lists the top-level keys of a JSON object with their kinds, in
// source order. It is used by the debug trace.
func Shape(data []byte) ([]KeyKind, error) {
	p, err := decodePayload(data)
	if err != nil {
		return nil, err
	}
	out := make([]KeyKind, len(p.fields))
	for i, f := range p.fields {
		out[i] = KeyKind{Key: f.key, Kind: Kind(f.raw)}
	}
	return out, nil
}

// KeyKind is one entry of a payload shape.
type KeyKind struct {
	Key  string
	Kind string
}
