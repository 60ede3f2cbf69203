package models

import (
	"bytes"
	"encoding/json"
)

// Property is one class-specific extension field. Value is always valid,
// compact JSON.
type Property struct {
	Key   string
	Value json.RawMessage
}

// Properties is an insertion-ordered string to JSON value map. The zero
// value is empty and ready to use.
type Properties struct {
	entries []Property
	index   map[string]int
}

// Set stores value under key. Setting an existing key replaces its value
// but keeps its original position.
func (p *Properties) Set(key string, value json.RawMessage) {
	value = compact(value)
	if i, ok := p.index[key]; ok {
		p.entries[i].Value = value
		return
	}
	if p.index == nil {
		p.index = make(map[string]int)
	}
	p.index[key] = len(p.entries)
	p.entries = append(p.entries, Property{Key: key, Value: value})
}

// SetString stores a JSON string value.
func (p *Properties) SetString(key, value string) {
	data, _ := json.Marshal(value)
	p.Set(key, data)
}

// Get returns the value stored under key.
func (p Properties) Get(key string) (json.RawMessage, bool) {
	i, ok := p.index[key]
	if !ok {
		return nil, false
	}
	return p.entries[i].Value, true
}

// Len returns the number of properties.
func (p Properties) Len() int {
	return len(p.entries)
}

// Keys returns the keys in insertion order.
func (p Properties) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the properties in insertion order.
func (p Properties) Entries() []Property {
	out := make([]Property, len(p.entries))
	copy(out, p.entries)
	return out
}

// MarshalJSON writes the properties as a JSON object in insertion order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(e.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func compact(value json.RawMessage) json.RawMessage {
	if len(value) == 0 {
		return json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		// Not JSON; keep it as a string so output stays valid.
		s, _ := json.Marshal(string(value))
		return s
	}
	return buf.Bytes()
}
