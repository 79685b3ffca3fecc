package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Entry is a single key/value pair of an OrderedMap
type Entry[V any] struct {
	Key   string
	Value V
}

// OrderedMap is a string-keyed mapping that remembers insertion order.
// It encodes to a JSON object with keys in that order, and decodes JSON objects
// and YAML mappings keeping the document order.
type OrderedMap[V any] struct {
	entries []Entry[V]
}

// Counts maps a category or quality grade to a number of pieces
type Counts = OrderedMap[int]

// Amounts maps an expense category or quality grade to a decimal amount
type Amounts = OrderedMap[decimal.Decimal]

// NewOrderedMap builds an OrderedMap from entries; later duplicates replace earlier values
func NewOrderedMap[V any](entries ...Entry[V]) OrderedMap[V] {
	var m OrderedMap[V]
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Get returns the value stored for key
func (m OrderedMap[V]) Get(key string) (V, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// Set stores value under key, keeping the original position of an existing key
func (m *OrderedMap[V]) Set(key string, value V) {
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, Entry[V]{Key: key, Value: value})
}

// Entries returns a copy of the pairs in insertion order
func (m OrderedMap[V]) Entries() []Entry[V] {
	out := make([]Entry[V], len(m.entries))
	copy(out, m.entries)
	return out
}

// Keys returns the keys in insertion order
func (m OrderedMap[V]) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Len returns the number of keys
func (m OrderedMap[V]) Len() int {
	return len(m.entries)
}

// Merge returns a copy of m where every key of update overrides (or is appended to) m
func (m OrderedMap[V]) Merge(update OrderedMap[V]) OrderedMap[V] {
	merged := OrderedMap[V]{entries: m.Entries()}
	for _, e := range update.entries {
		merged.Set(e.Key, e.Value)
	}
	return merged
}

// MarshalJSON encodes the map as a JSON object in insertion order
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode value for %q: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the document key order.
// A JSON null leaves the map empty.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid JSON object")
	}
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		m.entries = nil
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("expected JSON object, got %s", result.Type)
	}

	entries := make([]Entry[V], 0)
	var decodeErr error
	result.ForEach(func(key, value gjson.Result) bool {
		var v V
		if err := json.Unmarshal([]byte(value.Raw), &v); err != nil {
			decodeErr = fmt.Errorf("invalid value for %q: %w", key.String(), err)
			return false
		}
		entries = append(entries, Entry[V]{Key: key.String(), Value: v})
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}

	m.entries = nil
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return nil
}

// UnmarshalYAML decodes a YAML mapping keeping the document key order
func (m *OrderedMap[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		m.entries = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	m.entries = nil
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var v V
		if err := valueNode.Decode(&v); err != nil {
			return fmt.Errorf("line %d: invalid value for %q: %w", valueNode.Line, keyNode.Value, err)
		}
		m.Set(keyNode.Value, v)
	}
	return nil
}

// TotalPieces returns the sum of all counts
func TotalPieces(c Counts) int {
	total := 0
	for _, e := range c.entries {
		total += e.Value
	}
	return total
}

// TotalAmount returns the sum of all amounts
func TotalAmount(a Amounts) decimal.Decimal {
	total := decimal.Zero
	for _, e := range a.entries {
		total = total.Add(e.Value)
	}
	return total
}
