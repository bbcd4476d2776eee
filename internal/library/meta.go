package library

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Meta is free-form key/value information attached to genes and
// libraries. A key with a single value is written as a plain string.
type Meta map[string][]string

// Values returns all values stored under key.
func (m Meta) Values(key string) []string { return m[key] }

// Value returns the single value stored under key, "" if there is none.
func (m Meta) Value(key string) (string, error) {
	vals := m[key]
	switch len(vals) {
	case 0:
		return "", nil
	case 1:
		return vals[0], nil
	default:
		return "", fmt.Errorf("more than one value associated with the key %q", key)
	}
}

// Set replaces all values of key.
func (m Meta) Set(key, value string) { m[key] = []string{value} }

// Add appends value to key keeping the values sorted and unique.
func (m Meta) Add(key, value string) {
	vals := m[key]
	i, found := slices.BinarySearch(vals, value)
	if found {
		return
	}
	m[key] = slices.Insert(vals, i, value)
}

// Clone returns a deep copy.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	c := make(Meta, len(m))
	for k, v := range m {
		c[k] = slices.Clone(v)
	}
	return c
}

func (m Meta) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode meta: %w", err)
	}
	res := make(Meta, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			res[k] = []string{s}
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err != nil {
			return fmt.Errorf("decode meta %q: %w", k, err)
		}
		res[k] = list
	}
	*m = res
	return nil
}
