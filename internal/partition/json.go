package partition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/inodb/vibe-repseq/internal/anchor"
)

// Map returns the defined anchors keyed by point name.
func (t Table) Map() map[string]int {
	m := make(map[string]int, len(t.points))
	for i, pos := range t.points {
		if pos >= 0 {
			m[t.layout.pointAt(i).Encode(true)] = pos
		}
	}
	return m
}

// FromMap builds a table from anchor names and positions.
func FromMap(layout Layout, m map[string]int) (Table, error) {
	b := NewBuilder(layout)
	for name, pos := range m {
		p, err := anchor.ParsePoint(name)
		if err != nil {
			return Table{}, err
		}
		if err := b.Set(p, pos); err != nil {
			return Table{}, err
		}
	}
	return b.Build(), nil
}

// MarshalJSON writes the defined anchors as an object in germline order.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	for i, pos := range t.points {
		if pos < 0 {
			continue
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		buf.WriteString(strconv.Quote(t.layout.pointAt(i).Encode(true)))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(pos))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an anchor object. The layout of the receiver is kept,
// so decode into a table created with the desired layout; the zero Table
// is basic.
func (t *Table) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse anchor points: %w", err)
	}
	v, err := FromMap(t.layout, m)
	if err != nil {
		return fmt.Errorf("parse anchor points: %w", err)
	}
	*t = v
	return nil
}

// NewExtendedTable returns an empty extended table, mostly useful as a
// decoding target.
func NewExtendedTable() Table {
	return NewBuilder(Extended).Build()
}
