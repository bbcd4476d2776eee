package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// MutationKind is the kind of a single edit.
type MutationKind byte

// Edit kinds, encoded by their first letter.
const (
	Substitution MutationKind = 'S'
	Deletion     MutationKind = 'D'
	Insertion    MutationKind = 'I'
)

// Mutation is one edit of a reference sequence. Position refers to the
// reference; an insertion is placed before Position.
type Mutation struct {
	Kind     MutationKind
	Position int
	From     byte // reference nucleotide, 0 for insertions
	To       byte // new nucleotide, 0 for deletions
}

func (m Mutation) String() string {
	pos := strconv.Itoa(m.Position)
	switch m.Kind {
	case Substitution:
		return "S" + string(m.From) + pos + string(m.To)
	case Deletion:
		return "D" + string(m.From) + pos
	default:
		return "I" + pos + string(m.To)
	}
}

// Mutations is an edit script ordered by position.
type Mutations struct {
	list []Mutation
}

// NewMutations validates ordering and returns the script.
func NewMutations(list ...Mutation) (Mutations, error) {
	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		if cur.Position < prev.Position {
			return Mutations{}, fmt.Errorf("mutations not sorted: %s after %s", cur, prev)
		}
		if cur.Position == prev.Position && prev.Kind != Insertion {
			return Mutations{}, fmt.Errorf("conflicting mutations at position %d", cur.Position)
		}
	}
	return Mutations{list: list}, nil
}

// ParseMutations reads the compact form, e.g. "SA12TDA7" or "DA7I15C".
func ParseMutations(s string) (Mutations, error) {
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	var list []Mutation
	for i := 0; i < len(s); {
		kind := MutationKind(s[i])
		i++
		var m Mutation
		m.Kind = kind
		switch kind {
		case Substitution, Deletion:
			if i >= len(s) {
				return Mutations{}, fmt.Errorf("truncated mutation in %q", s)
			}
			m.From = s[i]
			i++
		case Insertion:
		default:
			return Mutations{}, fmt.Errorf("unknown mutation kind %q in %q", kind, s)
		}
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i {
			return Mutations{}, fmt.Errorf("missing position in %q", s)
		}
		pos, err := strconv.Atoi(s[i:j])
		if err != nil {
			return Mutations{}, fmt.Errorf("malformed position in %q: %w", s, err)
		}
		m.Position = pos
		i = j
		if kind != Deletion {
			if i >= len(s) {
				return Mutations{}, fmt.Errorf("truncated mutation in %q", s)
			}
			m.To = s[i]
			i++
		}
		list = append(list, m)
	}
	return NewMutations(list...)
}

// Len returns the number of edits.
func (m Mutations) Len() int { return len(m.list) }

// IsEmpty reports whether there are no edits.
func (m Mutations) IsEmpty() bool { return len(m.list) == 0 }

// List returns a copy of the edits.
func (m Mutations) List() []Mutation { return append([]Mutation(nil), m.list...) }

// String encodes the script in compact form.
func (m Mutations) String() string {
	var b strings.Builder
	for _, mut := range m.list {
		b.WriteString(mut.String())
	}
	return b.String()
}

// ConvertPosition projects a reference position onto the mutated sequence.
// A position removed by a deletion yields -(p+1), where p is the position
// the deletion starts at in the mutated sequence.
func (m Mutations) ConvertPosition(pos int) int {
	res := pos
	for _, mut := range m.list {
		if mut.Position > pos {
			break
		}
		switch mut.Kind {
		case Deletion:
			if mut.Position == pos {
				return -res - 1
			}
			res--
		case Insertion:
			res++
		}
	}
	return res
}

// Apply returns the mutated copy of s.
func (m Mutations) Apply(s Sequence) (Sequence, error) {
	src := []byte(s.String())
	out := make([]byte, 0, len(src)+len(m.list))
	last := 0
	for _, mut := range m.list {
		if mut.Position > len(src) || (mut.Kind != Insertion && mut.Position >= len(src)) {
			return Sequence{}, fmt.Errorf("mutation %s outside of sequence of length %d", mut, len(src))
		}
		out = append(out, src[last:mut.Position]...)
		last = mut.Position
		switch mut.Kind {
		case Substitution:
			if src[mut.Position] != mut.From {
				return Sequence{}, fmt.Errorf("mutation %s does not match reference nucleotide %q", mut, src[mut.Position])
			}
			out = append(out, mut.To)
			last++
		case Deletion:
			if src[mut.Position] != mut.From {
				return Sequence{}, fmt.Errorf("mutation %s does not match reference nucleotide %q", mut, src[mut.Position])
			}
			last++
		case Insertion:
			out = append(out, mut.To)
		}
	}
	out = append(out, src[last:]...)
	return Parse(string(out))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mutations) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mutations) UnmarshalText(text []byte) error {
	v, err := ParseMutations(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
