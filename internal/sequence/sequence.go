package sequence

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
)

// Alphabet is the nucleotide alphabet sequences are validated against.
// It covers IUPAC ambiguity codes.
var Alphabet = alphabet.DNAredundant

// Sequence is an immutable upper-case nucleotide sequence.
type Sequence struct {
	letters alphabet.Letters
}

// Parse validates s and returns it as an upper-case Sequence.
func Parse(s string) (Sequence, error) {
	b := bytes.ToUpper([]byte(s))
	for i, c := range b {
		if !Alphabet.IsValid(alphabet.Letter(c)) {
			return Sequence{}, fmt.Errorf("invalid nucleotide %q at position %d", c, i)
		}
	}
	return Sequence{letters: alphabet.BytesToLetters(b)}, nil
}

// MustParse is Parse that panics on error.
func MustParse(s string) Sequence {
	seq, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return seq
}

// Len returns the number of nucleotides.
func (s Sequence) Len() int { return len(s.letters) }

// IsEmpty reports whether the sequence has no nucleotides.
func (s Sequence) IsEmpty() bool { return len(s.letters) == 0 }

// At returns the nucleotide at position i.
func (s Sequence) At(i int) byte { return byte(s.letters[i]) }

// Letters returns a copy of the sequence as biogo letters.
func (s Sequence) Letters() alphabet.Letters { return slices.Clone(s.letters) }

// String returns the nucleotides as text.
func (s Sequence) String() string { return string(alphabet.LettersToBytes(s.letters)) }

// Equal reports whether both sequences hold the same nucleotides.
func (s Sequence) Equal(o Sequence) bool { return slices.Equal(s.letters, o.letters) }

// Slice returns nucleotides [from, to). The result shares memory with s.
func (s Sequence) Slice(from, to int) Sequence {
	return Sequence{letters: s.letters[from:to:to]}
}

// ReverseComplement returns the sequence of the complementary strand.
func (s Sequence) ReverseComplement() Sequence {
	ls := linear.NewSeq("", slices.Clone(s.letters), Alphabet)
	ls.RevComp()
	return Sequence{letters: ls.Seq}
}

// Region returns the part of s covered by r; reversed ranges yield the
// reverse complement.
func (s Sequence) Region(r Range) Sequence {
	res := s.Slice(r.Lower(), r.Upper())
	if r.IsReverse() {
		return res.ReverseComplement()
	}
	return res
}

// Concat joins sequences in order.
func Concat(parts ...Sequence) Sequence {
	n := 0
	for _, p := range parts {
		n += p.Len()
	}
	letters := make(alphabet.Letters, 0, n)
	for _, p := range parts {
		letters = append(letters, p.letters...)
	}
	return Sequence{letters: letters}
}

// MarshalText implements encoding.TextMarshaler.
func (s Sequence) MarshalText() ([]byte, error) {
	return alphabet.LettersToBytes(s.letters), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sequence) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
