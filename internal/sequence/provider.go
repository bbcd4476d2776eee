package sequence

import (
	"fmt"
)

// Provider gives access to regions of a possibly lazily loaded sequence.
type Provider interface {
	// Size returns the sequence length, or -1 when it is not known.
	Size() int
	// Region returns the nucleotides covered by r. A reversed range yields
	// the reverse complement.
	Region(r Range) (Sequence, error)
}

// OutOfBoundsError is returned when a requested region extends beyond the
// part of the sequence a provider can serve.
type OutOfBoundsError struct {
	Requested Range
	Available Range
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("region %s is out of available range %s", e.Requested, e.Available)
}

// NoSequenceError is returned by providers that have no backend for the
// requested region.
type NoSequenceError struct {
	Source    string
	Requested Range
}

func (e *NoSequenceError) Error() string {
	return fmt.Sprintf("can't get sequence for %s, region %s", e.Source, e.Requested)
}

// Fixed serves regions of an in-memory sequence.
type Fixed struct {
	seq Sequence
}

// FromSequence wraps seq as a Provider.
func FromSequence(seq Sequence) *Fixed { return &Fixed{seq: seq} }

// Size returns the sequence length.
func (f *Fixed) Size() int { return f.seq.Len() }

// Region slices the wrapped sequence.
func (f *Fixed) Region(r Range) (Sequence, error) {
	if r.Lower() < 0 || r.Upper() > f.seq.Len() {
		return Sequence{}, &OutOfBoundsError{Requested: r, Available: NewRange(0, f.seq.Len())}
	}
	return f.seq.Region(r), nil
}

// Sequence returns the wrapped sequence.
func (f *Fixed) Sequence() Sequence { return f.seq }
