package sequence

import "fmt"

// Reversed views a provider of known size from the opposite strand.
type Reversed struct {
	inner Provider
	size  int
}

// ReverseProvider returns the reverse-complement view of p. The size of p
// must be known.
func ReverseProvider(p Provider) (*Reversed, error) {
	n := p.Size()
	if n < 0 {
		return nil, fmt.Errorf("can't reverse provider of unknown size")
	}
	return &Reversed{inner: p, size: n}, nil
}

// Size returns the size of the underlying provider.
func (r *Reversed) Size() int { return r.size }

// Region maps r onto the opposite strand of the underlying provider.
func (r *Reversed) Region(rg Range) (Sequence, error) {
	return r.inner.Region(Range{From: r.size - rg.From, To: r.size - rg.To})
}
