package sequence

import (
	"fmt"
	"sync"
)

// Concatenated presents several providers as one virtual sequence. Regions
// are assembled from the underlying providers on demand.
type Concatenated struct {
	providers []Provider

	sizeOnce sync.Once
	size     int
}

// ConcatProviders returns the ordered join of providers.
func ConcatProviders(providers ...Provider) *Concatenated {
	return &Concatenated{providers: providers}
}

// Size returns the total length, or -1 if any part has unknown size.
func (c *Concatenated) Size() int {
	c.sizeOnce.Do(func() {
		for _, p := range c.providers {
			n := p.Size()
			if n < 0 {
				c.size = -1
				return
			}
			c.size += n
		}
	})
	return c.size
}

// Region assembles r from the parts it spans. Reversed requests are
// assembled forward and reverse-complemented once.
func (c *Concatenated) Region(r Range) (Sequence, error) {
	size := c.Size()
	if size < 0 {
		return Sequence{}, fmt.Errorf("concatenated sequence has a part of unknown size")
	}
	if r.Lower() < 0 || r.Upper() > size {
		return Sequence{}, &OutOfBoundsError{Requested: r, Available: NewRange(0, size)}
	}

	direct := r.Forward()
	parts := make([]Sequence, 0, len(c.providers))
	for _, p := range c.providers {
		n := p.Size()
		if n <= direct.Lower() {
			direct = direct.Move(-n)
			continue
		}
		target := direct
		done := direct.Upper() <= n
		if !done {
			target, _ = direct.Intersection(NewRange(0, n))
			direct = NewRange(0, direct.Upper()-n)
		}
		seq, err := p.Region(target)
		if err != nil {
			return Sequence{}, err
		}
		parts = append(parts, seq)
		if done {
			break
		}
	}

	res := Concat(parts...)
	if r.IsReverse() {
		return res.ReverseComplement(), nil
	}
	return res, nil
}
