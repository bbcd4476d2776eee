package partition

import (
	"errors"

	"github.com/inodb/vibe-repseq/internal/anchor"
	"github.com/inodb/vibe-repseq/internal/feature"
	"github.com/inodb/vibe-repseq/internal/sequence"
)

// ErrInconsistentPartition is returned when consecutive ranges of a feature
// overlap in the same direction.
var ErrInconsistentPartition = errors.New("inconsistent feature partition")

// IsAvailable reports whether p has a defined position.
func (t Table) IsAvailable(p anchor.ReferencePoint) bool { return t.Position(p) >= 0 }

// IsFeatureAvailable reports whether every boundary of f is defined.
func (t Table) IsFeatureAvailable(f *feature.GeneFeature) bool {
	for _, r := range f.Ranges() {
		if !t.IsAvailable(r.Begin) || !t.IsAvailable(r.End) {
			return false
		}
	}
	return true
}

func (t Table) rangeOf(r feature.ReferenceRange) (sequence.Range, bool) {
	begin := t.Position(r.Begin)
	if begin < 0 {
		return sequence.Range{}, false
	}
	end := t.Position(r.End)
	if end < 0 {
		return sequence.Range{}, false
	}
	return sequence.NewRange(begin, end), true
}

// Range returns the sequence range of a single-range feature. ok is false
// when a boundary is undefined or f is composite.
func (t Table) Range(f *feature.GeneFeature) (r sequence.Range, ok bool) {
	if f == nil || f.IsComposite() {
		return sequence.Range{}, false
	}
	return t.rangeOf(f.Range(0))
}

// Ranges returns one sequence range per component of f, or nil if any
// boundary is undefined.
func (t Table) Ranges(f *feature.GeneFeature) ([]sequence.Range, error) {
	res := make([]sequence.Range, f.Size())
	for i := range res {
		r, ok := t.rangeOf(f.Range(i))
		if !ok {
			return nil, nil
		}
		if i > 0 && res[i-1].Intersects(r) && res[i-1].IsReverse() == r.IsReverse() {
			return nil, ErrInconsistentPartition
		}
		res[i] = r
	}
	return res, nil
}

// Length returns the total length of f, -1 if unavailable.
func (t Table) Length(f *feature.GeneFeature) int {
	n := 0
	for _, rr := range f.Ranges() {
		r, ok := t.rangeOf(rr)
		if !ok {
			return -1
		}
		n += r.Length()
	}
	return n
}

// RelativeRange projects sub into the concatenated coordinates of f. The
// components of sub must follow the components of f: the first may start
// anywhere inside a component, the inner ones must match exactly and the
// last may end anywhere. ok is false otherwise, and for an inconsistent
// partition of either feature.
func (t Table) RelativeRange(f, sub *feature.GeneFeature) (r sequence.Range, ok bool) {
	ranges, err := t.Ranges(f)
	if ranges == nil || err != nil {
		return sequence.Range{}, false
	}
	subRanges, err := t.Ranges(sub)
	if subRanges == nil || err != nil {
		return sequence.Range{}, false
	}

	const (
		before = iota
		onBegin
		inside
	)
	offset, begin, end := 0, -1, -1
	state, k := before, 0
	for _, rg := range ranges {
		cur := subRanges[k]
		if state == before && rg.ContainsBoundary(cur.From) && cur.HasSameDirection(rg) {
			state = onBegin
			begin = offset + rg.RelativePosition(cur.From)
		}
		if state != before && k == len(subRanges)-1 {
			if !rg.ContainsBoundary(cur.To) {
				return sequence.Range{}, false
			}
			end = offset + rg.RelativePosition(cur.To)
			break
		}
		switch state {
		case onBegin:
			if cur.To != rg.To {
				return sequence.Range{}, false
			}
			state = inside
			k++
		case inside:
			if cur != rg {
				return sequence.Range{}, false
			}
			k++
		}
		offset += rg.Length()
	}
	if begin < 0 || end < 0 {
		return sequence.Range{}, false
	}
	return sequence.NewRange(begin, end), true
}

// RelativePosition returns the position of p in the concatenated
// coordinates of f, -1 if p is undefined or outside of f. Reversed
// components of f are skipped.
func (t Table) RelativePosition(f *feature.GeneFeature, p anchor.ReferencePoint) int {
	abs := t.Position(p)
	if abs < 0 {
		return -1
	}
	ranges, err := t.Ranges(f)
	if ranges == nil || err != nil {
		return -1
	}
	rel := 0
	for i, r := range ranges {
		if !f.Range(i).IsReversed() && r.ContainsBoundary(abs) {
			return rel + r.RelativePosition(abs)
		}
		rel += r.Length()
	}
	return -1
}

// AbsolutePosition maps a position in the concatenated coordinates of f
// back to the sequence, -1 if it falls outside of f.
func (t Table) AbsolutePosition(f *feature.GeneFeature, pos int) int {
	if pos < 0 {
		return -1
	}
	ranges, err := t.Ranges(f)
	if ranges == nil || err != nil {
		return -1
	}
	for _, r := range ranges {
		if pos > r.Length() {
			pos -= r.Length()
			continue
		}
		return r.AbsolutePosition(pos)
	}
	return -1
}
