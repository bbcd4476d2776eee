// Package feature implements gene features: ordered lists of directed
// intervals between reference points, with merge, intersection, coding
// sub-feature extraction and a compact text notation.
package feature

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/inodb/vibe-repseq/internal/anchor"
)

// ErrOverlap is returned when two component ranges overlap and cannot be merged.
var ErrOverlap = errors.New("intersecting ranges")

// ReferenceRange is one directed span between two reference points. It is
// reversed when Begin is ordered after End.
type ReferenceRange struct {
	Begin anchor.ReferencePoint
	End   anchor.ReferencePoint
}

// IsReversed reports whether the range is traversed antisense.
func (r ReferenceRange) IsReversed() bool { return r.Begin.Compare(r.End) > 0 }

// Reverse swaps begin and end.
func (r ReferenceRange) Reverse() ReferenceRange { return ReferenceRange{Begin: r.End, End: r.Begin} }

// Left returns the boundary ordered first.
func (r ReferenceRange) Left() anchor.ReferencePoint {
	if r.IsReversed() {
		return r.End
	}
	return r.Begin
}

// Right returns the boundary ordered last.
func (r ReferenceRange) Right() anchor.ReferencePoint {
	if r.IsReversed() {
		return r.Begin
	}
	return r.End
}

// HasOffsets reports whether either boundary carries an offset.
func (r ReferenceRange) HasOffsets() bool { return r.Begin.HasOffset() || r.End.HasOffset() }

// WithoutOffsets strips both offsets.
func (r ReferenceRange) WithoutOffsets() ReferenceRange {
	return ReferenceRange{Begin: r.Begin.WithoutOffset(), End: r.End.WithoutOffset()}
}

// Contains reports whether o lies within r.
func (r ReferenceRange) Contains(o ReferenceRange) bool {
	return o.Begin.Compare(r.Begin) >= 0 && o.End.Compare(r.End) <= 0
}

// GeneType returns the gene type shared by both boundaries, or anchor.Unknown.
func (r ReferenceRange) GeneType() anchor.GeneType {
	gt := r.Begin.GeneType()
	if gt != r.End.GeneType() {
		return anchor.Unknown
	}
	return gt
}

// IntermediatePoints lists the germline anchors lying inside the range, in
// order, preceded by Begin and followed by End when they carry offsets.
func (r ReferenceRange) IntermediatePoints() []anchor.ReferencePoint {
	var points []anchor.ReferencePoint
	if r.Begin.HasOffset() {
		points = append(points, r.Begin)
	}
	for i := 0; i < anchor.PureCount; i++ {
		p := anchor.ByIndex(i)
		if p.Compare(r.Begin) < 0 || p.Compare(r.End) > 0 {
			continue
		}
		points = append(points, p)
	}
	if r.End.HasOffset() {
		points = append(points, r.End)
	}
	return points
}

// BoundaryAndIntermediatePoints is IntermediatePoints with Begin and End
// always present at both ends.
func (r ReferenceRange) BoundaryAndIntermediatePoints() []anchor.ReferencePoint {
	points := r.IntermediatePoints()
	if len(points) == 0 || points[0] != r.Begin {
		points = append([]anchor.ReferencePoint{r.Begin}, points...)
	}
	if points[len(points)-1] != r.End {
		points = append(points, r.End)
	}
	return points
}

func (r ReferenceRange) String() string {
	return "[" + r.Begin.Encode(true) + ", " + r.End.Encode(false) + "]"
}

// GeneFeature is an immutable, sorted list of pairwise non-overlapping
// reference ranges. Adjacent ranges of the same orientation are merged.
type GeneFeature struct {
	regions []ReferenceRange
}

// New returns a single-range feature.
func New(begin, end anchor.ReferencePoint) *GeneFeature {
	return &GeneFeature{regions: []ReferenceRange{{Begin: begin, End: end}}}
}

// AroundPoint returns the single range [p+left, p+right].
func AroundPoint(p anchor.ReferencePoint, left, right int) *GeneFeature {
	return New(p.Move(left), p.Move(right))
}

// WithOffsets shifts the first boundary of f by left and its last boundary by right.
func WithOffsets(f *GeneFeature, left, right int) *GeneFeature {
	regions := slices.Clone(f.regions)
	regions[0].Begin = regions[0].Begin.Move(left)
	last := len(regions) - 1
	regions[last].End = regions[last].End.Move(right)
	return &GeneFeature{regions: regions}
}

// Merge combines the ranges of all features, sorting them by left boundary
// and merging adjacent ranges of the same orientation.
func Merge(features ...*GeneFeature) (*GeneFeature, error) {
	var ranges []ReferenceRange
	for _, f := range features {
		if f == nil {
			continue
		}
		ranges = append(ranges, f.regions...)
	}
	if len(ranges) == 0 {
		return nil, errors.New("no ranges to merge")
	}
	merged, err := merge(ranges)
	if err != nil {
		return nil, err
	}
	return &GeneFeature{regions: merged}, nil
}

// MustMerge is Merge that panics on error. It is meant for package-level
// feature definitions.
func MustMerge(features ...*GeneFeature) *GeneFeature {
	f, err := Merge(features...)
	if err != nil {
		panic(err)
	}
	return f
}

func merge(ranges []ReferenceRange) ([]ReferenceRange, error) {
	if len(ranges) == 1 {
		return ranges, nil
	}
	slices.SortStableFunc(ranges, func(a, b ReferenceRange) int {
		return a.Left().Compare(b.Left())
	})
	result := make([]ReferenceRange, 0, len(ranges))
	prev := ranges[0]
	for _, cur := range ranges[1:] {
		if cur.Begin.Compare(prev.End) < 0 {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlap, cur, prev)
		}
		if cur.Begin == prev.End && cur.IsReversed() == prev.IsReversed() {
			prev = ReferenceRange{Begin: prev.Begin, End: cur.End}
			continue
		}
		result = append(result, prev)
		prev = cur
	}
	return append(result, prev), nil
}

// Append merges g into f.
func (f *GeneFeature) Append(g *GeneFeature) (*GeneFeature, error) {
	return Merge(f, g)
}

// Reverse flips the order of the ranges and the direction of each range.
func (f *GeneFeature) Reverse() *GeneFeature {
	res := make([]ReferenceRange, len(f.regions))
	for i, r := range f.regions {
		res[len(res)-1-i] = r.Reverse()
	}
	return &GeneFeature{regions: res}
}

// Size returns the number of component ranges.
func (f *GeneFeature) Size() int { return len(f.regions) }

// Range returns the i-th component range.
func (f *GeneFeature) Range(i int) ReferenceRange { return f.regions[i] }

// Ranges returns a copy of the component ranges.
func (f *GeneFeature) Ranges() []ReferenceRange { return slices.Clone(f.regions) }

// IsComposite reports whether the feature has more than one range.
func (f *GeneFeature) IsComposite() bool { return len(f.regions) != 1 }

// HasReversedRanges reports whether any component range is reversed.
func (f *GeneFeature) HasReversedRanges() bool {
	for _, r := range f.regions {
		if r.IsReversed() {
			return true
		}
	}
	return false
}

// GeneType returns the gene type shared by all ranges, or anchor.Unknown.
func (f *GeneFeature) GeneType() anchor.GeneType {
	gt := f.regions[0].GeneType()
	for _, r := range f.regions[1:] {
		if r.GeneType() != gt {
			return anchor.Unknown
		}
	}
	return gt
}

// IsAlignmentAttached reports whether any boundary is a trimmed point.
func (f *GeneFeature) IsAlignmentAttached() bool {
	for _, r := range f.regions {
		if r.Begin.IsAttachedToAlignmentBound() || r.End.IsAttachedToAlignmentBound() {
			return true
		}
	}
	return false
}

// FirstPoint returns the begin of the first range.
func (f *GeneFeature) FirstPoint() anchor.ReferencePoint { return f.regions[0].Begin }

// LastPoint returns the end of the last range.
func (f *GeneFeature) LastPoint() anchor.ReferencePoint { return f.regions[len(f.regions)-1].End }

// Contains reports whether a single-range probe lies within one of the ranges.
func (f *GeneFeature) Contains(probe *GeneFeature) (bool, error) {
	if probe.IsComposite() {
		return false, errors.New("composite features are not supported as containment probes")
	}
	for _, r := range f.regions {
		if r.Contains(probe.regions[0]) {
			return true, nil
		}
	}
	return false, nil
}

// Equal reports structural equality.
func (f *GeneFeature) Equal(g *GeneFeature) bool {
	if f == nil || g == nil {
		return f == g
	}
	return slices.Equal(f.regions, g.regions)
}

// Key returns a string identifying the feature structurally; equal features
// have equal keys.
func (f *GeneFeature) Key() string {
	var b []byte
	for i, r := range f.regions {
		if i > 0 {
			b = append(b, '|')
		}
		b = appendPoint(b, r.Begin)
		b = append(b, ':')
		b = appendPoint(b, r.End)
	}
	return string(b)
}

func appendPoint(b []byte, p anchor.ReferencePoint) []byte {
	b = strconv.AppendInt(b, int64(p.Slot()), 10)
	if p.HasOffset() {
		b = append(b, '@')
		b = strconv.AppendInt(b, int64(p.Offset()), 10)
	}
	return b
}

// String returns the compact text form.
func (f *GeneFeature) String() string {
	if f == nil {
		return "null"
	}
	return Encode(f)
}

// GoString lists the raw ranges.
func (f *GeneFeature) GoString() string {
	parts := make([]string, len(f.regions))
	for i, r := range f.regions {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (f *GeneFeature) first() *GeneFeature {
	return &GeneFeature{regions: f.regions[:1:1]}
}

func (f *GeneFeature) last() *GeneFeature {
	return &GeneFeature{regions: f.regions[len(f.regions)-1:]}
}

func (f *GeneFeature) withoutFirst() *GeneFeature {
	return &GeneFeature{regions: f.regions[1:]}
}

func (f *GeneFeature) withoutLast() *GeneFeature {
	return &GeneFeature{regions: f.regions[: len(f.regions)-1 : len(f.regions)-1]}
}

// Region returns the full germline region of a gene type.
func Region(g anchor.GeneType) *GeneFeature {
	switch g {
	case anchor.Variable:
		return VRegion
	case anchor.Diversity:
		return DRegion
	case anchor.Joining:
		return JRegion
	case anchor.Constant:
		return CRegion
	}
	return nil
}
