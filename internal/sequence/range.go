// Package sequence provides nucleotide sequences, directed ranges, edit
// scripts and lazy sequence providers.
package sequence

import (
	"fmt"
)

// Range is a half-open interval between From and To. The range is reversed
// (read on the complementary strand) when From > To.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// NewRange returns Range{from, to}.
func NewRange(from, to int) Range { return Range{From: from, To: to} }

// Lower returns the smaller boundary.
func (r Range) Lower() int { return min(r.From, r.To) }

// Upper returns the larger boundary.
func (r Range) Upper() int { return max(r.From, r.To) }

// Length returns Upper - Lower.
func (r Range) Length() int { return r.Upper() - r.Lower() }

// IsReverse reports whether the range is reversed.
func (r Range) IsReverse() bool { return r.From > r.To }

// Inverse swaps the direction.
func (r Range) Inverse() Range { return Range{From: r.To, To: r.From} }

// Forward returns the range with the same bounds in forward direction.
func (r Range) Forward() Range { return Range{From: r.Lower(), To: r.Upper()} }

// Move shifts both boundaries by offset.
func (r Range) Move(offset int) Range { return Range{From: r.From + offset, To: r.To + offset} }

// Contains reports whether position p lies in [Lower, Upper).
func (r Range) Contains(p int) bool { return p >= r.Lower() && p < r.Upper() }

// ContainsBoundary reports whether p lies in [Lower, Upper].
func (r Range) ContainsBoundary(p int) bool { return p >= r.Lower() && p <= r.Upper() }

// ContainsRange reports whether o lies within r.
func (r Range) ContainsRange(o Range) bool {
	return o.Lower() >= r.Lower() && o.Upper() <= r.Upper()
}

// Intersects reports whether the ranges share at least one position.
func (r Range) Intersects(o Range) bool {
	return r.Lower() < o.Upper() && o.Lower() < r.Upper()
}

// Intersection returns the common part of both ranges, directed as r.
func (r Range) Intersection(o Range) (Range, bool) {
	if !r.Intersects(o) {
		return Range{}, false
	}
	lo, hi := max(r.Lower(), o.Lower()), min(r.Upper(), o.Upper())
	if r.IsReverse() {
		return Range{From: hi, To: lo}, true
	}
	return Range{From: lo, To: hi}, true
}

// HasSameDirection reports whether both ranges are reversed or both are not.
// An empty range has no direction and matches any range.
func (r Range) HasSameDirection(o Range) bool {
	return r.From == r.To || o.From == o.To || r.IsReverse() == o.IsReverse()
}

// RelativePosition converts an absolute boundary position to a position
// counted from From in the direction of the range.
func (r Range) RelativePosition(abs int) int {
	if r.IsReverse() {
		return r.From - abs
	}
	return abs - r.From
}

// AbsolutePosition converts a relative boundary position back to an
// absolute one.
func (r Range) AbsolutePosition(rel int) int {
	if r.IsReverse() {
		return r.From - rel
	}
	return r.From + rel
}

// RelativeRange expresses o in the coordinates of r.
func (r Range) RelativeRange(o Range) Range {
	return Range{From: r.RelativePosition(o.From), To: r.RelativePosition(o.To)}
}

func (r Range) String() string {
	if r.IsReverse() {
		return fmt.Sprintf("(%d<-%d)", r.To, r.From)
	}
	return fmt.Sprintf("(%d->%d)", r.From, r.To)
}
