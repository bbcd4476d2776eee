// Package partition maps anchor points to positions on a gene sequence and
// projects gene features onto those positions.
package partition

import (
	"errors"
	"fmt"

	"github.com/inodb/vibe-repseq/internal/anchor"
	"github.com/inodb/vibe-repseq/internal/feature"
	"github.com/inodb/vibe-repseq/internal/sequence"
)

// Layout selects which anchors a table has slots for.
type Layout int8

const (
	// Basic tables hold germline anchors only, indexed by pure index.
	Basic Layout = iota
	// Extended tables additionally hold the trimmed anchors, indexed by slot.
	Extended
)

// Len returns the number of slots.
func (l Layout) Len() int {
	if l == Extended {
		return anchor.ExtendedCount
	}
	return anchor.PureCount
}

func (l Layout) String() string {
	if l == Extended {
		return "extended"
	}
	return "basic"
}

// checked reports whether slot i takes part in the orientation and
// monotonicity checks. Trimmed anchors are never checked.
func (l Layout) checked(i int) bool {
	return l == Basic || anchor.BySlot(i).IsPure()
}

func (l Layout) slotOf(p anchor.ReferencePoint) int {
	if l == Extended {
		return p.Slot()
	}
	return p.Index()
}

func (l Layout) pointAt(i int) anchor.ReferencePoint {
	if l == Extended {
		return anchor.BySlot(i)
	}
	return anchor.ByIndex(i)
}

var (
	// ErrIllegalPosition is returned for positions below -1.
	ErrIllegalPosition = errors.New("illegal input")
	// ErrNonMonotonic is returned when positions contradict the orientation
	// of the table.
	ErrNonMonotonic = errors.New("non-monotonic sequence of reference points")
)

// Table holds the position of every anchor on a sequence, -1 for undefined
// ones. Positions of germline anchors are ordered in one direction; a
// descending table describes a gene on the reverse strand. A Table is
// immutable.
type Table struct {
	layout   Layout
	points   []int
	reversed bool
}

// NewTable validates points, which must have one entry per slot of layout.
func NewTable(layout Layout, points []int) (Table, error) {
	if len(points) != layout.Len() {
		return Table{}, fmt.Errorf("illegal length of %s table: %d", layout, len(points))
	}
	return newTable(layout, append([]int(nil), points...))
}

// NewTableAt places points at slots start, start+1, ... and leaves the
// other slots undefined.
func NewTableAt(layout Layout, start int, points []int) (Table, error) {
	if start < 0 || start+len(points) > layout.Len() {
		return Table{}, fmt.Errorf("%d positions from slot %d do not fit %s table", len(points), start, layout)
	}
	all := make([]int, layout.Len())
	for i := range all {
		all[i] = -1
	}
	copy(all[start:], points)
	return newTable(layout, all)
}

func newTable(layout Layout, points []int) (Table, error) {
	rev, err := checkPoints(layout, points)
	if err != nil {
		return Table{}, err
	}
	return Table{layout: layout, points: points, reversed: rev}, nil
}

// checkPoints determines orientation from the first two distinct defined
// positions and verifies that all checked positions follow it.
func checkPoints(layout Layout, points []int) (reversed bool, err error) {
	for _, p := range points {
		if p < -1 {
			return false, fmt.Errorf("%w: %d", ErrIllegalPosition, p)
		}
	}

	first, known := -1, false
	for i, p := range points {
		if !layout.checked(i) || p < 0 {
			continue
		}
		if first < 0 {
			first = p
			continue
		}
		if p != first {
			reversed, known = first > p, true
			break
		}
	}
	if !known {
		return false, nil
	}

	prev := -1
	for i, p := range points {
		if !layout.checked(i) || p < 0 {
			continue
		}
		if prev >= 0 && prev != p && reversed != (prev > p) {
			return false, ErrNonMonotonic
		}
		prev = p
	}
	return reversed, nil
}

// Layout returns the table layout.
func (t Table) Layout() Layout { return t.layout }

// IsReversed reports whether positions descend along the germline order.
func (t Table) IsReversed() bool { return t.reversed }

// Points returns a copy of the raw slot values.
func (t Table) Points() []int { return append([]int(nil), t.points...) }

// Position returns the position of p, or -1 if the anchor is undefined or
// has no slot in the table. Offsets follow the table orientation.
func (t Table) Position(p anchor.ReferencePoint) int {
	i := t.layout.slotOf(p)
	if i < 0 || i >= len(t.points) {
		return -1
	}
	pos := t.points[i]
	if pos < 0 {
		return -1
	}
	if t.reversed {
		return pos - p.Offset()
	}
	return pos + p.Offset()
}

// NumberOfDefinedPoints counts the defined slots.
func (t Table) NumberOfDefinedPoints() int {
	n := 0
	for _, p := range t.points {
		if p >= 0 {
			n++
		}
	}
	return n
}

// Without returns a copy with p undefined.
func (t Table) Without(p anchor.ReferencePoint) Table {
	points := t.Points()
	if i := t.layout.slotOf(p); i >= 0 && i < len(points) {
		points[i] = -1
	}
	rev, _ := checkPoints(t.layout, points)
	return Table{layout: t.layout, points: points, reversed: rev}
}

// Move shifts every defined position by offset.
func (t Table) Move(offset int) (Table, error) {
	return t.transform(func(p int) int { return p + offset })
}

// Relative expresses every defined position relative to r.
func (t Table) Relative(r sequence.Range) (Table, error) {
	return t.transform(r.RelativePosition)
}

// ApplyMutations projects every defined position through m. A position
// inside a deletion lands on the start of the deletion.
func (t Table) ApplyMutations(m sequence.Mutations) (Table, error) {
	return t.transform(func(p int) int {
		res := m.ConvertPosition(p)
		if res < 0 {
			return ^res
		}
		return res
	})
}

func (t Table) transform(fn func(int) int) (Table, error) {
	points := make([]int, len(t.points))
	for i, p := range t.points {
		if p < 0 {
			points[i] = -1
			continue
		}
		points[i] = fn(p)
	}
	return newTable(t.layout, points)
}

// RelativeTable returns the positions of all anchors in the concatenated
// coordinates of f. Anchors outside of f are undefined.
func (t Table) RelativeTable(f *feature.GeneFeature) (Table, error) {
	points := make([]int, len(t.points))
	for i := range points {
		points[i] = t.RelativePosition(f, t.layout.pointAt(i))
	}
	return newTable(t.layout, points)
}

// FirstAvailablePosition returns the first defined position, -1 if none.
func (t Table) FirstAvailablePosition() int {
	for _, p := range t.points {
		if p >= 0 {
			return p
		}
	}
	return -1
}

// LastAvailablePosition returns the last defined position, -1 if none.
func (t Table) LastAvailablePosition() int {
	for i := len(t.points) - 1; i >= 0; i-- {
		if t.points[i] >= 0 {
			return t.points[i]
		}
	}
	return -1
}

// ContainingRegion returns the forward range between the outermost defined
// positions. ok is false for an empty table.
func (t Table) ContainingRegion() (r sequence.Range, ok bool) {
	first, last := t.FirstAvailablePosition(), t.LastAvailablePosition()
	if first < 0 {
		return sequence.Range{}, false
	}
	if t.reversed {
		return sequence.NewRange(last, first), true
	}
	return sequence.NewRange(first, last), true
}

// LengthBetweenBoundaryPoints returns the distance between the outermost
// defined positions, -1 for an empty table.
func (t Table) LengthBetweenBoundaryPoints() int {
	r, ok := t.ContainingRegion()
	if !ok {
		return -1
	}
	return r.Length()
}

// WrappingGeneFeature returns the feature spanning all defined anchors, nil
// for an empty table.
func (t Table) WrappingGeneFeature() *feature.GeneFeature {
	start, end := 0, len(t.points)-1
	for start < len(t.points) && t.points[start] < 0 {
		start++
	}
	if start == len(t.points) {
		return nil
	}
	for end > start && t.points[end] < 0 {
		end--
	}
	return feature.New(t.layout.pointAt(start), t.layout.pointAt(end))
}

// Equal reports whether both tables have the same layout and positions.
func (t Table) Equal(o Table) bool {
	if t.layout != o.layout || len(t.points) != len(o.points) {
		return false
	}
	for i := range t.points {
		if t.points[i] != o.points[i] {
			return false
		}
	}
	return true
}

func (t Table) String() string { return fmt.Sprint(t.points) }
