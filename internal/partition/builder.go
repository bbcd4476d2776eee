package partition

import (
	"fmt"

	"github.com/inodb/vibe-repseq/internal/anchor"
)

// Builder assembles a Table one anchor at a time. Every call validates the
// whole table and leaves it unchanged on error.
type Builder struct {
	layout Layout
	points []int
}

// NewBuilder returns an empty builder for layout.
func NewBuilder(layout Layout) *Builder {
	points := make([]int, layout.Len())
	for i := range points {
		points[i] = -1
	}
	return &Builder{layout: layout, points: points}
}

// Set assigns pos to p. Points with offsets are rejected, as are trimmed
// points in a basic builder. A position of -1 clears the anchor.
func (b *Builder) Set(p anchor.ReferencePoint, pos int) error {
	if p.HasOffset() {
		return fmt.Errorf("supports only reference points without offset, %s is not basic", p)
	}
	if err := b.set(p, pos); err != nil {
		return fmt.Errorf("while adding %s error: %w", p, err)
	}
	return nil
}

func (b *Builder) set(p anchor.ReferencePoint, pos int) error {
	i := b.layout.slotOf(p)
	if i < 0 {
		return fmt.Errorf("supports only pure basic reference points, %s is not basic", p)
	}
	if pos < -1 {
		return fmt.Errorf("wrong position value: %d", pos)
	}
	old := b.points[i]
	b.points[i] = pos
	if _, err := checkPoints(b.layout, b.points); err != nil {
		b.points[i] = old
		return err
	}
	return nil
}

// SetPositionsFrom copies every defined anchor of t.
func (b *Builder) SetPositionsFrom(t Table) error {
	for i, pos := range t.points {
		if pos < 0 {
			continue
		}
		if err := b.Set(t.layout.pointAt(i), pos); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the table assembled so far. The builder stays usable.
func (b *Builder) Build() Table {
	points := append([]int(nil), b.points...)
	rev, _ := checkPoints(b.layout, points)
	return Table{layout: b.layout, points: points, reversed: rev}
}
