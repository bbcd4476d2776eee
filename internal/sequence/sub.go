package sequence

// Sub is a view of a region of another provider. Positions of the view
// count from r.From in the direction of r, so a reversed r gives a view of
// the complementary strand.
type Sub struct {
	p Provider
	r Range
}

// SubProvider returns the view of p covering r.
func SubProvider(p Provider, r Range) *Sub { return &Sub{p: p, r: r} }

// Size returns the length of the viewed region.
func (s *Sub) Size() int { return s.r.Length() }

// Region returns rg in view coordinates.
func (s *Sub) Region(rg Range) (Sequence, error) {
	if rg.Lower() < 0 || rg.Upper() > s.r.Length() {
		return Sequence{}, &OutOfBoundsError{Requested: rg, Available: NewRange(0, s.r.Length())}
	}
	return s.p.Region(NewRange(s.r.AbsolutePosition(rg.From), s.r.AbsolutePosition(rg.To)))
}
