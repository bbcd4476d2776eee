package feature

import (
	"errors"
	"fmt"

	"github.com/inodb/vibe-repseq/internal/anchor"
)

// ErrIncompatible is returned when two features cannot be intersected
// because their ranges interleave with gaps.
var ErrIncompatible = errors.New("incompatible features")

// Intersection returns the part of the germline shared by both features.
// Reversed palindromic tails are intersected with the forward part of the
// other feature when the other feature has no such tail. A nil result means
// the features do not intersect.
func Intersection(f1, f2 *GeneFeature) (*GeneFeature, error) {
	return intersection(f1, f2, false)
}

// IntersectionStrict is Intersection in which reversed tails are only kept
// when both features carry one.
func IntersectionStrict(f1, f2 *GeneFeature) (*GeneFeature, error) {
	return intersection(f1, f2, true)
}

// splitReversed detaches reversed first and last ranges.
func splitReversed(f *GeneFeature) (left, body, right *GeneFeature) {
	body = f
	if body.regions[0].IsReversed() {
		left = body.first()
		body = body.withoutFirst()
	}
	if len(body.regions) > 0 && body.regions[len(body.regions)-1].IsReversed() {
		right = body.last()
		body = body.withoutLast()
	}
	if len(body.regions) == 0 {
		body = nil
	}
	return left, body, right
}

func intersection(f1, f2 *GeneFeature, strict bool) (*GeneFeature, error) {
	if f1 == nil || f2 == nil {
		return nil, nil
	}
	l1, b1, r1 := splitReversed(f1)
	l2, b2, r2 := splitReversed(f2)

	tail := intersectionReversed
	if strict {
		tail = intersectionReversedStrict
	}
	left, err := tail(l1, l2, b1, b2)
	if err != nil {
		return nil, err
	}
	right, err := tail(r1, r2, b1, b2)
	if err != nil {
		return nil, err
	}
	body, err := intersection0(b1, b2)
	if err != nil {
		return nil, err
	}
	if left == nil && body == nil && right == nil {
		return nil, nil
	}
	return Merge(left, body, right)
}

func reversed(f *GeneFeature) *GeneFeature {
	if f == nil {
		return nil
	}
	return f.Reverse()
}

func intersectionReversedStrict(t1, t2, _, _ *GeneFeature) (*GeneFeature, error) {
	if t1 == nil || t2 == nil {
		return nil, nil
	}
	r, err := intersection0(t1.Reverse(), t2.Reverse())
	return reversed(r), err
}

func intersectionReversed(t1, t2, b1, b2 *GeneFeature) (*GeneFeature, error) {
	var (
		r   *GeneFeature
		err error
	)
	switch {
	case t1 == nil && t2 == nil:
		return nil, nil
	case t1 == nil:
		r, err = intersection0(t2.Reverse(), b1)
	case t2 == nil:
		r, err = intersection0(t1.Reverse(), b2)
	default:
		r, err = intersection0(t1.Reverse(), t2.Reverse())
	}
	return reversed(r), err
}

// intersection0 intersects two features made of forward ranges only.
func intersection0(f1, f2 *GeneFeature) (*GeneFeature, error) {
	if f1 == nil || f2 == nil {
		return nil, nil
	}
	first2 := f2.regions[0].Begin
	if f1.regions[0].Begin.Compare(first2) > 0 {
		return intersection0(f2, f1)
	}

	p1 := 0
	for f1.regions[p1].End.Compare(first2) <= 0 {
		p1++
		if p1 == len(f1.regions) {
			return nil, nil
		}
	}
	if f1.regions[p1].Begin.Compare(first2) > 0 {
		return nil, fmt.Errorf("%w: %s starts inside a gap of %s", ErrIncompatible, f2, f1)
	}

	var result []ReferenceRange
	p2 := 0
	for p1 < len(f1.regions) && p2 < len(f2.regions) {
		a, b := f1.regions[p1], f2.regions[p2]
		if p2 != 0 && a.Begin != b.Begin {
			return nil, fmt.Errorf("%w: %s and %s", ErrIncompatible, f1, f2)
		}
		begin := maxPoint(a.Begin, b.Begin)
		switch c := a.End.Compare(b.End); {
		case c > 0:
			result = append(result, ReferenceRange{Begin: begin, End: b.End})
			if p2 == len(f2.regions)-1 {
				return &GeneFeature{regions: result}, nil
			}
			p2++
		case c < 0:
			result = append(result, ReferenceRange{Begin: begin, End: a.End})
			if p1 == len(f1.regions)-1 {
				return &GeneFeature{regions: result}, nil
			}
			p1++
		default:
			result = append(result, ReferenceRange{Begin: begin, End: a.End})
			p1++
			p2++
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &GeneFeature{regions: result}, nil
}

func maxPoint(a, b anchor.ReferencePoint) anchor.ReferencePoint {
	if a.Compare(b) > 0 {
		return a
	}
	return b
}
