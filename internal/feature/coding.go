package feature

import (
	"fmt"
	"sync"

	"github.com/inodb/vibe-repseq/internal/anchor"
)

type frameEntry struct {
	point anchor.ReferencePoint
	ok    bool
}

// Process-wide memo tables keyed by GeneFeature.Key. Negative results are
// stored too.
var (
	frameCache  sync.Map // string -> frameEntry
	codingCache sync.Map // string -> *GeneFeature, nil when there is no coding part
)

// FrameReference returns the first point inside f that lies on a codon
// boundary, which fixes the reading frame of f.
func FrameReference(f *GeneFeature) (anchor.ReferencePoint, bool) {
	key := f.Key()
	if v, ok := frameCache.Load(key); ok {
		e := v.(frameEntry)
		return e.point, e.ok
	}
	var e frameEntry
outer:
	for _, r := range f.regions {
		for _, p := range r.IntermediatePoints() {
			if p.IsTripletBoundary() {
				e = frameEntry{point: p, ok: true}
				break outer
			}
		}
	}
	frameCache.Store(key, e)
	return e.point, e.ok
}

// CodingFeature returns the coding sub-feature of f, or nil when f contains
// no coding sequence.
func CodingFeature(f *GeneFeature) (*GeneFeature, error) {
	key := f.Key()
	if v, ok := codingCache.Load(key); ok {
		return v.(*GeneFeature), nil
	}

	var ranges []ReferenceRange
	for _, r := range f.regions {
		var prev, last *anchor.ReferencePoint
		for _, p := range r.BoundaryAndIntermediatePoints() {
			p := p
			switch {
			case prev == nil && p.IsCodingOnRight():
				prev = &p
			case prev != nil && !p.IsCodingOnRight():
				if !p.IsCodingOnLeft() {
					return nil, fmt.Errorf("can't calculate coding feature for %s", f)
				}
				ranges = append(ranges, ReferenceRange{Begin: *prev, End: p})
				prev = nil
			}
			last = &p
		}
		if prev != nil && *prev != *last {
			if !last.IsCodingOnLeft() {
				return nil, fmt.Errorf("can't calculate coding feature for %s", f)
			}
			ranges = append(ranges, ReferenceRange{Begin: *prev, End: *last})
		}
	}

	var result *GeneFeature
	if len(ranges) > 0 {
		result = &GeneFeature{regions: ranges}
	}
	codingCache.Store(key, result)
	return result, nil
}
