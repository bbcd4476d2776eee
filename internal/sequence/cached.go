package sequence

import (
	"fmt"
	"sort"
	"sync"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/store/interval"
)

// cachedRegion is a known stretch of a sequence stored in the interval tree.
type cachedRegion struct {
	id    uintptr
	start int
	seq   Sequence
}

func (c *cachedRegion) end() int { return c.start + c.seq.Len() }

// Overlap returns whether c overlaps b.
func (c *cachedRegion) Overlap(b interval.IntRange) bool {
	return c.end() > b.Start && c.start < b.End
}
func (c *cachedRegion) ID() uintptr { return c.id }
func (c *cachedRegion) Range() interval.IntRange {
	return interval.IntRange{Start: c.start, End: c.end()}
}

// touching matches regions that overlap or abut [start, end).
type touching struct{ start, end int }

// Overlap returns whether q overlaps or touches b.
func (q touching) Overlap(b interval.IntRange) bool { return q.start <= b.End && q.end >= b.Start }
func (q touching) ID() uintptr                      { return 0 }
func (q touching) Range() interval.IntRange         { return interval.IntRange{Start: q.start, End: q.end} }

// CachedProvider memoizes regions of a lazily constructed backend. Regions
// can also be seeded up front, in which case they are served without
// touching the backend. A provider without a backend serves seeded regions
// only.
type CachedProvider struct {
	source  string
	factory func() (Provider, error)

	mu      sync.Mutex
	backend Provider
	regions interval.IntTree
	nextID  uintptr
}

// NewCachedProvider returns a provider that creates its backend with
// factory on first use. A failed construction is retried on the next call.
func NewCachedProvider(source string, factory func() (Provider, error)) *CachedProvider {
	return &CachedProvider{source: source, factory: factory}
}

// NewDetachedProvider returns a provider without backend. Requests outside
// the seeded regions fail with *NoSequenceError.
func NewDetachedProvider(source string) *CachedProvider {
	return &CachedProvider{source: source}
}

// Source describes where the sequence comes from.
func (c *CachedProvider) Source() string { return c.source }

// Size returns the backend size, or -1 if there is no usable backend.
func (c *CachedProvider) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.factory == nil {
		return -1
	}
	b, err := c.backendLocked()
	if err != nil {
		return -1
	}
	return b.Size()
}

// Region returns r from the cache, fetching and caching it from the backend
// when it is not fully known yet.
func (c *CachedProvider) Region(r Range) (Sequence, error) {
	lo, hi := r.Lower(), r.Upper()
	if lo < 0 {
		return Sequence{}, &OutOfBoundsError{Requested: r, Available: NewRange(0, max(hi, 0))}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq, ok := c.lookupLocked(lo, hi); ok {
		return orient(seq, r), nil
	}
	if c.factory == nil {
		return Sequence{}, &NoSequenceError{Source: c.source, Requested: r}
	}
	b, err := c.backendLocked()
	if err != nil {
		return Sequence{}, fmt.Errorf("resolve %s: %w", c.source, err)
	}
	if n := b.Size(); n >= 0 && hi > n {
		return Sequence{}, &OutOfBoundsError{Requested: r, Available: NewRange(0, n)}
	}
	seq, err := b.Region(NewRange(lo, hi))
	if err != nil {
		return Sequence{}, err
	}
	if err := c.addLocked(lo, seq); err != nil {
		return Sequence{}, err
	}
	return orient(seq, r), nil
}

// SetRegion seeds the cache with a known region. A reversed range takes
// seq as read on the complementary strand.
func (c *CachedProvider) SetRegion(r Range, seq Sequence) error {
	if r.Length() != seq.Len() {
		return fmt.Errorf("region %s does not match sequence length %d", r, seq.Len())
	}
	if r.Lower() < 0 {
		return fmt.Errorf("negative region %s", r)
	}
	if r.IsReverse() {
		seq = seq.ReverseComplement()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(r.Lower(), seq)
}

// CachedRanges lists the known regions in ascending order.
func (c *CachedProvider) CachedRanges() []Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	var res []Range
	c.regions.Do(func(e interval.IntInterface) (done bool) {
		cr := e.(*cachedRegion)
		res = append(res, NewRange(cr.start, cr.end()))
		return false
	})
	sort.Slice(res, func(i, j int) bool { return res[i].From < res[j].From })
	return res
}

func (c *CachedProvider) backendLocked() (Provider, error) {
	if c.backend != nil {
		return c.backend, nil
	}
	b, err := c.factory()
	if err != nil {
		return nil, err
	}
	c.backend = b
	return b, nil
}

func (c *CachedProvider) lookupLocked(lo, hi int) (Sequence, bool) {
	for _, e := range c.regions.Get(touching{start: lo, end: hi}) {
		cr := e.(*cachedRegion)
		if cr.start <= lo && cr.end() >= hi {
			return cr.seq.Slice(lo-cr.start, hi-cr.start), true
		}
	}
	return Sequence{}, false
}

// addLocked stores seq at start, merging it with every overlapping or
// adjacent region. Overlapping parts must agree.
func (c *CachedProvider) addLocked(start int, seq Sequence) error {
	if seq.IsEmpty() {
		return nil
	}
	end := start + seq.Len()
	hits := c.regions.Get(touching{start: start, end: end})

	lo, hi := start, end
	for _, e := range hits {
		cr := e.(*cachedRegion)
		from, to := max(start, cr.start), min(end, cr.end())
		if from < to && !seq.Slice(from-start, to-start).Equal(cr.seq.Slice(from-cr.start, to-cr.start)) {
			return fmt.Errorf("inconsistent sequence for %s in region %s", c.source, NewRange(from, to))
		}
		lo, hi = min(lo, cr.start), max(hi, cr.end())
	}

	merged := seq
	if len(hits) > 0 {
		buf := make(alphabet.Letters, hi-lo)
		for _, e := range hits {
			cr := e.(*cachedRegion)
			copy(buf[cr.start-lo:], cr.seq.letters)
			if err := c.regions.Delete(cr, false); err != nil {
				return fmt.Errorf("drop cached region of %s: %w", c.source, err)
			}
		}
		copy(buf[start-lo:], seq.letters)
		merged = Sequence{letters: buf}
	}

	c.nextID++
	return c.regions.Insert(&cachedRegion{id: c.nextID, start: lo, seq: merged}, false)
}

func orient(seq Sequence, r Range) Sequence {
	if r.IsReverse() {
		return seq.ReverseComplement()
	}
	return seq
}
