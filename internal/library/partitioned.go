package library

import (
	"fmt"
	"sync"

	"github.com/inodb/vibe-repseq/internal/feature"
	"github.com/inodb/vibe-repseq/internal/partition"
	"github.com/inodb/vibe-repseq/internal/sequence"
)

// FeatureSource extracts gene features. Feature returns nil and no error
// when the feature is not defined for the sequence.
type FeatureSource interface {
	Feature(f *feature.GeneFeature) (*sequence.Sequence, error)
}

// PartitionedSequence is a sequence with known anchor positions.
type PartitionedSequence struct {
	provider sequence.Provider
	table    partition.Table
}

// NewPartitionedSequence pairs provider with the anchor table of the
// sequence it serves.
func NewPartitionedSequence(provider sequence.Provider, table partition.Table) *PartitionedSequence {
	return &PartitionedSequence{provider: provider, table: table}
}

// Provider returns the underlying sequence provider.
func (ps *PartitionedSequence) Provider() sequence.Provider { return ps.provider }

// Partitioning returns the anchor table.
func (ps *PartitionedSequence) Partitioning() partition.Table { return ps.table }

// Feature slices the ranges of f out of the sequence and joins them.
func (ps *PartitionedSequence) Feature(f *feature.GeneFeature) (*sequence.Sequence, error) {
	if f == nil {
		return nil, nil
	}
	if !f.IsComposite() {
		r, ok := ps.table.Range(f)
		if !ok {
			return nil, nil
		}
		return ps.region(r)
	}
	ranges, err := ps.table.Ranges(f)
	if err != nil {
		return nil, fmt.Errorf("feature %s: %w", f, err)
	}
	if ranges == nil {
		return nil, nil
	}
	if len(ranges) == 1 {
		return ps.region(ranges[0])
	}
	parts := make([]sequence.Sequence, len(ranges))
	for i, r := range ranges {
		s, err := ps.provider.Region(r)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	seq := sequence.Concat(parts...)
	return &seq, nil
}

func (ps *PartitionedSequence) region(r sequence.Range) (*sequence.Sequence, error) {
	s, err := ps.provider.Region(r)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CachedPartitionedSequence memoizes extracted features. Equal features
// always yield the same *sequence.Sequence, and unavailable features are
// remembered as such. Errors are not cached.
type CachedPartitionedSequence struct {
	*PartitionedSequence

	mu    sync.Mutex
	slots map[string]*featureSlot
}

// featureSlot serializes the extraction of one feature so that a slow
// backend blocks only callers asking for the same feature.
type featureSlot struct {
	mu   sync.Mutex
	done bool
	seq  *sequence.Sequence
}

// NewCachedPartitionedSequence returns the memoizing variant.
func NewCachedPartitionedSequence(provider sequence.Provider, table partition.Table) *CachedPartitionedSequence {
	return &CachedPartitionedSequence{
		PartitionedSequence: NewPartitionedSequence(provider, table),
		slots:               make(map[string]*featureSlot),
	}
}

// Feature returns the cached feature sequence, extracting it on first use.
func (c *CachedPartitionedSequence) Feature(f *feature.GeneFeature) (*sequence.Sequence, error) {
	if f == nil {
		return nil, nil
	}
	key := f.Key()
	c.mu.Lock()
	slot, ok := c.slots[key]
	if !ok {
		slot = &featureSlot{}
		c.slots[key] = slot
	}
	c.mu.Unlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.done {
		return slot.seq, nil
	}
	seq, err := c.PartitionedSequence.Feature(f)
	if err != nil {
		return nil, err
	}
	slot.seq, slot.done = seq, true
	return seq, nil
}
