package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/inodb/vibe-repseq/internal/seqbase"
	"github.com/inodb/vibe-repseq/internal/sequence"
)

// BaseSequence describes the sequence a gene is defined on: a record
// address, optionally cut to regions that are joined and then edited by
// mutations. Mutations are relative to the joined regions, so they need
// at least one region.
type BaseSequence struct {
	Origin    string
	Regions   []sequence.Range
	Mutations sequence.Mutations
}

// NewBaseSequence validates and returns a base sequence.
func NewBaseSequence(origin string, regions []sequence.Range, mutations sequence.Mutations) (BaseSequence, error) {
	if origin == "" {
		return BaseSequence{}, errors.New("base sequence without origin")
	}
	if len(regions) == 0 {
		regions = nil
	}
	if !mutations.IsEmpty() && regions == nil {
		return BaseSequence{}, errors.New("only relative mutations are supported, please specify regions for this sequence")
	}
	return BaseSequence{Origin: origin, Regions: regions, Mutations: mutations}, nil
}

// IsPure reports whether the base sequence is the origin record as is.
func (b BaseSequence) IsPure() bool { return len(b.Regions) == 0 && b.Mutations.IsEmpty() }

// Address returns the origin as an address relative to dir.
func (b BaseSequence) Address(dir string) (seqbase.Address, error) {
	return seqbase.ParseAddress(dir, b.Origin)
}

// Resolve returns a provider of the base sequence. Nothing is read from the
// origin until a region is requested.
func (b BaseSequence) Resolve(dir string, r seqbase.Resolver) (sequence.Provider, error) {
	addr, err := b.Address(dir)
	if err != nil {
		return nil, err
	}
	origin, err := r.Resolve(addr)
	if err != nil {
		return nil, err
	}
	if b.IsPure() {
		return origin, nil
	}
	parts := make([]sequence.Provider, len(b.Regions))
	for i, rg := range b.Regions {
		parts[i] = sequence.SubProvider(origin, rg)
	}
	joined := sequence.ConcatProviders(parts...)
	if b.Mutations.IsEmpty() {
		return joined, nil
	}
	mutations := b.Mutations
	return sequence.NewCachedProvider(b.Origin, func() (sequence.Provider, error) {
		seq, err := joined.Region(sequence.NewRange(0, joined.Size()))
		if err != nil {
			return nil, err
		}
		seq, err = mutations.Apply(seq)
		if err != nil {
			return nil, fmt.Errorf("mutate %s: %w", b.Origin, err)
		}
		return sequence.FromSequence(seq), nil
	}), nil
}

// Equal reports whether both describe the same sequence.
func (b BaseSequence) Equal(o BaseSequence) bool {
	return b.Origin == o.Origin &&
		slices.Equal(b.Regions, o.Regions) &&
		b.Mutations.String() == o.Mutations.String()
}

type baseSequenceJSON struct {
	Origin    string              `json:"origin"`
	Region    *sequence.Range     `json:"region,omitempty"`
	Regions   []sequence.Range    `json:"regions,omitempty"`
	Mutations *sequence.Mutations `json:"mutations,omitempty"`
}

// MarshalJSON writes a pure base sequence as its origin string and any
// other as an object.
func (b BaseSequence) MarshalJSON() ([]byte, error) {
	if b.IsPure() {
		return json.Marshal(b.Origin)
	}
	v := baseSequenceJSON{Origin: b.Origin}
	if len(b.Regions) == 1 {
		v.Region = &b.Regions[0]
	} else {
		v.Regions = b.Regions
	}
	if !b.Mutations.IsEmpty() {
		v.Mutations = &b.Mutations
	}
	return json.Marshal(v)
}

func (b *BaseSequence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var origin string
		if err := json.Unmarshal(data, &origin); err != nil {
			return err
		}
		v, err := NewBaseSequence(origin, nil, sequence.Mutations{})
		if err != nil {
			return err
		}
		*b = v
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var v baseSequenceJSON
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode base sequence: %w", err)
	}
	regions := v.Regions
	if v.Region != nil {
		regions = []sequence.Range{*v.Region}
	}
	var mutations sequence.Mutations
	if v.Mutations != nil {
		mutations = *v.Mutations
	}
	res, err := NewBaseSequence(v.Origin, regions, mutations)
	if err != nil {
		return err
	}
	*b = res
	return nil
}
