package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Chains is the set of receptor chains (IGH, TRB, ...) a gene can be part
// of. The zero value is the empty set; AllChains matches every chain.
type Chains struct {
	all   bool
	names []string // sorted, unique
}

// Common chain sets.
var (
	AllChains = Chains{all: true}
	TRA       = NewChains("TRA")
	TRB       = NewChains("TRB")
	TRG       = NewChains("TRG")
	TRD       = NewChains("TRD")
	TCR       = NewChains("TRA", "TRB", "TRG", "TRD")
	IGH       = NewChains("IGH")
	IGK       = NewChains("IGK")
	IGL       = NewChains("IGL")
	IG        = NewChains("IGH", "IGK", "IGL")
)

// NewChains returns the set of the given chain names.
func NewChains(names ...string) Chains {
	s := slices.Clone(names)
	slices.Sort(s)
	return Chains{names: slices.Compact(s)}
}

// ParseChains parses a comma separated list. "TCR"/"TR", "IG" and "ALL"
// (any case) stand for the respective groups.
func ParseChains(s string) Chains {
	var res Chains
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		switch strings.ToLower(part) {
		case "":
			continue
		case "tcr", "tr":
			res = res.Merge(TCR)
		case "ig":
			res = res.Merge(IG)
		case "all":
			res = res.Merge(AllChains)
		default:
			res = res.Merge(NewChains(part))
		}
	}
	return res
}

// IsAll reports whether c matches every chain.
func (c Chains) IsAll() bool { return c.all }

// IsEmpty reports whether c contains no chain.
func (c Chains) IsEmpty() bool { return !c.all && len(c.names) == 0 }

// Names returns the sorted chain names; nil for AllChains.
func (c Chains) Names() []string { return slices.Clone(c.names) }

// Contains reports whether chain is in c.
func (c Chains) Contains(chain string) bool {
	if c.all {
		return true
	}
	_, ok := slices.BinarySearch(c.names, chain)
	return ok
}

// Merge returns the union of c and o.
func (c Chains) Merge(o Chains) Chains {
	if c.all || o.all {
		return AllChains
	}
	return NewChains(append(slices.Clone(c.names), o.names...)...)
}

// Intersection returns the chains present in both c and o.
func (c Chains) Intersection(o Chains) Chains {
	switch {
	case c.all:
		return o
	case o.all:
		return c
	}
	var res []string
	for _, n := range c.names {
		if o.Contains(n) {
			res = append(res, n)
		}
	}
	return Chains{names: res}
}

// Intersects reports whether c and o share a chain.
func (c Chains) Intersects(o Chains) bool {
	switch {
	case c.all && o.all:
		return true
	case o.all:
		return !c.IsEmpty()
	case c.all:
		return !o.IsEmpty()
	}
	for _, n := range o.names {
		if c.Contains(n) {
			return true
		}
	}
	return false
}

// Equal reports whether both sets are the same.
func (c Chains) Equal(o Chains) bool {
	return c.all == o.all && slices.Equal(c.names, o.names)
}

func (c Chains) String() string {
	if c.all {
		return "ALL"
	}
	return strings.Join(c.names, ",")
}

func (c Chains) MarshalJSON() ([]byte, error) {
	if c.all {
		return nil, errors.New("serialization of all chains is not supported")
	}
	names := c.names
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

func (c *Chains) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("decode chains: %w", err)
	}
	*c = NewChains(names...)
	return nil
}
