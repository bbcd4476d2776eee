package anchor

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// ReferencePoint is an anchor plus an integer offset in nucleotides.
// Positive offsets point downstream in germline orientation.
type ReferencePoint struct {
	slot   int8
	offset int
}

// Named reference points. Several names refer to the same anchor.
var (
	UTR5Begin         = ReferencePoint{slot: slotV5UTRBegin}
	V5UTRBegin        = UTR5Begin
	V5UTRBeginTrimmed = ReferencePoint{slot: slotV5UTRBeginTrimmed}
	V5UTREnd          = ReferencePoint{slot: slotV5UTREndL1Begin}
	UTR5End           = V5UTREnd
	L1Begin           = V5UTREnd
	L1End             = ReferencePoint{slot: slotL1EndVIntronBegin}
	VIntronBegin      = L1End
	VIntronEnd        = ReferencePoint{slot: slotVIntronEndL2Begin}
	L2Begin           = VIntronEnd
	L2End             = ReferencePoint{slot: slotL2EndFR1Begin}
	FR1Begin          = L2End
	FR1End            = ReferencePoint{slot: slotFR1EndCDR1Begin}
	CDR1Begin         = FR1End
	CDR1End           = ReferencePoint{slot: slotCDR1EndFR2Begin}
	FR2Begin          = CDR1End
	FR2End            = ReferencePoint{slot: slotFR2EndCDR2Begin}
	CDR2Begin         = FR2End
	CDR2End           = ReferencePoint{slot: slotCDR2EndFR3Begin}
	FR3Begin          = CDR2End
	FR3End            = ReferencePoint{slot: slotFR3EndCDR3Begin}
	CDR3Begin         = FR3End
	VEndTrimmed       = ReferencePoint{slot: slotVEndTrimmed}
	VEnd              = ReferencePoint{slot: slotVEnd}
	DBegin            = ReferencePoint{slot: slotDBegin}
	DBeginTrimmed     = ReferencePoint{slot: slotDBeginTrimmed}
	DEndTrimmed       = ReferencePoint{slot: slotDEndTrimmed}
	DEnd              = ReferencePoint{slot: slotDEnd}
	JBegin            = ReferencePoint{slot: slotJBegin}
	JBeginTrimmed     = ReferencePoint{slot: slotJBeginTrimmed}
	CDR3End           = ReferencePoint{slot: slotCDR3EndFR4Begin}
	FR4Begin          = CDR3End
	FR4End            = ReferencePoint{slot: slotFR4End}
	CBegin            = ReferencePoint{slot: slotCBegin}
	CExon1End         = ReferencePoint{slot: slotCExon1End}
	CEnd              = ReferencePoint{slot: slotCEnd}
)

// Anchor returns the catalog entry of the point.
func (p ReferencePoint) Anchor() *Anchor { return &catalog[p.slot] }

// Offset returns the offset from the anchor.
func (p ReferencePoint) Offset() int { return p.offset }

// Slot returns the extended table index of the anchor.
func (p ReferencePoint) Slot() int { return int(p.slot) }

// Index returns the germline index of the anchor, negative for trimmed points.
func (p ReferencePoint) Index() int { return catalog[p.slot].Index }

// Move returns a point with the offset shifted by n.
func (p ReferencePoint) Move(n int) ReferencePoint {
	return ReferencePoint{slot: p.slot, offset: p.offset + n}
}

// WithoutOffset returns the bare anchor point.
func (p ReferencePoint) WithoutOffset() ReferencePoint {
	return ReferencePoint{slot: p.slot}
}

// HasOffset reports whether the offset is non-zero.
func (p ReferencePoint) HasOffset() bool { return p.offset != 0 }

// SameAnchor reports whether both points are built on the same anchor.
func (p ReferencePoint) SameAnchor(o ReferencePoint) bool { return p.slot == o.slot }

// GeneType returns the gene type owning the anchor.
func (p ReferencePoint) GeneType() GeneType { return catalog[p.slot].GeneType }

// IsPure reports whether the point is built on a germline anchor.
func (p ReferencePoint) IsPure() bool { return catalog[p.slot].Index >= 0 }

// IsAttachedToAlignmentBound reports whether the point is a trimmed variant.
func (p ReferencePoint) IsAttachedToAlignmentBound() bool { return catalog[p.slot].Index < 0 }

// IsAttachedToLeftAlignmentBound reports whether a trimmed point sits on the
// left bound of an alignment.
func (p ReferencePoint) IsAttachedToLeftAlignmentBound() bool { return catalog[p.slot].Index == -1 }

// IsCodingOnLeft reports whether the sequence to the left of the point is coding.
func (p ReferencePoint) IsCodingOnLeft() bool { return catalog[p.slot].CodingLeft }

// IsCodingOnRight reports whether the sequence to the right of the point is coding.
func (p ReferencePoint) IsCodingOnRight() bool { return catalog[p.slot].CodingRight }

// IsTripletBoundary reports whether the point lies on a codon boundary.
func (p ReferencePoint) IsTripletBoundary() bool {
	return catalog[p.slot].TripletBoundary && p.offset%3 == 0
}

// Trimmed returns the trimmed twin of the anchor, if the anchor has one.
func (p ReferencePoint) Trimmed() (ReferencePoint, bool) {
	t := catalog[p.slot].trimmed
	if t < 0 {
		return ReferencePoint{}, false
	}
	return ReferencePoint{slot: int8(t)}, true
}

// Activation returns the point a trimmed variant is bound to: the trimmed
// form is meaningful only on the corresponding side of that point.
func (p ReferencePoint) Activation() (ReferencePoint, bool) {
	a := &catalog[p.slot]
	return a.activationRP, a.hasActivation
}

// Compare orders points by anchor slot, then by offset.
func (p ReferencePoint) Compare(o ReferencePoint) int {
	if c := cmp.Compare(p.slot, o.slot); c != 0 {
		return c
	}
	return cmp.Compare(p.offset, o.offset)
}

// Less reports whether p is ordered before o.
func (p ReferencePoint) Less(o ReferencePoint) bool { return p.Compare(o) < 0 }

// Name returns the point name without offset, choosing a "Begin" alias when
// begin is true and an "End" alias otherwise.
func (p ReferencePoint) Name(begin bool) string {
	aliases := catalog[p.slot].aliases
	suffix := "End"
	if begin {
		suffix = "Begin"
	}
	for _, a := range aliases {
		if strings.HasSuffix(a, suffix) {
			return a
		}
	}
	return aliases[0]
}

// Encode returns the text form of the point, e.g. "CDR3Begin", "VEnd(-3)"
// or "JBegin(20)".
func (p ReferencePoint) Encode(begin bool) string {
	name := p.Name(begin)
	if p.offset == 0 {
		return name
	}
	return name + "(" + strconv.Itoa(p.offset) + ")"
}

// String implements fmt.Stringer.
func (p ReferencePoint) String() string { return p.Encode(true) }

// PointByName looks up a point by any of its names, ignoring case.
func PointByName(name string) (ReferencePoint, bool) {
	slot, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ReferencePoint{}, false
	}
	return ReferencePoint{slot: int8(slot)}, true
}

// ParsePoint parses "Name", "Name(3)", "Name(+3)" or "Name(-3)".
func ParsePoint(s string) (ReferencePoint, error) {
	s = strings.ReplaceAll(s, " ", "")
	name, offset := s, 0
	if br := strings.IndexByte(s, '('); br >= 0 {
		if !strings.HasSuffix(s, ")") {
			return ReferencePoint{}, fmt.Errorf("malformed reference point %q", s)
		}
		name = s[:br]
		v, err := strconv.Atoi(strings.TrimPrefix(s[br+1:len(s)-1], "+"))
		if err != nil {
			return ReferencePoint{}, fmt.Errorf("malformed offset in reference point %q: %w", s, err)
		}
		offset = v
	}
	p, ok := PointByName(name)
	if !ok {
		return ReferencePoint{}, fmt.Errorf("unknown reference point %q", name)
	}
	return p.Move(offset), nil
}

// MarshalText encodes the point in begin form.
func (p ReferencePoint) MarshalText() ([]byte, error) {
	return []byte(p.Encode(true)), nil
}

// UnmarshalText parses a point.
func (p *ReferencePoint) UnmarshalText(text []byte) error {
	v, err := ParsePoint(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
