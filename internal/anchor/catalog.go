package anchor

import (
	"fmt"
	"strings"
)

// Number of catalog slots.
const (
	// PureCount is the number of germline (non-trimmed) anchor points.
	PureCount = 19
	// ExtendedCount is the number of all anchor points, trimmed variants included.
	ExtendedCount = 24
)

// Anchor is an immutable catalog entry.
type Anchor struct {
	// Name is the catalog name, e.g. "FR3EndCDR3Begin".
	Name string
	// Index is the germline index (0..PureCount-1), -1 for points attached to
	// the left alignment bound and -2 for points attached to the right one.
	Index int
	// Slot is the position in germline order over all anchors; it is also
	// the index in extended position tables.
	Slot     int
	GeneType GeneType

	CodingLeft      bool
	CodingRight     bool
	TripletBoundary bool

	aliases    []string
	activation string

	trimmed       int // slot of the trimmed twin, -1 if none
	activationRP  ReferencePoint
	hasActivation bool
}

// IsPure reports whether the anchor is a germline point.
func (a *Anchor) IsPure() bool { return a.Index >= 0 }

// Aliases returns every name the anchor can be parsed from.
func (a *Anchor) Aliases() []string {
	return append([]string(nil), a.aliases...)
}

const (
	slotV5UTRBegin = iota
	slotV5UTRBeginTrimmed
	slotV5UTREndL1Begin
	slotL1EndVIntronBegin
	slotVIntronEndL2Begin
	slotL2EndFR1Begin
	slotFR1EndCDR1Begin
	slotCDR1EndFR2Begin
	slotFR2EndCDR2Begin
	slotCDR2EndFR3Begin
	slotFR3EndCDR3Begin
	slotVEndTrimmed
	slotVEnd
	slotDBegin
	slotDBeginTrimmed
	slotDEndTrimmed
	slotDEnd
	slotJBegin
	slotJBeginTrimmed
	slotCDR3EndFR4Begin
	slotFR4End
	slotCBegin
	slotCExon1End
	slotCEnd
)

// catalog holds all anchors in germline order. Derived relations are filled
// in by init and never change afterwards.
var catalog = [ExtendedCount]Anchor{
	{Name: "V5UTRBegin", Index: 0, GeneType: Variable,
		aliases: []string{"UTR5Begin", "V5UTRBegin"}},
	{Name: "V5UTRBeginTrimmed", Index: -1, GeneType: Variable,
		aliases: []string{"V5UTRBeginTrimmed"}, activation: "V5UTREnd"},
	{Name: "V5UTREndL1Begin", Index: 1, GeneType: Variable, CodingRight: true, TripletBoundary: true,
		aliases: []string{"V5UTREnd", "UTR5End", "L1Begin"}},
	{Name: "L1EndVIntronBegin", Index: 2, GeneType: Variable, CodingLeft: true,
		aliases: []string{"L1End", "VIntronBegin"}},
	{Name: "VIntronEndL2Begin", Index: 3, GeneType: Variable, CodingRight: true,
		aliases: []string{"VIntronEnd", "L2Begin"}},
	{Name: "L2EndFR1Begin", Index: 4, GeneType: Variable, CodingLeft: true, CodingRight: true, TripletBoundary: true,
		aliases: []string{"L2End", "FR1Begin"}},
	{Name: "FR1EndCDR1Begin", Index: 5, GeneType: Variable, CodingLeft: true, CodingRight: true, TripletBoundary: true,
		aliases: []string{"FR1End", "CDR1Begin"}},
	{Name: "CDR1EndFR2Begin", Index: 6, GeneType: Variable, CodingLeft: true, CodingRight: true, TripletBoundary: true,
		aliases: []string{"CDR1End", "FR2Begin"}},
	{Name: "FR2EndCDR2Begin", Index: 7, GeneType: Variable, CodingLeft: true, CodingRight: true, TripletBoundary: true,
		aliases: []string{"FR2End", "CDR2Begin"}},
	{Name: "CDR2EndFR3Begin", Index: 8, GeneType: Variable, CodingLeft: true, CodingRight: true, TripletBoundary: true,
		aliases: []string{"CDR2End", "FR3Begin"}},
	{Name: "FR3EndCDR3Begin", Index: 9, GeneType: Variable, CodingLeft: true, CodingRight: true, TripletBoundary: true,
		aliases: []string{"FR3End", "CDR3Begin"}},
	{Name: "VEndTrimmed", Index: -2, GeneType: Variable, CodingLeft: true, CodingRight: true,
		aliases: []string{"VEndTrimmed"}, activation: "CDR3Begin(-3)"},
	{Name: "VEnd", Index: 10, GeneType: Variable, CodingLeft: true, CodingRight: true,
		aliases: []string{"VEnd"}},
	{Name: "DBegin", Index: 11, GeneType: Diversity, CodingLeft: true, CodingRight: true,
		aliases: []string{"DBegin"}},
	{Name: "DBeginTrimmed", Index: -1, GeneType: Diversity, CodingLeft: true, CodingRight: true,
		aliases: []string{"DBeginTrimmed"}},
	{Name: "DEndTrimmed", Index: -2, GeneType: Diversity, CodingLeft: true, CodingRight: true,
		aliases: []string{"DEndTrimmed"}},
	{Name: "DEnd", Index: 12, GeneType: Diversity, CodingLeft: true, CodingRight: true,
		aliases: []string{"DEnd"}},
	{Name: "JBegin", Index: 13, GeneType: Joining, CodingLeft: true, CodingRight: true,
		aliases: []string{"JBegin"}},
	{Name: "JBeginTrimmed", Index: -1, GeneType: Joining, CodingLeft: true, CodingRight: true,
		aliases: []string{"JBeginTrimmed"}, activation: "CDR3End(+3)"},
	{Name: "CDR3EndFR4Begin", Index: 14, GeneType: Joining, CodingLeft: true, CodingRight: true, TripletBoundary: true,
		aliases: []string{"CDR3End", "FR4Begin"}},
	// The J segment is followed by the J-C intron.
	{Name: "FR4End", Index: 15, GeneType: Joining, CodingLeft: true,
		aliases: []string{"FR4End"}},
	{Name: "CBegin", Index: 16, GeneType: Constant, CodingLeft: true, CodingRight: true,
		aliases: []string{"CBegin"}},
	{Name: "CExon1End", Index: 17, GeneType: Constant, CodingLeft: true, CodingRight: true,
		aliases: []string{"CExon1End"}},
	{Name: "CEnd", Index: 18, GeneType: Constant, CodingLeft: true, CodingRight: true,
		aliases: []string{"CEnd"}},
}

var (
	pureSlots [PureCount]int
	byName    = make(map[string]int)
)

func init() {
	for i := range catalog {
		a := &catalog[i]
		a.Slot = i
		a.trimmed = -1
		if a.Index >= 0 {
			pureSlots[a.Index] = i
		}
		for _, alias := range a.aliases {
			byName[strings.ToLower(alias)] = i
		}
	}

	for _, twin := range [][2]int{
		{slotV5UTRBegin, slotV5UTRBeginTrimmed},
		{slotVEnd, slotVEndTrimmed},
		{slotDBegin, slotDBeginTrimmed},
		{slotDEnd, slotDEndTrimmed},
		{slotJBegin, slotJBeginTrimmed},
	} {
		catalog[twin[0]].trimmed = twin[1]
	}

	for i := range catalog {
		a := &catalog[i]
		if a.activation == "" {
			continue
		}
		rp, err := ParsePoint(a.activation)
		if err != nil {
			panic(fmt.Sprintf("anchor catalog: activation point of %s: %v", a.Name, err))
		}
		a.activationRP = rp
		a.hasActivation = true
	}
}

// Catalog returns all anchors in germline order.
func Catalog() []*Anchor {
	res := make([]*Anchor, len(catalog))
	for i := range catalog {
		res[i] = &catalog[i]
	}
	return res
}

// ByIndex returns the germline point with the given pure index.
func ByIndex(index int) ReferencePoint {
	return ReferencePoint{slot: int8(pureSlots[index])}
}

// BySlot returns the point occupying the given extended slot.
func BySlot(slot int) ReferencePoint {
	return ReferencePoint{slot: int8(slot)}
}

// PointNames returns all point names that can be parsed, including aliases.
func PointNames() []string {
	var names []string
	for i := range catalog {
		names = append(names, catalog[i].aliases...)
	}
	return names
}
