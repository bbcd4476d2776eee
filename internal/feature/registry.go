package feature

import (
	"strings"

	"github.com/inodb/vibe-repseq/internal/anchor"
)

// GermlinePRegionSize is the length of the palindromic tail reserved next
// to V end, J begin and around D in alignment references.
const GermlinePRegionSize = 20

// P-segments in rearranged sequences.
var (
	VPSegment      = New(anchor.VEnd, anchor.VEndTrimmed)
	JPSegment      = New(anchor.JBeginTrimmed, anchor.JBegin)
	DLeftPSegment  = New(anchor.DBeginTrimmed, anchor.DBegin)
	DRightPSegment = New(anchor.DEnd, anchor.DEndTrimmed)
)

// P-segments in germline, used as alignment references.
var (
	GermlineVPSegment = New(anchor.VEnd, anchor.VEnd.Move(-GermlinePRegionSize))
	GermlineJPSegment = New(anchor.JBegin.Move(GermlinePRegionSize), anchor.JBegin)
	GermlineDPSegment = New(anchor.DEnd, anchor.DBegin)
)

// Gene regions.
var (
	VRegion        = New(anchor.FR1Begin, anchor.VEnd)
	VRegionWithP   = MustMerge(VRegion, GermlineVPSegment)
	VRegionTrimmed = New(anchor.FR1Begin, anchor.VEndTrimmed)
	DRegion        = New(anchor.DBegin, anchor.DEnd)
	DRegionWithP   = MustMerge(GermlineDPSegment, DRegion, GermlineDPSegment)
	DCDR3Part      = New(anchor.DBeginTrimmed, anchor.DEndTrimmed)
	DRegionTrimmed = DCDR3Part
	JRegion        = New(anchor.JBegin, anchor.FR4End)
	JRegionWithP   = MustMerge(GermlineJPSegment, JRegion)
	JRegionTrimmed = New(anchor.JBeginTrimmed, anchor.FR4End)
)

// Major gene parts.
var (
	V5UTRGermline = New(anchor.UTR5Begin, anchor.V5UTREnd)
	V5UTR         = New(anchor.V5UTRBeginTrimmed, anchor.V5UTREnd)
	L1            = New(anchor.L1Begin, anchor.L1End)
	VIntron       = New(anchor.VIntronBegin, anchor.VIntronEnd)
	L2            = New(anchor.L2Begin, anchor.L2End)
	VLIntronL     = New(anchor.L1Begin, anchor.L2End)
)

// Frameworks and CDRs.
var (
	FR1       = New(anchor.FR1Begin, anchor.FR1End)
	CDR1      = New(anchor.CDR1Begin, anchor.CDR1End)
	FR2       = New(anchor.FR2Begin, anchor.FR2End)
	CDR2      = New(anchor.CDR2Begin, anchor.CDR2End)
	FR3       = New(anchor.FR3Begin, anchor.FR3End)
	CDR3      = New(anchor.CDR3Begin, anchor.CDR3End)
	ShortCDR3 = WithOffsets(CDR3, 3, -3)
	FR4       = New(anchor.FR4Begin, anchor.FR4End)
)

// Parts of CDR3.
var (
	VCDR3Part         = New(anchor.CDR3Begin, anchor.VEndTrimmed)
	JCDR3Part         = New(anchor.JBeginTrimmed, anchor.CDR3End)
	GermlineVCDR3Part = New(anchor.CDR3Begin, anchor.VEnd)
	GermlineJCDR3Part = New(anchor.JBegin, anchor.CDR3End)
	VDJunction        = New(anchor.VEndTrimmed, anchor.DBeginTrimmed)
	DJJunction        = New(anchor.DEndTrimmed, anchor.JBeginTrimmed)
	VJJunction        = New(anchor.VEndTrimmed, anchor.JBeginTrimmed)
)

// Exons and the C region.
var (
	Exon1         = New(anchor.L1Begin, anchor.L1End)
	Exon2         = New(anchor.L2Begin, anchor.FR4End)
	VExon2        = New(anchor.L2Begin, anchor.VEnd)
	VExon2Trimmed = New(anchor.L2Begin, anchor.VEndTrimmed)
	CExon1        = New(anchor.CBegin, anchor.CExon1End)
	CRegion       = New(anchor.CBegin, anchor.CEnd)
)

// Composite features.
var (
	L                           = MustMerge(L1, L2)
	VTranscriptWithout5UTR      = MustMerge(Exon1, VExon2)
	VTranscript                 = MustMerge(V5UTRGermline, Exon1, VExon2)
	VGene                       = New(anchor.UTR5Begin, anchor.VEnd)
	VTranscriptWithout5UTRWithP = MustMerge(Exon1, VExon2, GermlineVPSegment)
	VTranscriptWithP            = MustMerge(V5UTRGermline, Exon1, VExon2, GermlineVPSegment)
	VGeneWithP                  = MustMerge(VGene, GermlineVPSegment)
	VDJTranscriptWithout5UTR    = MustMerge(Exon1, Exon2)
	VDJTranscript               = MustMerge(V5UTRGermline, Exon1, Exon2)
	VDJRegion                   = New(anchor.FR1Begin, anchor.FR4End)
)

type namedFeature struct {
	name    string
	feature *GeneFeature
}

// registry lists named features in registration order. When two names
// describe equal features the first one is canonical.
var registry = []namedFeature{
	{"VPSegment", VPSegment},
	{"JPSegment", JPSegment},
	{"DLeftPSegment", DLeftPSegment},
	{"DRightPSegment", DRightPSegment},
	{"GermlineVPSegment", GermlineVPSegment},
	{"GermlineJPSegment", GermlineJPSegment},
	{"GermlineDPSegment", GermlineDPSegment},
	{"VRegion", VRegion},
	{"VRegionWithP", VRegionWithP},
	{"VRegionTrimmed", VRegionTrimmed},
	{"DRegion", DRegion},
	{"DRegionWithP", DRegionWithP},
	{"DCDR3Part", DCDR3Part},
	{"DRegionTrimmed", DRegionTrimmed},
	{"JRegion", JRegion},
	{"JRegionWithP", JRegionWithP},
	{"JRegionTrimmed", JRegionTrimmed},
	{"V5UTRGermline", V5UTRGermline},
	{"V5UTR", V5UTR},
	{"L1", L1},
	{"VIntron", VIntron},
	{"L2", L2},
	{"VLIntronL", VLIntronL},
	{"FR1", FR1},
	{"CDR1", CDR1},
	{"FR2", FR2},
	{"CDR2", CDR2},
	{"FR3", FR3},
	{"CDR3", CDR3},
	{"ShortCDR3", ShortCDR3},
	{"FR4", FR4},
	{"VCDR3Part", VCDR3Part},
	{"JCDR3Part", JCDR3Part},
	{"GermlineVCDR3Part", GermlineVCDR3Part},
	{"GermlineJCDR3Part", GermlineJCDR3Part},
	{"VDJunction", VDJunction},
	{"DJJunction", DJJunction},
	{"VJJunction", VJJunction},
	{"Exon1", Exon1},
	{"Exon2", Exon2},
	{"VExon2", VExon2},
	{"VExon2Trimmed", VExon2Trimmed},
	{"CExon1", CExon1},
	{"CRegion", CRegion},
	{"L", L},
	{"VTranscriptWithout5UTR", VTranscriptWithout5UTR},
	{"VTranscript", VTranscript},
	{"VGene", VGene},
	{"VTranscriptWithout5UTRWithP", VTranscriptWithout5UTRWithP},
	{"VTranscriptWithP", VTranscriptWithP},
	{"VGeneWithP", VGeneWithP},
	{"VDJTranscriptWithout5UTR", VDJTranscriptWithout5UTR},
	{"VDJTranscript", VDJTranscript},
	{"VDJRegion", VDJRegion},
}

var (
	featureByName = make(map[string]*GeneFeature, len(registry))
	nameByKey     = make(map[string]string, len(registry))
)

func init() {
	for _, nf := range registry {
		featureByName[strings.ToLower(nf.name)] = nf.feature
		key := nf.feature.Key()
		if _, ok := nameByKey[key]; !ok {
			nameByKey[key] = nf.name
		}
	}
}

// ByName looks up a named feature, ignoring case.
func ByName(name string) (*GeneFeature, bool) {
	f, ok := featureByName[strings.ToLower(name)]
	return f, ok
}

// NameOf returns the canonical name of f if it is a named feature.
func NameOf(f *GeneFeature) (string, bool) {
	name, ok := nameByKey[f.Key()]
	return name, ok
}

// Names returns all feature names in registration order.
func Names() []string {
	names := make([]string, len(registry))
	for i, nf := range registry {
		names[i] = nf.name
	}
	return names
}

// Named returns all named features in registration order.
func Named() []*GeneFeature {
	res := make([]*GeneFeature, len(registry))
	for i, nf := range registry {
		res[i] = nf.feature
	}
	return res
}
