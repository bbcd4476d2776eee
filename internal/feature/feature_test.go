package feature

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/inodb/vibe-repseq/internal/anchor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// create builds a feature from pairs of germline anchor indices.
func create(t *testing.T, indexes ...int) *GeneFeature {
	t.Helper()
	return createWithOffsets(t, indexes, make([]int, len(indexes)))
}

func createWithOffsets(t *testing.T, indexes, offsets []int) *GeneFeature {
	t.Helper()
	require.Equal(t, 0, len(indexes)%2)
	parts := make([]*GeneFeature, 0, len(indexes)/2)
	for i := 0; i < len(indexes); i += 2 {
		parts = append(parts, New(
			anchor.ByIndex(indexes[i]).Move(offsets[i]),
			anchor.ByIndex(indexes[i+1]).Move(offsets[i+1])))
	}
	f, err := Merge(parts...)
	require.NoError(t, err)
	return f
}

func assertFeature(t *testing.T, want, got *GeneFeature) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %#v, got %#v", want, got)
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		parts [][]int
		want  []int
	}{
		{"disjoint", [][]int{{1, 3}, {4, 5}}, []int{1, 3, 4, 5}},
		{"adjacent", [][]int{{1, 5}, {5, 6}, {6, 9}}, []int{1, 9}},
		{"partially adjacent", [][]int{{1, 5}, {6, 7}, {7, 9}}, []int{1, 5, 6, 9}},
		{"gaps", [][]int{{1, 5}, {8, 10}, {11, 12}}, []int{1, 5, 8, 10, 11, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parts []*GeneFeature
			for _, p := range tt.parts {
				parts = append(parts, create(t, p...))
			}
			got, err := Merge(parts...)
			require.NoError(t, err)
			assertFeature(t, create(t, tt.want...), got)
		})
	}
}

func TestMergeOverlap(t *testing.T) {
	for _, pair := range [][2][]int{
		{{1, 5}, {3, 7}},
		{{1, 5}, {1, 7}},
		{{1, 7}, {1, 5}},
	} {
		_, err := Merge(create(t, pair[0]...), create(t, pair[1]...))
		assert.ErrorIs(t, err, ErrOverlap)
	}

	_, err := Merge()
	assert.Error(t, err)
}

func TestMergeWithOffsets(t *testing.T) {
	tests := []struct {
		name       string
		f1, f2, f3 []int // index1, index2, offset1, offset2
		wantIdx    []int
		wantOff    []int
	}{
		{
			name: "merge on equal offsets",
			f1:   []int{1, 3, -2, 0}, f2: []int{3, 5, 1, 1}, f3: []int{5, 7, 1, 5},
			wantIdx: []int{1, 3, 3, 7}, wantOff: []int{-2, 0, 1, 5},
		},
		{
			name: "merge across anchors",
			f1:   []int{1, 3, -2, 0}, f2: []int{3, 5, 1, -1}, f3: []int{5, 7, -1, 5},
			wantIdx: []int{1, 3, 3, 7}, wantOff: []int{-2, 0, 1, 5},
		},
		{
			name: "gap between offsets",
			f1:   []int{1, 3, -2, 0}, f2: []int{3, 5, 1, -3}, f3: []int{5, 7, -2, 5},
			wantIdx: []int{1, 3, 3, 5, 5, 7}, wantOff: []int{-2, 0, 1, -3, -2, 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mk := func(v []int) *GeneFeature {
				return createWithOffsets(t, v[:2], v[2:])
			}
			got, err := Merge(mk(tt.f2), mk(tt.f1), mk(tt.f3))
			require.NoError(t, err)
			want := createWithOffsets(t, tt.wantIdx, tt.wantOff)
			assertFeature(t, want, got)
			assert.Equal(t, len(tt.wantIdx)/2, got.Size())
		})
	}
}

func TestWithOffsets(t *testing.T) {
	f := createWithOffsets(t, []int{1, 3}, []int{-2, 0})
	assertFeature(t, createWithOffsets(t, []int{1, 3}, []int{-3, 2}), WithOffsets(f, -1, 2))

	f1 := MustMerge(
		createWithOffsets(t, []int{1, 3}, []int{-2, 0}),
		createWithOffsets(t, []int{4, 5}, []int{-2, 4}))
	f2 := MustMerge(
		createWithOffsets(t, []int{1, 3}, []int{-6, 0}),
		createWithOffsets(t, []int{4, 5}, []int{-2, 2}))
	assertFeature(t, f2, WithOffsets(f1, -4, -2))

	// the source is left untouched
	assert.Equal(t, -2, f1.FirstPoint().Offset())
}

func TestReversedRanges(t *testing.T) {
	gf, err := Parse("{FR1Begin:VEnd}+{VEnd:VEnd(-20)}")
	require.NoError(t, err)
	assert.Equal(t, 2, gf.Size())
	assert.True(t, gf.HasReversedRanges())

	gf, err = MustParse("{FR1Begin:VEnd}").Append(MustParse("{VEnd:VEnd(-20)}"))
	require.NoError(t, err)
	assert.Equal(t, 2, gf.Size())

	assert.Equal(t, 2, VGeneWithP.Size())
	assert.Equal(t, 3, DRegionWithP.Size())
}

func TestReverse(t *testing.T) {
	assertFeature(t, New(anchor.DEnd, anchor.DBegin), DRegion.Reverse())
	assertFeature(t, VRegionWithP, VRegionWithP.Reverse().Reverse())
}

func TestIntersection(t *testing.T) {
	tests := []struct {
		name   string
		f1, f2 *GeneFeature
		want   *GeneFeature
	}{
		{"inside second range", create(t, 1, 5, 7, 9), create(t, 8, 9), create(t, 8, 9)},
		{"inside wider range", create(t, 1, 5, 7, 10), create(t, 8, 9), create(t, 8, 9)},
		{"shared gaps", create(t, 1, 5, 7, 9, 10, 12), create(t, 2, 5, 7, 9, 10, 11), create(t, 2, 5, 7, 9, 10, 11)},
		{"shared gaps swapped", create(t, 2, 5, 7, 9, 10, 11), create(t, 1, 5, 7, 9, 10, 12), create(t, 2, 5, 7, 9, 10, 11)},
		{"shared gaps shifted", create(t, 2, 5, 7, 9, 10, 12), create(t, 1, 5, 7, 9, 10, 11), create(t, 2, 5, 7, 9, 10, 11)},
		{"tail", create(t, 8, 9, 10, 11), create(t, 1, 5, 7, 9, 10, 12), create(t, 8, 9, 10, 11)},
		{"tail swapped", create(t, 1, 5, 7, 9, 10, 12), create(t, 8, 9, 10, 11), create(t, 8, 9, 10, 11)},
		{
			"offsets",
			createWithOffsets(t, []int{1, 5, 7, 9, 10, 12}, []int{-3, 0, 1, -3, -2, 4}),
			createWithOffsets(t, []int{1, 5, 7, 9, 10, 12}, []int{-2, 0, 1, -3, -2, 5}),
			createWithOffsets(t, []int{1, 5, 7, 9, 10, 12}, []int{-2, 0, 1, -3, -2, 4}),
		},
		{
			"offsets inside range",
			createWithOffsets(t, []int{1, 5, 7, 9, 10, 12}, []int{-3, 0, 1, -4, -2, 4}),
			createWithOffsets(t, []int{7, 9}, []int{2, -4}),
			createWithOffsets(t, []int{7, 9}, []int{2, -4}),
		},
		{"whole range", create(t, 1, 5, 7, 9, 10, 12), create(t, 7, 9), create(t, 7, 9)},
		{"disjoint", CDR3, CExon1, nil},
		{"disjoint swapped", CExon1, CDR3, nil},
		{"with P same", VRegionWithP, VRegionWithP, VRegionWithP},
		{"D with P same", DRegionWithP, DRegionWithP, DRegionWithP},
		{"V with P and CDR3", VRegionWithP, CDR3, MustMerge(GermlineVCDR3Part, GermlineVPSegment)},
		{"D with P and D", DRegionWithP, DRegion, DRegionWithP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Intersection(tt.f1, tt.f2)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assertFeature(t, tt.want, got)
		})
	}
}

func TestIntersectionIncompatible(t *testing.T) {
	tests := []struct {
		name   string
		f1, f2 *GeneFeature
	}{
		{"starts in gap", create(t, 1, 5, 7, 9), create(t, 6, 9)},
		{"different gaps", create(t, 1, 5, 7, 9), create(t, 2, 5, 6, 9)},
		{"starts in gap of longer", create(t, 6, 9, 10, 11), create(t, 1, 5, 7, 9, 10, 12)},
		{
			"different inner offsets",
			createWithOffsets(t, []int{1, 5, 7, 9, 10, 12}, []int{-3, 0, 2, -3, -2, 4}),
			createWithOffsets(t, []int{1, 5, 7, 9, 10, 12}, []int{-2, 0, 1, -3, -2, 5}),
		},
		{
			"begins before range",
			createWithOffsets(t, []int{1, 5, 7, 9, 10, 12}, []int{-3, 0, 1, -3, -2, 4}),
			createWithOffsets(t, []int{7, 9}, []int{0, -3}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Intersection(tt.f1, tt.f2)
			assert.ErrorIs(t, err, ErrIncompatible)
		})
	}
}

func TestIntersectionReversedTails(t *testing.T) {
	aa1 := MustMerge(VRegion, New(anchor.VEnd, anchor.VEnd.Move(-20)))
	aa2 := MustMerge(VRegion, New(anchor.VEnd, anchor.VEnd.Move(-15)))
	got, err := Intersection(aa1, aa2)
	require.NoError(t, err)
	assertFeature(t, aa2, got)

	dd1 := MustMerge(New(anchor.DEnd.Move(-3), anchor.DBegin), DRegion, GermlineDPSegment)
	dd2 := MustMerge(GermlineDPSegment, DRegion, New(anchor.DEnd, anchor.DBegin.Move(3)))
	dd3 := MustMerge(New(anchor.DEnd.Move(-3), anchor.DBegin), DRegion, New(anchor.DEnd, anchor.DBegin.Move(3)))
	got, err = Intersection(dd1, dd2)
	require.NoError(t, err)
	assertFeature(t, dd3, got)
}

func TestIntersectionStrict(t *testing.T) {
	got, err := IntersectionStrict(DRegionWithP, DRegion)
	require.NoError(t, err)
	assertFeature(t, DRegion, got)

	got, err = IntersectionStrict(DRegionWithP, DRegionWithP)
	require.NoError(t, err)
	assertFeature(t, DRegionWithP, got)
}

func TestMergeRandom(t *testing.T) {
	rnd := rand.New(rand.NewPCG(44497, 1))
	n := anchor.PureCount
	for block := 2; block < 5; block++ {
		for i := 0; i < 1000; i++ {
			covered := make([]bool, n)
			var parts []*GeneFeature
			end := 0
			for {
				begin := end + rnd.IntN(block)
				end = begin + 1 + rnd.IntN(block)
				if end >= n {
					break
				}
				for j := begin; j < end; j++ {
					covered[j] = true
				}
				parts = append(parts, create(t, begin, end))
			}
			if len(parts) == 0 {
				continue
			}

			var points []int
			if covered[0] {
				points = append(points, 0)
			}
			for j := 1; j < n; j++ {
				if covered[j] != covered[j-1] {
					points = append(points, j)
				}
			}

			got, err := Merge(parts...)
			require.NoError(t, err)
			assertFeature(t, create(t, points...), got)
			assert.Equal(t, len(points)/2, got.Size())
		}
	}
}

func TestContains(t *testing.T) {
	for _, f := range []*GeneFeature{VJJunction, VDJunction, DJJunction, CDR3} {
		ok, err := CDR3.Contains(f)
		require.NoError(t, err)
		assert.True(t, ok, f.String())
	}
	for _, f := range []*GeneFeature{FR2, CDR1, V5UTRGermline} {
		ok, err := CDR3.Contains(f)
		require.NoError(t, err)
		assert.False(t, ok, f.String())
	}

	ok, err := VRegion.Contains(VCDR3Part)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = VTranscript.Contains(VTranscriptWithout5UTR)
	assert.Error(t, err)
}

func TestFrameReference(t *testing.T) {
	p, ok := FrameReference(VTranscriptWithout5UTR)
	require.True(t, ok)
	assert.Equal(t, anchor.L1Begin, p)

	p, ok = FrameReference(CDR3)
	require.True(t, ok)
	assert.Equal(t, anchor.CDR3Begin, p)

	_, ok = FrameReference(DRegion)
	assert.False(t, ok)
	// cached negative result
	_, ok = FrameReference(DRegion)
	assert.False(t, ok)
}

func TestCodingFeature(t *testing.T) {
	tests := []struct {
		in   *GeneFeature
		want *GeneFeature
	}{
		{VGene, VTranscriptWithout5UTR},
		{VTranscriptWithout5UTR, VTranscriptWithout5UTR},
		{VDJTranscript, VDJTranscriptWithout5UTR},
		{MustParse("{DBegin(-20):FR4End(20)}"), MustParse("{DBegin(-20):FR4End}")},
		{MustParse("{DBegin(1):FR4End(20)}"), MustParse("{DBegin(1):FR4End}")},
		{MustParse("{CDR3Begin(-10):CDR3Begin(-1)}"), MustParse("{CDR3Begin(-10):CDR3Begin(-1)}")},
		{VIntron, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			for range 2 { // second pass is served from the cache
				got, err := CodingFeature(tt.in)
				require.NoError(t, err)
				if tt.want == nil {
					assert.Nil(t, got)
					continue
				}
				assertFeature(t, tt.want, got)
			}
		})
	}
}

func TestGeneTypeAndRegion(t *testing.T) {
	assert.Equal(t, anchor.Variable, VTranscript.GeneType())
	assert.Equal(t, anchor.Joining, FR4.GeneType())
	assert.Equal(t, anchor.Unknown, CDR3.GeneType())
	assert.Equal(t, anchor.Unknown, VDJRegion.GeneType())

	for _, g := range anchor.GeneTypes {
		assert.Equal(t, g, Region(g).GeneType())
	}

	assert.True(t, VCDR3Part.IsAlignmentAttached())
	assert.False(t, VRegion.IsAlignmentAttached())
	assert.True(t, VTranscript.IsComposite())
	assert.False(t, CDR3.IsComposite())
}

func TestParseEncode(t *testing.T) {
	for _, s := range []string{
		"CDR3",
		"CDR3(1, -2)",
		"CDR3(-31,-2)",
		"CDR1(3, 2)+CDR3(-31,-2)",
		"{FR1Begin:FR3End}",
		"{FR1Begin:FR3End}+JRegion",
		"{FR1Begin:FR3End}+JRegion+CExon1(-3,12)",
		"{FR1Begin(-33):FR3End(3)}+JRegion+CExon1(-3,12)",
		"CDR3Begin(0, 10)",
		"V5UTRBeginTrimmed(0, 10)",
	} {
		t.Run(s, func(t *testing.T) {
			f, err := Parse(s)
			require.NoError(t, err)
			assert.Equal(t, removeSpaces(s), Encode(f))
		})
	}
}

func TestParse(t *testing.T) {
	f, err := Parse("JRegion")
	require.NoError(t, err)
	assertFeature(t, JRegion, f)

	f, err = Parse("jregion")
	require.NoError(t, err)
	assertFeature(t, JRegion, f)

	f, err = Parse("null")
	require.NoError(t, err)
	assert.Nil(t, f)

	for _, bad := range []string{
		"CDR3Begin",
		"Nothing",
		"CDR3(1)",
		"CDR3(1,x)",
		"CDR3(1,2",
		"{CDR3Begin}",
		"{CDR3Begin:Nowhere}",
		"CDR3+",
		"CDR3+CDR3",
		"",
	} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestEncodeAllNamed(t *testing.T) {
	for _, f := range Named() {
		got, err := Parse(Encode(f))
		require.NoError(t, err)
		assertFeature(t, f, got)
	}

	name, ok := NameOf(Exon1)
	require.True(t, ok)
	assert.Equal(t, "L1", name)

	name, ok = NameOf(DRegionTrimmed)
	require.True(t, ok)
	assert.Equal(t, "DCDR3Part", name)
}

func TestJSON(t *testing.T) {
	type holder struct {
		Feature *GeneFeature `json:"feature"`
	}
	data, err := json.Marshal(holder{Feature: WithOffsets(CDR3, 3, 0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"feature":"CDR3(3,0)"}`, string(data))

	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"feature":"VTranscriptWithout5UTR"}`), &h))
	assertFeature(t, VTranscriptWithout5UTR, h.Feature)
}

func removeSpaces(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
