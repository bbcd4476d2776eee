package anchor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOrdering(t *testing.T) {
	all := Catalog()
	require.Len(t, all, ExtendedCount)

	pure := 0
	lastIndex := -1
	for i, a := range all {
		assert.Equal(t, i, a.Slot)
		if a.IsPure() {
			assert.Greater(t, a.Index, lastIndex, "germline indices increase along %s", a.Name)
			lastIndex = a.Index
			pure++
		}
	}
	assert.Equal(t, PureCount, pure)

	for i := 0; i < PureCount; i++ {
		assert.Equal(t, i, ByIndex(i).Index())
	}
}

func TestGeneTypeOfAnchorsIsMonotonic(t *testing.T) {
	prev := Variable
	for _, a := range Catalog() {
		assert.GreaterOrEqual(t, a.GeneType, prev, a.Name)
		prev = a.GeneType
	}
}

func TestTrimmedTwins(t *testing.T) {
	tests := []struct {
		point   ReferencePoint
		trimmed ReferencePoint
	}{
		{V5UTRBegin, V5UTRBeginTrimmed},
		{VEnd, VEndTrimmed},
		{DBegin, DBeginTrimmed},
		{DEnd, DEndTrimmed},
		{JBegin, JBeginTrimmed},
	}
	for _, tt := range tests {
		t.Run(tt.point.String(), func(t *testing.T) {
			got, ok := tt.point.Trimmed()
			require.True(t, ok)
			assert.Equal(t, tt.trimmed, got)
			assert.True(t, got.IsAttachedToAlignmentBound())
			// trimmed variant is ranked next to its germline twin
			assert.Equal(t, 1, abs(got.Slot()-tt.point.Slot()))
		})
	}

	_, ok := CDR3Begin.Trimmed()
	assert.False(t, ok)
}

func TestActivationPoints(t *testing.T) {
	p, ok := VEndTrimmed.Activation()
	require.True(t, ok)
	assert.Equal(t, CDR3Begin.Move(-3), p)

	p, ok = JBeginTrimmed.Activation()
	require.True(t, ok)
	assert.Equal(t, CDR3End.Move(3), p)

	p, ok = V5UTRBeginTrimmed.Activation()
	require.True(t, ok)
	assert.Equal(t, V5UTREnd, p)

	_, ok = DBeginTrimmed.Activation()
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	assert.True(t, FR1Begin.Less(VEnd))
	assert.True(t, VEndTrimmed.Less(VEnd))
	assert.True(t, VEnd.Move(-20).Less(VEnd))
	assert.True(t, VEndTrimmed.Less(VEnd.Move(-20)))
	assert.Equal(t, 0, CDR3Begin.Compare(FR3End))
	assert.Equal(t, 1, CDR3End.Compare(CDR3Begin.Move(100)))
}

func TestMove(t *testing.T) {
	p := CDR3Begin.Move(3).Move(-5)
	assert.Equal(t, -2, p.Offset())
	assert.True(t, p.SameAnchor(CDR3Begin))
	assert.Equal(t, CDR3Begin, p.WithoutOffset())
	assert.True(t, p.HasOffset())
}

func TestEncodeNames(t *testing.T) {
	tests := []struct {
		point ReferencePoint
		begin string
		end   string
	}{
		{L1Begin, "L1Begin", "V5UTREnd"},
		{FR3End, "CDR3Begin", "FR3End"},
		{CDR3End, "FR4Begin", "CDR3End"},
		{VEnd, "VEnd", "VEnd"},
		{DBeginTrimmed, "DBeginTrimmed", "DBeginTrimmed"},
		{FR1Begin.Move(-33), "FR1Begin(-33)", "L2End(-33)"},
		{VEnd.Move(4), "VEnd(4)", "VEnd(4)"},
	}
	for _, tt := range tests {
		t.Run(tt.begin, func(t *testing.T) {
			assert.Equal(t, tt.begin, tt.point.Encode(true))
			assert.Equal(t, tt.end, tt.point.Encode(false))
		})
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in   string
		want ReferencePoint
	}{
		{"CDR3Begin", CDR3Begin},
		{"cdr3begin", CDR3Begin},
		{"FR3End", CDR3Begin},
		{"CDR3Begin(-3)", CDR3Begin.Move(-3)},
		{"CDR3End(+3)", CDR3End.Move(3)},
		{"VEnd(20)", VEnd.Move(20)},
		{" VEnd ( -2 ) ", VEnd.Move(-2)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePoint(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"Nowhere", "VEnd(x)", "VEnd(3"} {
		_, err := ParsePoint(bad)
		assert.Error(t, err, bad)
	}
}

func TestPointRoundTrip(t *testing.T) {
	for _, a := range Catalog() {
		for _, off := range []int{0, 5, -7} {
			p := BySlot(a.Slot).Move(off)
			for _, begin := range []bool{true, false} {
				got, err := ParsePoint(p.Encode(begin))
				require.NoError(t, err)
				assert.Equal(t, p, got)
			}
		}
	}
}

func TestTripletBoundary(t *testing.T) {
	assert.True(t, CDR3Begin.IsTripletBoundary())
	assert.True(t, CDR3Begin.Move(-3).IsTripletBoundary())
	assert.False(t, CDR3Begin.Move(1).IsTripletBoundary())
	assert.False(t, VEnd.IsTripletBoundary())
}

func TestGeneType(t *testing.T) {
	for _, g := range GeneTypes {
		got, err := ParseGeneType(string(g.Letter()))
		require.NoError(t, err)
		assert.Equal(t, g, got)

		got, err = ParseGeneType(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, got)
	}

	g, err := ParseGeneType("j")
	require.NoError(t, err)
	assert.Equal(t, Joining, g)

	_, err = ParseGeneType("X")
	assert.Error(t, err)

	assert.Equal(t, 1, Variable.CDR3Side())
	assert.Equal(t, -1, Joining.CDR3Side())
	assert.Equal(t, Diversity, DBegin.GeneType())
}

func TestGeneTypeJSON(t *testing.T) {
	data, err := json.Marshal(Joining)
	require.NoError(t, err)
	assert.Equal(t, `"J"`, string(data))

	var g GeneType
	require.NoError(t, json.Unmarshal([]byte(`"d"`), &g))
	assert.Equal(t, Diversity, g)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
