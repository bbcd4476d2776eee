package library

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-repseq/internal/anchor"
	"github.com/inodb/vibe-repseq/internal/feature"
	"github.com/inodb/vibe-repseq/internal/seqbase"
	"github.com/inodb/vibe-repseq/internal/sequence"
)

// vSeq is laid out as 2 nt leader, FR1, CDR1, FR2, CDR2, FR3, 6 nt of CDR3
// and 4 nt after the gene end.
const (
	vSeq = "AA" + "CCCCCC" + "GGGGGG" + "TTTTTT" + "ACACAC" + "GTGTGTGTGTGTGT" + "CATCAT" + "GGGG"
	jSeq = "TTTGGGAAACCC"
)

func vAnchors(shift int) map[string]int {
	return map[string]int{
		"FR1Begin":  2 + shift,
		"CDR1Begin": 8 + shift,
		"FR2Begin":  14 + shift,
		"CDR2Begin": 20 + shift,
		"FR3Begin":  26 + shift,
		"CDR3Begin": 40 + shift,
		"VEnd":      46 + shift,
	}
}

func testLibrary() LibraryData {
	return LibraryData{
		TaxonID:      9606,
		SpeciesNames: []string{"hs", "HomoSapiens"},
		Genes: []GeneData{
			{
				BaseSequence: BaseSequence{Origin: "embedded://lib/TRBV12-3"},
				Name:         "TRBV12-3*01",
				GeneType:     anchor.Variable,
				IsFunctional: true,
				Chains:       TRB,
				AnchorPoints: vAnchors(0),
			},
			{
				BaseSequence: BaseSequence{Origin: "embedded://lib/TRBJ1-1"},
				Name:         "TRBJ1-1*01",
				GeneType:     anchor.Joining,
				IsFunctional: true,
				Chains:       TRB,
				AnchorPoints: map[string]int{"JBegin": 2, "CDR3End": 5, "FR4End": 12},
			},
		},
		SequenceFragments: []FragmentData{
			{URI: "embedded://lib/TRBV12-3", Range: sequence.NewRange(0, len(vSeq)), Sequence: sequence.MustParse(vSeq)},
			{URI: "embedded://lib/TRBJ1-1", Range: sequence.NewRange(0, len(jSeq)), Sequence: sequence.MustParse(jSeq)},
		},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	res := seqbase.Default(t.TempDir())
	t.Cleanup(func() { res.Close() })
	return NewRegistry(res)
}

func TestMeta(t *testing.T) {
	m := Meta{}
	m.Set("comments", "first")
	m.Add("citations", "b")
	m.Add("citations", "a")
	m.Add("citations", "a")

	v, err := m.Value("comments")
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	_, err = m.Value("citations")
	assert.Error(t, err)
	v, err = m.Value("missing")
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.Equal(t, []string{"a", "b"}, m.Values("citations"))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"comments":"first","citations":["a","b"]}`, string(data))

	var back Meta
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)

	c := m.Clone()
	c.Add("comments", "second")
	assert.Len(t, m.Values("comments"), 1)
}

func TestChains(t *testing.T) {
	tests := []struct {
		in   string
		want Chains
	}{
		{"TRB", TRB},
		{"TRA, TRB", NewChains("TRB", "TRA")},
		{"TCR", TCR},
		{"tr", TCR},
		{"IG,TRB", NewChains("IGH", "IGK", "IGL", "TRB")},
		{"ALL", AllChains},
		{"", Chains{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseChains(tt.in)), "got %s", ParseChains(tt.in))
		})
	}

	assert.True(t, TCR.Intersects(TRB))
	assert.False(t, IG.Intersects(TRB))
	assert.True(t, AllChains.Intersects(IGH))
	assert.False(t, AllChains.Intersects(Chains{}))
	assert.True(t, TCR.Intersection(NewChains("TRB", "IGH")).Equal(TRB))
	assert.True(t, AllChains.Intersection(IG).Equal(IG))
	assert.True(t, TRA.Merge(TRB).Equal(NewChains("TRA", "TRB")))
	assert.True(t, IGH.Merge(AllChains).IsAll())
	assert.True(t, Chains{}.IsEmpty())
	assert.Equal(t, "ALL", AllChains.String())
	assert.Equal(t, "TRA,TRB", NewChains("TRB", "TRA").String())

	data, err := json.Marshal(NewChains("TRB", "TRA"))
	require.NoError(t, err)
	assert.JSONEq(t, `["TRA","TRB"]`, string(data))
	var back Chains
	require.NoError(t, json.Unmarshal([]byte(`["TRB","TRA","TRB"]`), &back))
	assert.True(t, back.Equal(NewChains("TRA", "TRB")))

	_, err = json.Marshal(AllChains)
	assert.Error(t, err)
}

func TestBaseSequenceJSON(t *testing.T) {
	t.Run("pure", func(t *testing.T) {
		var b BaseSequence
		require.NoError(t, json.Unmarshal([]byte(`"file://genes.fa#chr1"`), &b))
		assert.True(t, b.IsPure())
		data, err := json.Marshal(b)
		require.NoError(t, err)
		assert.JSONEq(t, `"file://genes.fa#chr1"`, string(data))
	})
	t.Run("region and mutations", func(t *testing.T) {
		in := `{"origin":"file://genes.fa#chr1","region":{"from":10,"to":20},"mutations":"SA2T"}`
		var b BaseSequence
		require.NoError(t, json.Unmarshal([]byte(in), &b))
		assert.False(t, b.IsPure())
		assert.Equal(t, []sequence.Range{sequence.NewRange(10, 20)}, b.Regions)
		assert.Equal(t, "SA2T", b.Mutations.String())
		data, err := json.Marshal(b)
		require.NoError(t, err)
		assert.JSONEq(t, in, string(data))
	})
	t.Run("several regions", func(t *testing.T) {
		in := `{"origin":"x#y","regions":[{"from":0,"to":4},{"from":8,"to":10}]}`
		var b BaseSequence
		require.NoError(t, json.Unmarshal([]byte(in), &b))
		assert.Len(t, b.Regions, 2)
		data, err := json.Marshal(b)
		require.NoError(t, err)
		assert.JSONEq(t, in, string(data))
	})
	t.Run("mutations without region", func(t *testing.T) {
		var b BaseSequence
		err := json.Unmarshal([]byte(`{"origin":"x#y","mutations":"SA2T"}`), &b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only relative mutations are supported")
	})
	t.Run("unknown field", func(t *testing.T) {
		var b BaseSequence
		assert.Error(t, json.Unmarshal([]byte(`{"origin":"x#y","offset":3}`), &b))
	})
	t.Run("no origin", func(t *testing.T) {
		var b BaseSequence
		assert.Error(t, json.Unmarshal([]byte(`""`), &b))
	})
}

func TestBaseSequenceResolve(t *testing.T) {
	res := seqbase.Default(t.TempDir())
	defer res.Close()

	origin := "embedded://bs/rec"
	p, err := res.Resolve(seqbase.MustParseAddress("", origin))
	require.NoError(t, err)
	require.NoError(t, p.SetRegion(sequence.NewRange(0, 14), sequence.MustParse("ACGTACGTACGTAC")))

	t.Run("regions", func(t *testing.T) {
		b, err := NewBaseSequence(origin, []sequence.Range{sequence.NewRange(0, 4), sequence.NewRange(10, 14)}, sequence.Mutations{})
		require.NoError(t, err)
		prov, err := b.Resolve("", res)
		require.NoError(t, err)
		assert.Equal(t, 8, prov.Size())
		seq, err := prov.Region(sequence.NewRange(2, 6))
		require.NoError(t, err)
		assert.Equal(t, "GTGT", seq.String())
	})
	t.Run("reversed region", func(t *testing.T) {
		b, err := NewBaseSequence(origin, []sequence.Range{sequence.NewRange(4, 0)}, sequence.Mutations{})
		require.NoError(t, err)
		prov, err := b.Resolve("", res)
		require.NoError(t, err)
		seq, err := prov.Region(sequence.NewRange(0, 4))
		require.NoError(t, err)
		assert.Equal(t, "ACGT", seq.String())
	})
	t.Run("mutations", func(t *testing.T) {
		muts, err := sequence.ParseMutations("SA0TDT5")
		require.NoError(t, err)
		b, err := NewBaseSequence(origin, []sequence.Range{sequence.NewRange(0, 4), sequence.NewRange(10, 14)}, muts)
		require.NoError(t, err)
		prov, err := b.Resolve("", res)
		require.NoError(t, err)
		seq, err := prov.Region(sequence.NewRange(0, 7))
		require.NoError(t, err)
		assert.Equal(t, "TCGTGAC", seq.String())
	})
}

func TestGeneFeatures(t *testing.T) {
	reg := newTestRegistry(t)
	lib, err := reg.RegisterLibrary("", "test", testLibrary())
	require.NoError(t, err)

	v, err := lib.LookupGene("TRBV12-3*01")
	require.NoError(t, err)
	j, ok := lib.Gene("TRBJ1-1*01")
	require.True(t, ok)

	tests := []struct {
		name string
		gene *Gene
		f    *feature.GeneFeature
		want string
	}{
		{"VRegion", v, feature.VRegion, vSeq[2:46]},
		{"CDR1", v, feature.CDR1, "GGGGGG"},
		{"CDR2", v, feature.CDR2, "ACACAC"},
		{"composite", v, feature.MustParse("CDR1+CDR2"), "GGGGGGACACAC"},
		{"with offsets", v, feature.MustParse("{CDR3Begin(-2):VEnd(2)}"), "GTCATCATGG"},
		{"JRegion", j, feature.JRegion, "TGGGAAACCC"},
		{"FR4", j, feature.FR4, "GAAACCC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := tt.gene.Feature(tt.f)
			require.NoError(t, err)
			require.NotNil(t, seq)
			assert.Equal(t, tt.want, seq.String())
		})
	}

	t.Run("unavailable", func(t *testing.T) {
		seq, err := v.Feature(feature.CDR3)
		require.NoError(t, err)
		assert.Nil(t, seq)
		seq, err = v.Feature(feature.JRegion)
		require.NoError(t, err)
		assert.Nil(t, seq)
	})

	t.Run("same result for equal features", func(t *testing.T) {
		a, err := v.Feature(feature.CDR1)
		require.NoError(t, err)
		b, err := v.Feature(feature.MustParse("CDR1"))
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		got := make([]*sequence.Sequence, 8)
		for i := range got {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				got[i], _ = v.Feature(feature.FR3)
			}(i)
		}
		wg.Wait()
		for _, s := range got[1:] {
			assert.Same(t, got[0], s)
		}
	})
}

func TestGeneProperties(t *testing.T) {
	reg := newTestRegistry(t)
	lib, err := reg.RegisterLibrary("", "test", testLibrary())
	require.NoError(t, err)
	v, err := lib.LookupGene("TRBV12-3*01")
	require.NoError(t, err)

	assert.Equal(t, "TRBV12-3", v.GeneName())
	assert.Equal(t, "TRBV12", v.FamilyName())
	assert.Equal(t, anchor.Variable, v.GeneType())
	assert.True(t, v.IsFunctional())
	assert.True(t, v.Chains().Equal(TRB))
	assert.False(t, v.IsComplete())
	assert.Equal(t, GeneID{Library: LibraryID{Name: "test", TaxonID: 9606}, Name: "TRBV12-3*01"}, v.ID())
	assert.Same(t, lib, v.Library())

	names := make([]string, 0, 2)
	for _, g := range lib.Genes() {
		names = append(names, g.Name())
	}
	assert.Equal(t, []string{"TRBJ1-1*01", "TRBV12-3*01"}, names)
	assert.Len(t, lib.GenesOf(TCR), 2)
	assert.Empty(t, lib.GenesOf(IG))

	_, err = lib.LookupGene("TRBV99*01")
	var nf *GeneNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "TRBV99*01", nf.Gene)

	g, err := reg.Gene(v.ID())
	require.NoError(t, err)
	assert.Same(t, v, g)
	_, err = reg.Gene(GeneID{Library: LibraryID{Name: "other", TaxonID: 9606}, Name: "TRBV12-3*01"})
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestGeneErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(g *GeneData)
		message string
	}{
		{
			name: "unordered anchors",
			modify: func(g *GeneData) {
				g.AnchorPoints["CDR1Begin"] = 20
			},
			message: "error parsing gene TRBV12-3*01",
		},
		{
			name: "foreign anchor",
			modify: func(g *GeneData) {
				g.AnchorPoints["JBegin"] = 48
			},
			message: "does not belong to a Variable gene",
		},
		{
			name: "unknown anchor",
			modify: func(g *GeneData) {
				g.AnchorPoints["CDR9Begin"] = 48
			},
			message: "unknown reference point",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testLibrary()
			tt.modify(&data.Genes[0])
			_, err := newTestRegistry(t).RegisterLibrary("", "test", data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	t.Run("duplicate gene", func(t *testing.T) {
		data := testLibrary()
		data.Genes = append(data.Genes, data.Genes[0])
		_, err := newTestRegistry(t).RegisterLibrary("", "test", data)
		assert.ErrorContains(t, err, "duplicate gene")
	})
}

func TestRegistry(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.RegisterLibrary("", "test", testLibrary())
	require.NoError(t, err)

	t.Run("duplicate library", func(t *testing.T) {
		_, err := reg.RegisterLibrary("", "test", testLibrary())
		assert.ErrorContains(t, err, "duplicate library")
	})

	t.Run("species", func(t *testing.T) {
		for _, name := range []string{"hs", "HomoSapiens", "homosapiens", "9606"} {
			taxon, err := reg.ResolveSpecies(name)
			require.NoError(t, err, name)
			assert.Equal(t, int64(9606), taxon)
		}
		_, err := reg.ResolveSpecies("mmu")
		assert.Error(t, err)
		assert.Equal(t, []string{"hs", "HomoSapiens"}, reg.SpeciesNames(9606))
	})

	t.Run("species conflict", func(t *testing.T) {
		data := testLibrary()
		data.TaxonID = 10090
		_, err := reg.RegisterLibrary("", "mouse", data)
		assert.ErrorContains(t, err, "mismatch in common species name")
	})

	t.Run("lookup", func(t *testing.T) {
		lib, err := reg.Library("test", "hs")
		require.NoError(t, err)
		assert.Equal(t, "test", lib.Name())
		_, err = reg.Library("other", "hs")
		assert.ErrorIs(t, err, ErrLibraryNotFound)
	})
}

func TestRegistrySearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(dir, "packed.json.gz"), []LibraryData{testLibrary()}))

	reg := newTestRegistry(t)
	reg.AddSearchPath(dir)

	lib, err := reg.Library("packed", "9606")
	require.NoError(t, err)
	assert.Equal(t, "packed", lib.Name())
	assert.Equal(t, dir, lib.Dir())

	again, err := reg.Library("packed", "HomoSapiens")
	require.NoError(t, err)
	assert.Same(t, lib, again)
	assert.Len(t, reg.Libraries(), 1)

	_, err = reg.Library("missing", "hs")
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestLibraryFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, []LibraryData{testLibrary()}))

			back, err := ReadFile(path)
			require.NoError(t, err)
			require.Len(t, back, 1)
			assert.Equal(t, int64(9606), back[0].TaxonID)
			require.Len(t, back[0].Genes, 2)
			assert.Equal(t, vAnchors(0), back[0].Genes[0].AnchorPoints)

			libs, err := newTestRegistry(t).RegisterFile(path, "")
			require.NoError(t, err)
			require.Len(t, libs, 1)
			assert.Equal(t, strings.SplitN(name, ".", 2)[0], libs[0].Name())
		})
	}

	t.Run("plain json layout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteLibraries(&buf, []LibraryData{testLibrary()}))
		out := buf.String()
		assert.Contains(t, out, `"taxonId":9606`)
		assert.Contains(t, out, `"geneType":"V"`)
		assert.Contains(t, out, `"baseSequence":"embedded://lib/TRBV12-3"`)
	})
}

func TestNameFromFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/imgt.json", "imgt"},
		{"imgt.201918-4.sv6.json.gz", "imgt.201918-4.sv6"},
		{"dir/custom", "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NameFromFile(tt.path))
		})
	}
}

func TestChecksum(t *testing.T) {
	a, err := newTestRegistry(t).RegisterLibrary("", "test", testLibrary())
	require.NoError(t, err)
	b, err := newTestRegistry(t).RegisterLibrary("", "test", testLibrary())
	require.NoError(t, err)

	sa, err := a.Checksum()
	require.NoError(t, err)
	sb, err := b.Checksum()
	require.NoError(t, err)
	assert.Len(t, sa, 32)
	assert.Equal(t, sa, sb)

	data := testLibrary()
	data.SequenceFragments[0].Sequence = sequence.MustParse(strings.Replace(vSeq, "GGGGGG", "GGGAGG", 1))
	c, err := newTestRegistry(t).RegisterLibrary("", "test", data)
	require.NoError(t, err)
	sc, err := c.Checksum()
	require.NoError(t, err)
	assert.NotEqual(t, sa, sc)

	id, err := a.IDWithChecksum()
	require.NoError(t, err)
	assert.Equal(t, "test:9606 ("+sa+")", id.String())
}

func TestFragmentsBuilder(t *testing.T) {
	const rec = "ACGTACGTACGTACGTACGT"
	part := func(from, to int) sequence.Sequence { return sequence.MustParse(rec[from:to]) }

	b := NewFragmentsBuilder()
	require.NoError(t, b.Add("x", sequence.NewRange(0, 4), part(0, 4)))
	require.NoError(t, b.Add("x", sequence.NewRange(8, 12), part(8, 12)))
	require.NoError(t, b.Add("y", sequence.NewRange(0, 2), part(0, 2)))
	require.Len(t, b.Fragments(), 3)

	// bridges both fragments of x
	require.NoError(t, b.Add("x", sequence.NewRange(3, 9), part(3, 9)))
	frs := b.Fragments()
	require.Len(t, frs, 2)
	assert.Equal(t, "x", frs[0].URI)
	assert.Equal(t, sequence.NewRange(0, 12), frs[0].Range)
	assert.Equal(t, rec[0:12], frs[0].Sequence.String())

	// reversed ranges are stored forward
	require.NoError(t, b.Add("x", sequence.NewRange(16, 12), part(12, 16).ReverseComplement()))
	frs = b.Fragments()
	assert.Equal(t, sequence.NewRange(0, 16), frs[0].Range)
	assert.Equal(t, rec[0:16], frs[0].Sequence.String())

	err := b.Add("x", sequence.NewRange(2, 6), sequence.MustParse("TTTT"))
	assert.ErrorContains(t, err, "inconsistent fragments")
	assert.Error(t, b.Add("x", sequence.NewRange(2, 6), sequence.MustParse("TT")))
}

// writeGenome writes a FASTA file holding vSeq with 5 nt on both sides.
func writeGenome(t *testing.T, dir string) {
	t.Helper()
	content := ">chr\n" + "TTTTT" + vSeq + "AAAAA" + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "genes.fa"), []byte(content), 0o644))
}

func fileLibrary() LibraryData {
	return LibraryData{
		TaxonID:      9606,
		SpeciesNames: []string{"hs"},
		Genes: []GeneData{{
			BaseSequence: BaseSequence{Origin: "file://genes.fa#chr"},
			Name:         "TRBV12-3*01",
			GeneType:     anchor.Variable,
			IsFunctional: true,
			Chains:       TRB,
			AnchorPoints: vAnchors(5),
		}},
		Meta: Meta{"comments": {"test"}},
	}
}

func TestCompile(t *testing.T) {
	dir := t.TempDir()
	writeGenome(t, dir)

	reg := newTestRegistry(t)
	lib, err := reg.RegisterLibrary(dir, "test", fileLibrary())
	require.NoError(t, err)
	want, err := lib.LookupGene("TRBV12-3*01")
	require.NoError(t, err)
	wantSeq, err := want.Feature(feature.VRegion)
	require.NoError(t, err)
	require.NotNil(t, wantSeq)
	assert.Equal(t, vSeq[2:46], wantSeq.String())

	t.Run("fragments", func(t *testing.T) {
		data, err := Compile(lib, CompileOptions{Surrounding: 3})
		require.NoError(t, err)
		require.Len(t, data.SequenceFragments, 1)
		fr := data.SequenceFragments[0]
		assert.Equal(t, "file://genes.fa#chr", fr.URI)
		assert.Equal(t, sequence.NewRange(4, 54), fr.Range)
		assert.Equal(t, data.Genes[0].AnchorPoints, vAnchors(5))
		assert.Equal(t, []string{"test"}, data.Meta.Values("comments"))

		// the compiled library no longer needs the FASTA file
		other := t.TempDir()
		lib2, err := newTestRegistry(t).RegisterLibrary(other, "test", data)
		require.NoError(t, err)
		g, err := lib2.LookupGene("TRBV12-3*01")
		require.NoError(t, err)
		seq, err := g.Feature(feature.VRegion)
		require.NoError(t, err)
		assert.Equal(t, wantSeq.String(), seq.String())
	})

	t.Run("embedded", func(t *testing.T) {
		data, err := Compile(lib, CompileOptions{Surrounding: 3, Embed: true})
		require.NoError(t, err)
		require.Len(t, data.SequenceFragments, 1)
		gd := data.Genes[0]
		assert.True(t, strings.HasPrefix(gd.BaseSequence.Origin, EmbeddedScheme+"://"))
		assert.Equal(t, gd.BaseSequence.Origin, data.SequenceFragments[0].URI)
		assert.Equal(t, 3, gd.AnchorPoints["FR1Begin"])
		assert.Equal(t, vAnchors(1), gd.AnchorPoints)

		lib2, err := newTestRegistry(t).RegisterLibrary("", "test", data)
		require.NoError(t, err)
		g, err := lib2.LookupGene("TRBV12-3*01")
		require.NoError(t, err)
		seq, err := g.Feature(feature.VRegion)
		require.NoError(t, err)
		assert.Equal(t, wantSeq.String(), seq.String())

		sum1, err := lib.Checksum()
		require.NoError(t, err)
		sum2, err := lib2.Checksum()
		require.NoError(t, err)
		assert.Equal(t, sum1, sum2)
	})

	t.Run("clamped to record", func(t *testing.T) {
		data, err := Compile(lib, CompileOptions{Surrounding: 10})
		require.NoError(t, err)
		assert.Equal(t, sequence.NewRange(0, 60), data.SequenceFragments[0].Range)
	})

	t.Run("mutated base sequence", func(t *testing.T) {
		d := fileLibrary()
		muts, err := sequence.ParseMutations("SC7A")
		require.NoError(t, err)
		d.Genes[0].BaseSequence = BaseSequence{Origin: "file://genes.fa#chr", Regions: []sequence.Range{sequence.NewRange(0, 60)}, Mutations: muts}
		l, err := newTestRegistry(t).RegisterLibrary(dir, "test", d)
		require.NoError(t, err)
		_, err = Compile(l, CompileOptions{})
		assert.ErrorContains(t, err, "not supported")
	})
}
