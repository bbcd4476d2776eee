package library

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/inodb/vibe-repseq/internal/sequence"
)

// EmbeddedScheme is the address scheme of sequences stored inside a
// library file.
const EmbeddedScheme = "embedded"

// FragmentsBuilder collects known sequence fragments, joining the ones of
// the same record that overlap or touch.
type FragmentsBuilder struct {
	byURI map[string][]FragmentData
}

// NewFragmentsBuilder returns an empty builder.
func NewFragmentsBuilder() *FragmentsBuilder {
	return &FragmentsBuilder{byURI: make(map[string][]FragmentData)}
}

// Add records seq as the content of r in the record uri. Reversed ranges
// are stored forward.
func (b *FragmentsBuilder) Add(uri string, r sequence.Range, seq sequence.Sequence) error {
	if r.Length() != seq.Len() {
		return fmt.Errorf("fragment %s%s does not match sequence length %d", uri, r, seq.Len())
	}
	if r.IsReverse() {
		r, seq = r.Inverse(), seq.ReverseComplement()
	}
	cur := FragmentData{URI: uri, Range: r, Sequence: seq}

	rest := b.byURI[uri]
	for merged := true; merged; {
		merged = false
		for i, f := range rest {
			if f.Range.Upper() < cur.Range.Lower() || cur.Range.Upper() < f.Range.Lower() {
				continue
			}
			j, err := joinFragments(f, cur)
			if err != nil {
				return err
			}
			cur, merged = j, true
			rest = append(rest[:i:i], rest[i+1:]...)
			break
		}
	}
	b.byURI[uri] = append(rest, cur)
	return nil
}

// AddFragment records a stored fragment.
func (b *FragmentsBuilder) AddFragment(f FragmentData) error {
	return b.Add(f.URI, f.Range, f.Sequence)
}

// joinFragments merges two forward fragments that overlap or touch.
func joinFragments(a, b FragmentData) (FragmentData, error) {
	if b.Range.Lower() < a.Range.Lower() {
		a, b = b, a
	}
	if ov, ok := a.Range.Intersection(b.Range); ok {
		x := a.Sequence.Slice(ov.Lower()-a.Range.Lower(), ov.Upper()-a.Range.Lower())
		y := b.Sequence.Slice(ov.Lower()-b.Range.Lower(), ov.Upper()-b.Range.Lower())
		if !x.Equal(y) {
			return FragmentData{}, fmt.Errorf("inconsistent fragments of %s at %s", a.URI, ov)
		}
	}
	if a.Range.Upper() >= b.Range.Upper() {
		return a, nil
	}
	tail := b.Sequence.Slice(a.Range.Upper()-b.Range.Lower(), b.Sequence.Len())
	return FragmentData{
		URI:      a.URI,
		Range:    sequence.NewRange(a.Range.Lower(), b.Range.Upper()),
		Sequence: sequence.Concat(a.Sequence, tail),
	}, nil
}

// Fragments returns the collected fragments ordered by record and
// position.
func (b *FragmentsBuilder) Fragments() []FragmentData {
	var res []FragmentData
	for _, fs := range b.byURI {
		res = append(res, fs...)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].URI != res[j].URI {
			return res[i].URI < res[j].URI
		}
		return res[i].Range.Lower() < res[j].Range.Lower()
	})
	return res
}

// EmbeddedStore assigns embedded:// addresses to sequences and keeps them
// as fragments. Each store uses its own random namespace.
type EmbeddedStore struct {
	prefix    string
	fragments []FragmentData
}

// NewEmbeddedStore returns a store with a fresh namespace.
func NewEmbeddedStore() *EmbeddedStore {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &EmbeddedStore{prefix: EmbeddedScheme + "://" + id + "/"}
}

// Store keeps seq under recordID and returns its base sequence.
func (s *EmbeddedStore) Store(recordID string, seq sequence.Sequence) BaseSequence {
	uri := s.prefix + recordID
	s.fragments = append(s.fragments, FragmentData{URI: uri, Range: sequence.NewRange(0, seq.Len()), Sequence: seq})
	return BaseSequence{Origin: uri}
}

// Fragments returns the stored sequences.
func (s *EmbeddedStore) Fragments() []FragmentData { return append([]FragmentData(nil), s.fragments...) }

// CompileOptions controls Compile.
type CompileOptions struct {
	// Surrounding is the number of nucleotides kept on both sides of the
	// anchors of each gene.
	Surrounding int
	// Embed moves every gene onto its own embedded sequence, so the result
	// refers to no external record.
	Embed bool
}

// Compile returns a self-contained copy of lib: the sequence around every
// gene is stored in the sequence fragments section.
func Compile(lib *Library, opts CompileOptions) (LibraryData, error) {
	data := lib.Data()
	fb := NewFragmentsBuilder()
	if !opts.Embed {
		for _, f := range data.SequenceFragments {
			if err := fb.AddFragment(f); err != nil {
				return LibraryData{}, err
			}
		}
	}
	var store *EmbeddedStore
	if opts.Embed {
		store = NewEmbeddedStore()
	}

	genes := make([]GeneData, 0, len(data.Genes))
	for _, gd := range data.Genes {
		if !gd.BaseSequence.IsPure() {
			return LibraryData{}, fmt.Errorf("gene %s: compiling mutated base sequences is not supported", gd.Name)
		}
		g, err := lib.LookupGene(gd.Name)
		if err != nil {
			return LibraryData{}, err
		}
		region, seq, err := geneRegion(g, opts.Surrounding)
		if err != nil {
			return LibraryData{}, fmt.Errorf("gene %s: %w", gd.Name, err)
		}
		if store == nil {
			if err := fb.Add(gd.BaseSequence.Origin, region, seq); err != nil {
				return LibraryData{}, err
			}
			genes = append(genes, gd)
			continue
		}
		moved, err := g.Partitioning().Move(-region.Lower())
		if err != nil {
			return LibraryData{}, fmt.Errorf("gene %s: %w", gd.Name, err)
		}
		gd.BaseSequence = store.Store(gd.Name, seq)
		gd.AnchorPoints = moved.Map()
		genes = append(genes, gd)
	}

	res := LibraryData{
		TaxonID:      data.TaxonID,
		SpeciesNames: append([]string(nil), data.SpeciesNames...),
		Genes:        genes,
		Meta:         data.Meta.Clone(),
	}
	if store != nil {
		res.SequenceFragments = store.Fragments()
	} else {
		res.SequenceFragments = fb.Fragments()
	}
	return res, nil
}

// geneRegion reads the forward region spanning the anchors of g widened by
// surrounding, clamped to the available sequence.
func geneRegion(g *Gene, surrounding int) (sequence.Range, sequence.Sequence, error) {
	core, ok := g.Partitioning().ContainingRegion()
	if !ok {
		return sequence.Range{}, sequence.Sequence{}, errors.New("no anchor points")
	}
	region := sequence.NewRange(max(core.Lower()-surrounding, 0), core.Upper()+surrounding)
	p := g.Provider()

	seq, err := p.Region(region)
	var oob *sequence.OutOfBoundsError
	var nse *sequence.NoSequenceError
	switch {
	case err == nil:
		return region, seq, nil
	case errors.As(err, &oob):
		clamped, ok := region.Intersection(oob.Available)
		if !ok || !clamped.ContainsRange(core) {
			return sequence.Range{}, sequence.Sequence{}, fmt.Errorf("wrong anchor points? %w", err)
		}
		region = clamped
	case errors.As(err, &nse):
		region = core
	default:
		return sequence.Range{}, sequence.Sequence{}, err
	}
	seq, err = p.Region(region)
	if err != nil {
		return sequence.Range{}, sequence.Sequence{}, err
	}
	return region, seq, nil
}
