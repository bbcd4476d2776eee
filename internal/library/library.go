package library

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
)

// LibraryID identifies a library by name and species. Checksum is the hex
// digest of the library sequences when known.
type LibraryID struct {
	Name     string
	TaxonID  int64
	Checksum string
}

func (id LibraryID) String() string {
	s := fmt.Sprintf("%s:%d", id.Name, id.TaxonID)
	if id.Checksum != "" {
		s += " (" + id.Checksum + ")"
	}
	return s
}

func (id LibraryID) key() libraryKey { return libraryKey{id.Name, id.TaxonID} }

type libraryKey struct {
	name  string
	taxon int64
}

// GeneNotFoundError is returned when a library has no gene of the
// requested name.
type GeneNotFoundError struct {
	Gene    string
	Library LibraryID
}

func (e *GeneNotFoundError) Error() string {
	return fmt.Sprintf("gene %s not found in library %s", e.Gene, e.Library)
}

// Library is the set of genes of one species loaded into a registry.
type Library struct {
	data     LibraryData
	name     string
	registry *Registry
	dir      string
	genes    map[string]*Gene

	checksumOnce sync.Once
	checksum     string
	checksumErr  error
}

// Name returns the library name.
func (l *Library) Name() string { return l.name }

// TaxonID returns the NCBI taxon id of the species.
func (l *Library) TaxonID() int64 { return l.data.TaxonID }

// Data returns the stored form of the library.
func (l *Library) Data() LibraryData { return l.data }

// Dir returns the directory relative sequence addresses are resolved in.
func (l *Library) Dir() string { return l.dir }

// Registry returns the registry the library is loaded into.
func (l *Library) Registry() *Registry { return l.registry }

// ID returns the library id without checksum.
func (l *Library) ID() LibraryID { return LibraryID{Name: l.name, TaxonID: l.data.TaxonID} }

// IDWithChecksum returns the id including the sequence checksum.
func (l *Library) IDWithChecksum() (LibraryID, error) {
	sum, err := l.Checksum()
	if err != nil {
		return LibraryID{}, err
	}
	id := l.ID()
	id.Checksum = sum
	return id, nil
}

// Genes returns all genes sorted by name.
func (l *Library) Genes() []*Gene {
	res := make([]*Gene, 0, len(l.genes))
	for _, g := range l.genes {
		res = append(res, g)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

// GenesOf returns the genes that can be part of any of chains.
func (l *Library) GenesOf(chains Chains) []*Gene {
	var res []*Gene
	for _, g := range l.Genes() {
		if g.Chains().Intersects(chains) {
			res = append(res, g)
		}
	}
	return res
}

// Gene returns the gene with the given full name.
func (l *Library) Gene(name string) (*Gene, bool) {
	g, ok := l.genes[name]
	return g, ok
}

// LookupGene is like Gene but returns a *GeneNotFoundError for unknown
// names.
func (l *Library) LookupGene(name string) (*Gene, error) {
	g, ok := l.genes[name]
	if !ok {
		return nil, &GeneNotFoundError{Gene: name, Library: l.ID()}
	}
	return g, nil
}

// Checksum returns the MD5 digest of the sequences spanned by the anchors
// of every gene, taken in library order. It reads the sequences on first
// use.
func (l *Library) Checksum() (string, error) {
	l.checksumOnce.Do(func() {
		genes := l.Genes()
		sort.SliceStable(genes, func(i, j int) bool {
			a, b := genes[i].data, genes[j].data
			if a.GeneType != b.GeneType {
				return a.GeneType < b.GeneType
			}
			return a.Name < b.Name
		})
		h := md5.New()
		for _, g := range genes {
			seq, err := g.Feature(g.Partitioning().WrappingGeneFeature())
			if err != nil {
				l.checksumErr = fmt.Errorf("checksum of %s: %w", l.name, err)
				return
			}
			if seq != nil {
				h.Write([]byte(seq.String()))
			}
		}
		l.checksum = hex.EncodeToString(h.Sum(nil))
	})
	return l.checksum, l.checksumErr
}
