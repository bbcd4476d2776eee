// Package library loads V/D/J/C gene libraries: gene records with their
// base sequences and anchor points, grouped per species, and serves gene
// features extracted from them.
package library

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/vibe-repseq/internal/anchor"
	"github.com/inodb/vibe-repseq/internal/sequence"
)

// GeneData is the stored form of a gene.
type GeneData struct {
	BaseSequence BaseSequence    `json:"baseSequence"`
	Name         string          `json:"name"`
	GeneType     anchor.GeneType `json:"geneType"`
	IsFunctional bool            `json:"isFunctional"`
	Chains       Chains          `json:"chains"`
	Meta         Meta            `json:"meta,omitempty"`
	// AnchorPoints maps anchor point names to positions on the base
	// sequence.
	AnchorPoints map[string]int `json:"anchorPoints"`
}

// GeneName strips the allele from the name: TRBV12-3 for TRBV12-3*01.
func (g *GeneData) GeneName() string {
	if i := strings.LastIndexByte(g.Name, '*'); i >= 0 {
		return g.Name[:i]
	}
	return g.Name
}

// FamilyName returns the gene family: TRBV12 for TRBV12-3*01.
func (g *GeneData) FamilyName() string {
	name := g.GeneName()
	if i := strings.IndexByte(name, '-'); i > 0 {
		return name[:i]
	}
	return name
}

// FragmentData is a known piece of a sequence record stored along with a
// library, so the library works without access to the record itself.
type FragmentData struct {
	URI      string            `json:"uri"`
	Range    sequence.Range    `json:"range"`
	Sequence sequence.Sequence `json:"sequence"`
}

// LibraryData is the stored form of the genes of one species.
type LibraryData struct {
	TaxonID           int64          `json:"taxonId"`
	SpeciesNames      []string       `json:"speciesNames"`
	Genes             []GeneData     `json:"genes"`
	Meta              Meta           `json:"meta,omitempty"`
	SequenceFragments []FragmentData `json:"sequenceFragments,omitempty"`
}

// Well-known library meta keys.
const (
	MetaCitations = "citations"
	MetaWarnings  = "warnings"
	MetaComments  = "comments"
)

// Sort orders libraries by taxon id and their genes by type and name.
func Sort(libs []LibraryData) {
	sort.SliceStable(libs, func(i, j int) bool { return libs[i].TaxonID < libs[j].TaxonID })
	for _, l := range libs {
		sort.SliceStable(l.Genes, func(i, j int) bool {
			a, b := l.Genes[i], l.Genes[j]
			if a.GeneType != b.GeneType {
				return a.GeneType < b.GeneType
			}
			return a.Name < b.Name
		})
		sort.SliceStable(l.SequenceFragments, func(i, j int) bool {
			a, b := l.SequenceFragments[i], l.SequenceFragments[j]
			if a.URI != b.URI {
				return a.URI < b.URI
			}
			return a.Range.Lower() < b.Range.Lower()
		})
	}
}

// ReadLibraries decodes a JSON array of libraries.
func ReadLibraries(r io.Reader) ([]LibraryData, error) {
	var libs []LibraryData
	if err := json.NewDecoder(r).Decode(&libs); err != nil {
		return nil, fmt.Errorf("decode library: %w", err)
	}
	return libs, nil
}

// WriteLibraries encodes libs as a JSON array.
func WriteLibraries(w io.Writer, libs []LibraryData) error {
	enc := json.NewEncoder(w)
	return enc.Encode(libs)
}

// ReadFile reads a library file. Files ending with .gz are decompressed.
func ReadFile(path string) ([]LibraryData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("decompress library: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	libs, err := ReadLibraries(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return libs, nil
}

// WriteFile writes libs to path, compressed if path ends with .gz.
func WriteFile(path string, libs []LibraryData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create library: %w", err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}
	if err := WriteLibraries(w, libs); err != nil {
		f.Close()
		return fmt.Errorf("write library: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("write library: %w", err)
		}
	}
	return f.Close()
}

// NameFromFile derives a library name from its file name:
// "imgt.201631-4.sv1.json.gz" becomes "imgt.201631-4.sv1".
func NameFromFile(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".gz")
	return strings.TrimSuffix(name, ".json")
}
