package library

import (
	"fmt"
	"sort"

	"github.com/inodb/vibe-repseq/internal/anchor"
	"github.com/inodb/vibe-repseq/internal/partition"
)

// GeneID identifies a gene across libraries.
type GeneID struct {
	Library LibraryID
	Name    string
}

func (id GeneID) String() string { return id.Library.String() + ":" + id.Name }

// Gene is a gene of a loaded library. Features are extracted lazily and
// cached for the lifetime of the gene.
type Gene struct {
	*CachedPartitionedSequence

	library *Library
	data    GeneData
}

// buildGene validates the anchor points of data and resolves its base
// sequence.
func buildGene(lib *Library, data GeneData) (*Gene, error) {
	table, err := anchorTable(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing gene %s: %w", data.Name, err)
	}
	provider, err := data.BaseSequence.Resolve(lib.dir, lib.registry.resolver)
	if err != nil {
		return nil, fmt.Errorf("error parsing gene %s: %w", data.Name, err)
	}
	return &Gene{
		CachedPartitionedSequence: NewCachedPartitionedSequence(provider, table),
		library:                   lib,
		data:                      data,
	}, nil
}

// anchorTable builds the basic table of a gene. Anchors are added in
// germline order so that an error names the first offending anchor.
func anchorTable(data GeneData) (partition.Table, error) {
	type entry struct {
		p   anchor.ReferencePoint
		pos int
	}
	entries := make([]entry, 0, len(data.AnchorPoints))
	for name, pos := range data.AnchorPoints {
		p, err := anchor.ParsePoint(name)
		if err != nil {
			return partition.Table{}, err
		}
		if p.GeneType() != data.GeneType {
			return partition.Table{}, fmt.Errorf("anchor point %s does not belong to a %s gene", p, data.GeneType)
		}
		entries = append(entries, entry{p, pos})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].p.Less(entries[j].p) })

	b := partition.NewBuilder(partition.Basic)
	for _, e := range entries {
		if err := b.Set(e.p, e.pos); err != nil {
			return partition.Table{}, err
		}
	}
	return b.Build(), nil
}

// Library returns the library the gene belongs to.
func (g *Gene) Library() *Library { return g.library }

// Data returns the stored form of the gene.
func (g *Gene) Data() GeneData { return g.data }

// ID returns the library-qualified gene id.
func (g *Gene) ID() GeneID { return GeneID{Library: g.library.ID(), Name: g.data.Name} }

// Name returns the full gene name, allele included.
func (g *Gene) Name() string { return g.data.Name }

// GeneName returns the name without allele.
func (g *Gene) GeneName() string { return g.data.GeneName() }

// FamilyName returns the gene family name.
func (g *Gene) FamilyName() string { return g.data.FamilyName() }

// GeneType returns the segment type.
func (g *Gene) GeneType() anchor.GeneType { return g.data.GeneType }

// IsFunctional reports whether the library marks the gene functional.
func (g *Gene) IsFunctional() bool { return g.data.IsFunctional }

// Chains returns the chains the gene can be part of.
func (g *Gene) Chains() Chains { return g.data.Chains }

// IsComplete reports whether every germline anchor of the gene type is
// defined.
func (g *Gene) IsComplete() bool {
	n := 0
	for _, a := range anchor.Catalog() {
		if a.IsPure() && a.GeneType == g.data.GeneType {
			n++
		}
	}
	return g.Partitioning().NumberOfDefinedPoints() == n
}

func (g *Gene) String() string { return g.data.Name }
