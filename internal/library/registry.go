package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/seqbase"
)

// ErrLibraryNotFound is returned when no loaded or discoverable library
// matches a request.
var ErrLibraryNotFound = errors.New("library not found")

// Registry holds the loaded libraries and the resolver their sequences are
// read through. Libraries are registered explicitly or discovered by name
// in search directories.
type Registry struct {
	resolver seqbase.Resolver
	logger   *zap.Logger

	mu             sync.Mutex
	searchPaths    []string
	searched       map[string]bool
	libraries      map[libraryKey]*Library
	species        map[string]int64
	speciesReverse map[int64][]string
}

// NewRegistry returns an empty registry reading sequences through
// resolver.
func NewRegistry(resolver seqbase.Resolver) *Registry {
	return &Registry{
		resolver:       resolver,
		logger:         zap.NewNop(),
		searched:       make(map[string]bool),
		libraries:      make(map[libraryKey]*Library),
		species:        make(map[string]int64),
		speciesReverse: make(map[int64][]string),
	}
}

// SetLogger sets the logger.
func (r *Registry) SetLogger(l *zap.Logger) { r.logger = l }

// Resolver returns the sequence resolver of the registry.
func (r *Registry) Resolver() seqbase.Resolver { return r.resolver }

// AddSearchPath adds a directory searched for <name>.json and
// <name>.json.gz when a library is requested by name.
func (r *Registry) AddSearchPath(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	r.searchPaths = append(r.searchPaths, dir)
}

// RegisterFile loads every library of a library file under name, or the
// name derived from the file name when name is empty.
func (r *Registry) RegisterFile(path, name string) ([]*Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerFileLocked(path, name)
}

func (r *Registry) registerFileLocked(path, name string) ([]*Library, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if name == "" {
		name = NameFromFile(path)
	}
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	libs := make([]*Library, 0, len(data))
	for _, d := range data {
		lib, err := r.registerLocked(filepath.Dir(path), name, d)
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	r.logger.Debug("registered library file",
		zap.String("file", path),
		zap.String("name", name),
		zap.Int("libraries", len(libs)))
	return libs, nil
}

// RegisterLibrary loads data as library name. Relative sequence addresses
// are resolved in dir. The sequence fragments stored with the library are
// seeded into the resolver before genes are built.
func (r *Registry) RegisterLibrary(dir, name string, data LibraryData) (*Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(dir, name, data)
}

func (r *Registry) registerLocked(dir, name string, data LibraryData) (*Library, error) {
	lib := &Library{
		data:     data,
		name:     name,
		registry: r,
		dir:      dir,
		genes:    make(map[string]*Gene, len(data.Genes)),
	}
	key := lib.ID().key()
	if _, ok := r.libraries[key]; ok {
		return nil, fmt.Errorf("duplicate library: %s", lib.ID())
	}

	for _, fr := range data.SequenceFragments {
		addr, err := seqbase.ParseAddress(dir, fr.URI)
		if err != nil {
			return nil, err
		}
		p, err := r.resolver.Resolve(addr)
		if err != nil {
			return nil, fmt.Errorf("sequence fragment %s: %w", fr.URI, err)
		}
		if err := p.SetRegion(fr.Range, fr.Sequence); err != nil {
			return nil, fmt.Errorf("sequence fragment %s: %w", fr.URI, err)
		}
	}

	for _, gd := range data.Genes {
		g, err := buildGene(lib, gd)
		if err != nil {
			return nil, err
		}
		if _, ok := lib.genes[gd.Name]; ok {
			return nil, fmt.Errorf("duplicate gene %s in library %s", gd.Name, lib.ID())
		}
		lib.genes[gd.Name] = g
	}

	for _, sn := range data.SpeciesNames {
		c := strings.ToLower(sn)
		if t, ok := r.species[c]; ok && t != data.TaxonID {
			return nil, fmt.Errorf("mismatch in common species name between several libraries (library name = %s; name = %s)", name, sn)
		}
	}
	for _, sn := range data.SpeciesNames {
		c := strings.ToLower(sn)
		if _, ok := r.species[c]; !ok {
			r.speciesReverse[data.TaxonID] = append(r.speciesReverse[data.TaxonID], sn)
		}
		r.species[c] = data.TaxonID
	}

	r.libraries[key] = lib
	return lib, nil
}

// ResolveSpecies returns the taxon id of a species given by common name or
// by the id itself.
func (r *Registry) ResolveSpecies(name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.resolveSpeciesLocked(name); ok {
		return t, nil
	}
	return 0, fmt.Errorf("can't resolve species name: %s", name)
}

func (r *Registry) resolveSpeciesLocked(name string) (int64, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if t, err := strconv.ParseInt(name, 10, 64); err == nil {
		return t, true
	}
	t, ok := r.species[name]
	return t, ok
}

// SpeciesNames returns the common names registered for a taxon.
func (r *Registry) SpeciesNames(taxonID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.speciesReverse[taxonID]...)
}

// Library returns the library name of a species, loading it from the
// search paths if needed. species is a common name or a taxon id.
func (r *Registry) Library(name, species string) (*Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lookup := func() (*Library, bool) {
		taxon, ok := r.resolveSpeciesLocked(species)
		if !ok {
			return nil, false
		}
		lib, ok := r.libraries[libraryKey{name, taxon}]
		return lib, ok
	}
	if lib, ok := lookup(); ok {
		return lib, nil
	}
	for _, dir := range r.searchPaths {
		if err := r.searchLocked(dir, name); err != nil {
			return nil, err
		}
		if lib, ok := lookup(); ok {
			return lib, nil
		}
	}
	return nil, fmt.Errorf("%w: %s for species %s", ErrLibraryNotFound, name, species)
}

// searchLocked loads library name from dir unless that was tried before.
func (r *Registry) searchLocked(dir, name string) error {
	req := dir + "\x00" + name
	if r.searched[req] {
		return nil
	}
	r.searched[req] = true
	for _, ext := range []string{".json", ".json.gz"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		libs, err := r.readFileSkippingLoaded(path, name)
		if err != nil {
			return err
		}
		for _, d := range libs {
			if _, err := r.registerLocked(dir, name, d); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// readFileSkippingLoaded reads a library file and drops the libraries
// already registered under name.
func (r *Registry) readFileSkippingLoaded(path, name string) ([]LibraryData, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	res := data[:0]
	for _, d := range data {
		if _, ok := r.libraries[libraryKey{name, d.TaxonID}]; !ok {
			res = append(res, d)
		}
	}
	return res, nil
}

// Libraries returns all loaded libraries ordered by name and taxon id.
func (r *Registry) Libraries() []*Library {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*Library, 0, len(r.libraries))
	for _, l := range r.libraries {
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].name != res[j].name {
			return res[i].name < res[j].name
		}
		return res[i].data.TaxonID < res[j].data.TaxonID
	})
	return res
}

// Gene returns a gene by library-qualified id.
func (r *Registry) Gene(id GeneID) (*Gene, error) {
	r.mu.Lock()
	lib, ok := r.libraries[id.Library.key()]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, id.Library)
	}
	return lib.LookupGene(id.Name)
}
