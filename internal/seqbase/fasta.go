package seqbase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/biogo/hts/fai"
	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/sequence"
)

// IndexSuffix is appended to a FASTA file name to get its index.
const IndexSuffix = ".fai"

// fastaReader gives random access to the records of an indexed FASTA file.
type fastaReader struct {
	path string
	f    *os.File
	idx  fai.Index
	file *fai.File
}

// openFasta opens path, loading its index or building and saving it when
// missing.
func openFasta(path string) (*fastaReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	idx, err := loadIndex(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := checkIndex(idx, info.Size()); err != nil {
		f.Close()
		return nil, fmt.Errorf("index of %s: %w", path, err)
	}
	return &fastaReader{path: path, f: f, idx: idx, file: fai.NewFile(f, idx)}, nil
}

func loadIndex(path string, f *os.File) (fai.Index, error) {
	ip := path + IndexSuffix
	if r, err := os.Open(ip); err == nil {
		defer r.Close()
		idx, err := fai.ReadFrom(r)
		if err != nil {
			return nil, fmt.Errorf("read index %s: %w", ip, err)
		}
		return idx, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	idx, err := fai.NewIndex(f)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	if err := writeIndex(ip, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func writeIndex(path string, idx fai.Index) error {
	tmp := path + ".tmp"
	w, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := fai.WriteTo(w, idx); err != nil {
		w.Close()
		os.Remove(tmp)
		return fmt.Errorf("write index: %w", err)
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write index: %w", err)
	}
	return os.Rename(tmp, path)
}

// checkIndex verifies that every record of idx lies within a file of the
// given size.
func checkIndex(idx fai.Index, size int64) error {
	if len(idx) == 0 {
		return errors.New("no FASTA records")
	}
	for name, rec := range idx {
		if rec.Start < 0 || rec.Start > size {
			return fmt.Errorf("record %s starts beyond end of file", name)
		}
		if rec.Length == 0 {
			continue
		}
		if rec.BasesPerLine <= 0 || rec.BytesPerLine < rec.BasesPerLine {
			return fmt.Errorf("record %s has malformed line layout", name)
		}
		last := rec.Start + int64((rec.Length-1)/rec.BasesPerLine*rec.BytesPerLine+(rec.Length-1)%rec.BasesPerLine)
		if last >= size {
			return fmt.Errorf("record %s ends beyond end of file", name)
		}
	}
	return nil
}

func (r *fastaReader) Close() error { return r.f.Close() }

// provider returns the record named id.
func (r *fastaReader) provider(id string) (sequence.Provider, error) {
	if rec, ok := r.idx[id]; ok {
		return &recordProvider{r: r, name: id, size: rec.Length}, nil
	}
	// Headers may carry a description after the id.
	for name, rec := range r.idx {
		if f := strings.Fields(name); len(f) > 0 && f[0] == id {
			return &recordProvider{r: r, name: name, size: rec.Length}, nil
		}
	}
	return nil, fmt.Errorf("no record %q in %s", id, r.path)
}

type recordProvider struct {
	r    *fastaReader
	name string
	size int
}

func (p *recordProvider) Size() int { return p.size }

func (p *recordProvider) Region(rg sequence.Range) (sequence.Sequence, error) {
	lo, hi := rg.Lower(), rg.Upper()
	if lo < 0 || hi > p.size {
		return sequence.Sequence{}, &sequence.OutOfBoundsError{Requested: rg, Available: sequence.NewRange(0, p.size)}
	}
	if lo == hi {
		return sequence.Sequence{}, nil
	}
	s, err := p.r.file.SeqRange(p.name, lo, hi)
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("read %s %s: %w", p.name, rg, err)
	}
	data, err := io.ReadAll(s)
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("read %s %s: %w", p.name, rg, err)
	}
	seq, err := sequence.Parse(string(data))
	if err != nil {
		return sequence.Sequence{}, fmt.Errorf("record %s: %w", p.name, err)
	}
	if rg.IsReverse() {
		return seq.ReverseComplement(), nil
	}
	return seq, nil
}

// fastaResolver is the shared machinery of resolvers backed by indexed
// FASTA files. readers and records are guarded by mu.
type fastaResolver struct {
	// path maps an address to its local FASTA file.
	path func(addr Address) (string, error)
	// fetch makes the file at path available, downloading it if needed. It
	// is nil for local files.
	fetch func(ctx context.Context, addr Address, path string) error
	// record maps an address to the FASTA record id.
	record func(addr Address) (string, error)
	// deleteOnError removes a file and its index when they can't be opened
	// so the next attempt fetches them again.
	deleteOnError bool

	logger *zap.Logger

	mu      sync.Mutex
	readers map[string]*fastaReader
	records map[string]*sequence.CachedProvider
}

func newFastaResolver() *fastaResolver {
	return &fastaResolver{
		logger:  zap.NewNop(),
		readers: make(map[string]*fastaReader),
		records: make(map[string]*sequence.CachedProvider),
	}
}

// SetLogger sets the logger for warnings about broken cache files.
func (r *fastaResolver) SetLogger(l *zap.Logger) { r.logger = l }

// Resolve returns the cached provider for addr. The FASTA file is opened
// when the first region is requested.
func (r *fastaResolver) Resolve(addr Address) (*sequence.CachedProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := addr.key()
	if p, ok := r.records[k]; ok {
		return p, nil
	}
	id, err := r.record(addr)
	if err != nil {
		return nil, err
	}
	p := sequence.NewCachedProvider(addr.String(), func() (sequence.Provider, error) {
		fr, err := r.reader(context.Background(), addr)
		if err != nil {
			return nil, err
		}
		return fr.provider(id)
	})
	r.records[k] = p
	return p, nil
}

func (r *fastaResolver) open(ctx context.Context, addr Address) error {
	_, err := r.reader(ctx, addr)
	return err
}

// reader opens the FASTA file of addr. A failure is retried once; with
// deleteOnError the file and its index are removed in between so that the
// retry starts from a fresh download.
func (r *fastaResolver) reader(ctx context.Context, addr Address) (*fastaReader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, err := r.path(addr)
	if err != nil {
		return nil, err
	}
	if fr, ok := r.readers[path]; ok {
		return fr, nil
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		fr, err := r.tryOpen(ctx, addr, path)
		if err == nil {
			r.readers[path] = fr
			return fr, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		r.logger.Warn("error opening FASTA file",
			zap.String("file", path),
			zap.Bool("removing", r.deleteOnError),
			zap.Error(err))
		if r.deleteOnError {
			if err := removeWithIndex(path); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("open %s: %w", addr, lastErr)
}

func (r *fastaResolver) tryOpen(ctx context.Context, addr Address, path string) (*fastaReader, error) {
	if r.fetch != nil {
		if err := r.fetch(ctx, addr, path); err != nil {
			return nil, err
		}
	}
	return openFasta(path)
}

// removeWithIndex deletes a FASTA file together with its index.
func removeWithIndex(path string) error {
	for _, p := range []string{path, path + IndexSuffix} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove broken cache file: %w", err)
		}
	}
	return nil
}

// Close closes every opened FASTA file.
func (r *fastaResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for k, fr := range r.readers {
		errs = append(errs, fr.Close())
		delete(r.readers, k)
	}
	return errors.Join(errs...)
}
