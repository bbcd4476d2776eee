// Package extract pulls gene features out of loaded libraries in parallel
// and writes them as FASTA or tab-delimited text.
package extract

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/feature"
	"github.com/inodb/vibe-repseq/internal/library"
	"github.com/inodb/vibe-repseq/internal/sequence"
)

// WorkItem is one gene/feature pair to extract.
type WorkItem struct {
	Seq     int
	Gene    *library.Gene
	Feature *feature.GeneFeature
}

// Result holds the extracted sequence of a work item. Sequence is nil when
// the feature is not defined for the gene.
type Result struct {
	Seq      int
	Gene     *library.Gene
	Feature  *feature.GeneFeature
	Sequence *sequence.Sequence
	Err      error
}

// Extractor runs feature extraction on a pool of workers.
type Extractor struct {
	workers int
	logger  *zap.Logger
}

// NewExtractor returns an extractor with the given number of workers.
// If workers is 0, runtime.NumCPU() is used.
func NewExtractor(workers int) *Extractor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Extractor{workers: workers, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (e *Extractor) SetLogger(l *zap.Logger) { e.logger = l }

// Items returns every (gene, feature) pair, genes outermost, numbered in
// that order.
func Items(genes []*library.Gene, features []*feature.GeneFeature) <-chan WorkItem {
	ch := make(chan WorkItem, 64)
	go func() {
		defer close(ch)
		seq := 0
		for _, g := range genes {
			for _, f := range features {
				ch <- WorkItem{Seq: seq, Gene: g, Feature: f}
				seq++
			}
		}
	}()
	return ch
}

// ParallelExtract extracts work items using the worker pool.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
func (e *Extractor) ParallelExtract(items <-chan WorkItem) <-chan Result {
	results := make(chan Result, 2*e.workers)

	var wg sync.WaitGroup
	wg.Add(e.workers)

	for range e.workers {
		go func() {
			defer wg.Done()
			for item := range items {
				seq, err := item.Gene.Feature(item.Feature)
				results <- Result{
					Seq:      item.Seq,
					Gene:     item.Gene,
					Feature:  item.Feature,
					Sequence: seq,
					Err:      err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Extract runs every (gene, feature) pair and calls fn with the available
// sequences in input order. Unavailable features are skipped; the first
// extraction error or error returned by fn stops the run.
func (e *Extractor) Extract(genes []*library.Gene, features []*feature.GeneFeature, fn func(Result) error) error {
	results := e.ParallelExtract(Items(genes, features))
	return OrderedCollect(results, func(r Result) error {
		if r.Err != nil {
			return r.Err
		}
		if r.Sequence == nil {
			e.logger.Debug("feature not available",
				zap.String("gene", r.Gene.Name()),
				zap.String("feature", feature.Encode(r.Feature)))
			return nil
		}
		return fn(r)
	})
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan Result, fn func(Result) error) error {
	pending := make(map[int]Result)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
