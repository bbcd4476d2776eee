package extract

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/inodb/vibe-repseq/internal/feature"
)

// Writer writes extracted features.
type Writer interface {
	WriteHeader() error
	Write(r Result) error
	Flush() error
}

// NewWriter returns the writer for format "fasta" or "tab".
func NewWriter(w io.Writer, format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "fasta", "fa":
		return NewFastaWriter(w), nil
	case "tab", "tsv":
		return NewTabWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// FastaLineWidth is the number of nucleotides per FASTA line.
const FastaLineWidth = 60

// FastaWriter writes one record per feature, named <gene>|<feature>.
type FastaWriter struct {
	bw *bufio.Writer
	fw *fasta.Writer
}

// NewFastaWriter creates a new FASTA writer.
func NewFastaWriter(w io.Writer) *FastaWriter {
	bw := bufio.NewWriter(w)
	return &FastaWriter{bw: bw, fw: fasta.NewWriter(bw, FastaLineWidth)}
}

// WriteHeader does nothing; FASTA has no header.
func (fw *FastaWriter) WriteHeader() error { return nil }

// Write writes a single record.
func (fw *FastaWriter) Write(r Result) error {
	s := linear.NewSeq(RecordName(r), r.Sequence.Letters(), alphabet.DNA)
	s.Desc = r.Gene.Library().Name()
	_, err := fw.fw.Write(s)
	return err
}

// Flush flushes buffered output.
func (fw *FastaWriter) Flush() error { return fw.bw.Flush() }

// RecordName returns the FASTA record id of a result.
func RecordName(r Result) string {
	return r.Gene.Name() + "|" + feature.Encode(r.Feature)
}

// TabWriter writes features in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Gene",
			"Library",
			"Gene_type",
			"Chains",
			"Feature",
			"Length",
			"Sequence",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single feature.
func (tw *TabWriter) Write(r Result) error {
	chains := r.Gene.Chains().String()
	if chains == "" {
		chains = "-"
	}
	values := []string{
		r.Gene.Name(),
		r.Gene.Library().Name(),
		string(r.Gene.GeneType().Letter()),
		chains,
		feature.Encode(r.Feature),
		strconv.Itoa(r.Sequence.Len()),
		r.Sequence.String(),
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes buffered output.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
