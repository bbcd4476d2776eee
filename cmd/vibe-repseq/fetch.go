package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/extract"
	"github.com/inodb/vibe-repseq/internal/seqbase"
	"github.com/inodb/vibe-repseq/internal/sequence"
)

func runFetch(args []string, logger *zap.Logger) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	var contextDir string
	fs.StringVar(&contextDir, "dir", ".", "Directory relative file:// addresses are resolved in")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Print a region of a sequence address as FASTA.

Usage:
  vibe-repseq fetch [options] <address> [<from> <to>]

Arguments:
  <address>    Sequence address, e.g. file://genes.fa#chr7,
               nuccore://NG_001333.2 or https://host/file.fa.gz#rec
  <from> <to>  Zero-based half-open region; from > to reads the reverse
               complement (default: the whole record)

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() != 1 && fs.NArg() != 3 {
		fs.Usage()
		return ExitUsage
	}

	addr, err := seqbase.ParseAddress(contextDir, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := seqbase.Default(cacheDir())
	res.SetLogger(logger)
	defer res.Close()

	p, err := res.ResolveContext(ctx, addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	var r sequence.Range
	if fs.NArg() == 3 {
		from, err1 := strconv.Atoi(fs.Arg(1))
		to, err2 := strconv.Atoi(fs.Arg(2))
		if err1 != nil || err2 != nil {
			fmt.Fprintf(os.Stderr, "Error: region bounds must be integers\n")
			return ExitUsage
		}
		r = sequence.NewRange(from, to)
	} else {
		size := p.Size()
		if size < 0 {
			fmt.Fprintf(os.Stderr, "Error: size of %s is unknown, specify a region\n", addr)
			return ExitError
		}
		r = sequence.NewRange(0, size)
	}

	seq, err := p.Region(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	bw := bufio.NewWriter(os.Stdout)
	s := linear.NewSeq(addr.URI.String(), seq.Letters(), alphabet.DNA)
	s.Desc = r.String()
	if _, err := fasta.NewWriter(bw, extract.FastaLineWidth).Write(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	if err := bw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
