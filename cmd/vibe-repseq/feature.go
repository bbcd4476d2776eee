package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/extract"
)

func runFeature(args []string, logger *zap.Logger) int {
	fs := flag.NewFlagSet("feature", flag.ExitOnError)

	var (
		outputFormat string
		outputFile   string
		species      string
		workers      int
	)

	fs.StringVar(&outputFormat, "f", "fasta", "Output format: fasta, tab")
	fs.StringVar(&outputFormat, "format", "fasta", "Output format: fasta, tab")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.StringVar(&species, "species", "", "Species name or taxon id (default: all species in the file)")
	fs.IntVar(&workers, "workers", 0, "Number of parallel workers (default: number of CPUs)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Print gene features of a library.

Usage:
  vibe-repseq feature [options] <library> <gene> <feature>...

Arguments:
  <library>  Library file (.json or .json.gz), or a library name found in
             the configured library.path directories (requires --species)
  <gene>     Full gene name (TRBV12-3*01), gene name for all alleles
             (TRBV12-3), or "all"
  <feature>  Feature names or expressions, e.g. CDR1, "CDR1+CDR2",
             "{FR3Begin:VEnd(-3)}"

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  vibe-repseq feature imgt.json.gz TRBV12-3*01 VRegion
  vibe-repseq feature -f tab imgt.json.gz all CDR1,CDR2
  vibe-repseq feature --species hs imgt TRBJ1-1 FR4
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if fs.NArg() < 3 {
		fmt.Fprintf(os.Stderr, "Error: library, gene and feature arguments required\n\n")
		fs.Usage()
		return ExitUsage
	}

	features, err := parseFeatures(fs.Args()[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	reg, res := newRegistry(logger)
	defer res.Close()

	libs, err := loadLibraries(reg, fs.Arg(0), species)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	genes := selectGenes(libs, fs.Arg(1))
	if len(genes) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no gene matches %q\n", fs.Arg(1))
		return ExitError
	}

	// Create output writer
	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	writer, err := extract.NewWriter(out, outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}
	if err := writer.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}

	ex := extract.NewExtractor(workers)
	ex.SetLogger(logger)
	n := 0
	err = ex.Extract(genes, features, func(r extract.Result) error {
		n++
		return writer.Write(r)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	if err := writer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
		return ExitError
	}
	if n == 0 {
		fmt.Fprintf(os.Stderr, "Warning: none of the features is defined for the selected genes\n")
	}

	return ExitSuccess
}
