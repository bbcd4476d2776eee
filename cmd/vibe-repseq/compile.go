package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/library"
)

func runCompile(args []string, logger *zap.Logger) int {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)

	var (
		outputFile  string
		surrounding int
		embed       bool
	)

	fs.StringVar(&outputFile, "o", "", "Output library file (.json or .json.gz)")
	fs.StringVar(&outputFile, "output", "", "Output library file (.json or .json.gz)")
	fs.IntVar(&surrounding, "surrounding", 0, "Nucleotides kept around the anchor points of each gene")
	fs.BoolVar(&embed, "embed", false, "Store every gene on its own embedded sequence")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Write a self-contained copy of a library: the sequence around every gene
is stored in the library file, so it can be used without the FASTA files
or network records it refers to.

Usage:
  vibe-repseq compile [options] -o <output> <library-file>

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  vibe-repseq compile -o imgt.compiled.json.gz imgt.json
  vibe-repseq compile --embed --surrounding 30 -o small.json custom.json
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() != 1 || outputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: one library file and --output required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if surrounding < 0 {
		fmt.Fprintf(os.Stderr, "Error: --surrounding must not be negative\n")
		return ExitUsage
	}

	reg, res := newRegistry(logger)
	defer res.Close()

	libs, err := reg.RegisterFile(fs.Arg(0), "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	opts := library.CompileOptions{Surrounding: surrounding, Embed: embed}
	compiled := make([]library.LibraryData, 0, len(libs))
	for _, lib := range libs {
		data, err := library.Compile(lib, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error compiling %s: %v\n", lib.ID(), err)
			return ExitError
		}
		compiled = append(compiled, data)
	}
	library.Sort(compiled)

	if err := library.WriteFile(outputFile, compiled); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	fmt.Fprintf(os.Stderr, "Wrote %d libraries to %s\n", len(compiled), outputFile)
	return ExitSuccess
}
