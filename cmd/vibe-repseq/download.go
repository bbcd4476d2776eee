package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/library"
	"github.com/inodb/vibe-repseq/internal/seqbase"
)

func runDownload(args []string, logger *zap.Logger) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Download and index every sequence a library refers to.

Remote records (nuccore://, http://, https://) are stored in the cache
directory (config key cache.dir, default ~/.vibe-repseq/cache), so later
commands work offline. Local FASTA files get their .fai index built.

Usage:
  vibe-repseq download <library-file>...

Examples:
  vibe-repseq download imgt.json.gz
  vibe-repseq --verbose download custom.json
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: library file argument required\n\n")
		fs.Usage()
		return ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := seqbase.Default(cacheDir())
	res.SetLogger(logger)
	defer res.Close()

	fmt.Printf("Cache: %s\n\n", cacheDir())

	seen := make(map[string]bool)
	failed := 0
	for _, path := range fs.Args() {
		addrs, err := libraryAddresses(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		for _, addr := range addrs {
			key := addr.String()
			if seen[key] {
				continue
			}
			seen[key] = true

			fmt.Printf("  %s\n", key)
			if _, err := res.ResolveContext(ctx, addr); err != nil {
				fmt.Fprintf(os.Stderr, "    Error: %v\n", err)
				failed++
				if ctx.Err() != nil {
					return ExitError
				}
			}
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d of %d sequences could not be fetched\n", failed, len(seen))
		return ExitError
	}
	fmt.Printf("\nDownload complete!\n")
	return ExitSuccess
}

// libraryAddresses lists the base sequence addresses of every gene in a
// library file. Embedded sequences are skipped.
func libraryAddresses(path string) ([]seqbase.Address, error) {
	data, err := library.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	var res []seqbase.Address
	for _, lib := range data {
		for _, g := range lib.Genes {
			addr, err := g.BaseSequence.Address(dir)
			if err != nil {
				return nil, fmt.Errorf("gene %s: %w", g.Name, err)
			}
			if addr.Scheme() == library.EmbeddedScheme {
				continue
			}
			res = append(res, addr)
		}
	}
	return res, nil
}
