package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/duckdb"
	"github.com/inodb/vibe-repseq/internal/extract"
	"github.com/inodb/vibe-repseq/internal/feature"
	"github.com/inodb/vibe-repseq/internal/library"
)

const defaultExportFeatures = "VRegion,DRegion,JRegion,CRegion"

func runExport(args []string, logger *zap.Logger) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	var (
		dbPath   string
		features string
		force    bool
		workers  int
	)

	fs.StringVar(&dbPath, "db", "repseq.duckdb", "DuckDB database file")
	fs.StringVar(&features, "features", defaultExportFeatures, "Comma separated features to export")
	fs.BoolVar(&force, "force", false, "Re-export libraries whose file did not change")
	fs.IntVar(&workers, "workers", 0, "Number of parallel workers (default: number of CPUs)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Store gene features of libraries in a DuckDB database.

Features of each library replace the ones exported before. Files that did
not change since their last export are skipped.

Usage:
  vibe-repseq export [options] <library-file>...

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  vibe-repseq export --db features.duckdb imgt.json.gz
  vibe-repseq export --features CDR1,CDR2,FR4 custom.json

Query the result with DuckDB:
  SELECT gene, sequence FROM gene_features WHERE feature = 'CDR1';
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

	feats, err := parseFeatures([]string{features})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer store.Close()

	reg, res := newRegistry(logger)
	defer res.Close()

	ex := extract.NewExtractor(workers)
	ex.SetLogger(logger)

	for _, path := range fs.Args() {
		fp, err := duckdb.StatFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		if !force {
			valid, err := store.SourceValid(fp)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return ExitError
			}
			if valid {
				fmt.Fprintf(os.Stderr, "%s is up to date, skipping\n", path)
				continue
			}
		}

		libs, err := reg.RegisterFile(path, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		for _, lib := range libs {
			n, err := exportLibrary(store, ex, lib, feats)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error exporting %s: %v\n", lib.ID(), err)
				return ExitError
			}
			fmt.Fprintf(os.Stderr, "Exported %d features of %s\n", n, lib.ID())
		}
		if err := store.RecordSource(fp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
	}

	return ExitSuccess
}

// exportLibrary replaces the stored features of lib and returns the number
// of features written.
func exportLibrary(store *duckdb.Store, ex *extract.Extractor, lib *library.Library, feats []*feature.GeneFeature) (int, error) {
	var records []duckdb.FeatureRecord
	err := ex.Extract(lib.Genes(), feats, func(r extract.Result) error {
		records = append(records, featureRecord(lib, r))
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := store.ClearLibrary(lib.Name(), lib.TaxonID()); err != nil {
		return 0, err
	}
	if err := store.WriteFeatures(records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func featureRecord(lib *library.Library, r extract.Result) duckdb.FeatureRecord {
	return duckdb.FeatureRecord{
		Library:  lib.Name(),
		TaxonID:  lib.TaxonID(),
		Gene:     r.Gene.Name(),
		GeneType: string(r.Gene.GeneType().Letter()),
		Chains:   r.Gene.Chains().String(),
		Feature:  feature.Encode(r.Feature),
		Sequence: r.Sequence.String(),
	}
}
