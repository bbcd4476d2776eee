// Package main provides the vibe-repseq command-line tool.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-repseq/internal/feature"
	"github.com/inodb/vibe-repseq/internal/library"
	"github.com/inodb/vibe-repseq/internal/seqbase"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Global flags
	var (
		showVersion bool
		verbose     bool
	)
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&verbose, "verbose", false, "Log progress and skipped features")

	// Parse global flags first
	flag.Parse()

	if showVersion {
		fmt.Printf("vibe-repseq version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	// Check for subcommand
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	initConfig()
	logger := newLogger(verbose)
	defer logger.Sync()

	switch args[0] {
	case "feature":
		return runFeature(args[1:], logger)
	case "export":
		return runExport(args[1:], logger)
	case "fetch":
		return runFetch(args[1:], logger)
	case "download":
		return runDownload(args[1:], logger)
	case "compile":
		return runCompile(args[1:], logger)
	case "config":
		cmd := newConfigCmd()
		cmd.SetArgs(args[1:])
		if err := cmd.Execute(); err != nil {
			return ExitError
		}
		return ExitSuccess
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `vibe-repseq - V/D/J/C gene reference libraries

Usage:
  vibe-repseq [options] <command> [arguments]

Commands:
  feature     Print gene features of a library
  export      Store gene features of libraries in a DuckDB database
  fetch       Print a region of a sequence address
  download    Download and index the sequences a library refers to
  compile     Write a self-contained copy of a library
  config      Show or change configuration
  help        Show this help message

Global Options:
  --version   Show version information
  --verbose   Log progress and skipped features

Examples:
  # CDR1 and CDR2 of every allele of a gene
  vibe-repseq feature imgt.json.gz TRBV12-3 CDR1 CDR2

  # Export V, D, J and C regions of a library
  vibe-repseq export --db features.duckdb imgt.json.gz

  # Fetch a region of a NCBI record
  vibe-repseq fetch nuccore://NG_001333.2 100 200

For more information on a command, use:
  vibe-repseq <command> --help
`)
}

// initConfig reads ~/.vibe-repseq.yaml and VIBE_REPSEQ_* variables.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigName(".vibe-repseq")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("VIBE_REPSEQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

// newLogger builds the stderr logger. Only warnings are shown unless
// verbose is set.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// cacheDir returns the directory downloaded sequences are kept in.
func cacheDir() string {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return dir
	}
	return seqbase.DefaultCacheDir()
}

// newRegistry returns an empty registry on the default resolver chain.
// The caller closes the returned resolver.
func newRegistry(logger *zap.Logger) (*library.Registry, *seqbase.Multi) {
	res := seqbase.Default(cacheDir())
	res.SetLogger(logger)
	reg := library.NewRegistry(res)
	reg.SetLogger(logger)
	for _, d := range viper.GetStringSlice("library.path") {
		reg.AddSearchPath(d)
	}
	return reg, res
}

// loadLibraries registers a library file, or looks a library up by name
// in the configured search paths when no such file exists.
func loadLibraries(reg *library.Registry, nameOrPath, species string) ([]*library.Library, error) {
	if _, err := os.Stat(nameOrPath); err == nil {
		libs, err := reg.RegisterFile(nameOrPath, "")
		if err != nil {
			return nil, err
		}
		return filterSpecies(reg, libs, species)
	}
	if species == "" || strings.ContainsRune(nameOrPath, filepath.Separator) {
		return nil, fmt.Errorf("library file not found: %s", nameOrPath)
	}
	lib, err := reg.Library(nameOrPath, species)
	if err != nil {
		return nil, err
	}
	return []*library.Library{lib}, nil
}

func filterSpecies(reg *library.Registry, libs []*library.Library, species string) ([]*library.Library, error) {
	if species == "" {
		return libs, nil
	}
	taxon, err := reg.ResolveSpecies(species)
	if err != nil {
		return nil, err
	}
	var res []*library.Library
	for _, l := range libs {
		if l.TaxonID() == taxon {
			res = append(res, l)
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: no library for species %s", library.ErrLibraryNotFound, species)
	}
	return res, nil
}

// parseFeatures parses feature names or expressions. Each argument may
// hold several features separated by commas outside of brackets.
func parseFeatures(args []string) ([]*feature.GeneFeature, error) {
	var res []*feature.GeneFeature
	for _, arg := range args {
		for _, s := range splitList(arg) {
			f, err := feature.Parse(s)
			if err != nil {
				return nil, err
			}
			if f == nil {
				continue
			}
			res = append(res, f)
		}
	}
	return res, nil
}

// splitList splits s on commas that are not nested in brackets.
func splitList(s string) []string {
	var (
		res   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case ',':
			if depth == 0 {
				res = append(res, s[start:i])
				start = i + 1
			}
		}
	}
	res = append(res, s[start:])
	out := res[:0]
	for _, p := range res {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// selectGenes returns the genes matching pattern: "all", a full name with
// allele, or a gene name matching all of its alleles.
func selectGenes(libs []*library.Library, pattern string) []*library.Gene {
	var res []*library.Gene
	for _, l := range libs {
		for _, g := range l.Genes() {
			if pattern == "all" || g.Name() == pattern || g.GeneName() == pattern {
				res = append(res, g)
			}
		}
	}
	return res
}
