package seqbase

import (
	"os"
	"path/filepath"
)

// DefaultCacheDir returns ~/.vibe-repseq/cache, or a directory under the
// system temp dir when the home directory is unknown.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vibe-repseq-cache")
	}
	return filepath.Join(home, ".vibe-repseq", "cache")
}

// Default returns the standard chain with downloads cached in cacheDir.
func Default(cacheDir string) *Multi {
	return NewDefault(HTTPContext{CacheDir: cacheDir})
}

// NewDefault returns the standard chain: local files, NCBI nuccore records,
// plain http(s) files, and the fallback claiming everything else.
func NewDefault(hc HTTPContext) *Multi {
	return NewMulti(
		NewLocal(),
		NewNucCore(hc),
		NewRawHTTP(hc),
		NewAny(),
	)
}
