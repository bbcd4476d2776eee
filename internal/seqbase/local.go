package seqbase

import (
	"fmt"
	"path/filepath"
)

// Local resolves file:// addresses to records of indexed FASTA files on
// disk. Relative paths are taken relative to the address context. A local
// file is never deleted, even when it can't be indexed.
type Local struct {
	*fastaResolver
}

// NewLocal returns the file:// resolver.
func NewLocal() *Local {
	fr := newFastaResolver()
	fr.path = localPath
	fr.record = func(addr Address) (string, error) {
		if addr.URI.Fragment == "" {
			return "", fmt.Errorf("no record id specified in: %s", addr)
		}
		return addr.URI.Fragment, nil
	}
	return &Local{fastaResolver: fr}
}

// CanResolve claims the file scheme.
func (l *Local) CanResolve(addr Address) bool { return schemeIs(addr, "file") }

// localPath extracts the file path of a file:// URI. file://dir/a.fa is
// the relative path dir/a.fa; file:///dir/a.fa is absolute.
func localPath(addr Address) (string, error) {
	u := addr.URI
	var p string
	switch {
	case u.Opaque != "":
		p = u.Opaque
	default:
		p = u.Host + u.Path
	}
	if p == "" {
		return "", fmt.Errorf("no file path in: %s", addr)
	}
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) && addr.Context != "" {
		p = filepath.Join(addr.Context, p)
	}
	return p, nil
}
