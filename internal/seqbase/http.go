package seqbase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
)

// HTTPContext holds what the downloading resolvers share: the directory
// downloaded files are cached in and the client used to fetch them.
type HTTPContext struct {
	CacheDir string
	Client   *http.Client
}

func (c HTTPContext) client() *http.Client {
	if c.Client == nil {
		return DefaultClient
	}
	return c.Client
}

// RawHTTP resolves http(s)://host/file.fasta#record addresses. The file is
// downloaded once into the cache directory and then indexed. Files whose
// path ends with .gz are decompressed while downloading.
type RawHTTP struct {
	*fastaResolver
	ctx HTTPContext
}

// NewRawHTTP returns the http(s) resolver.
func NewRawHTTP(hc HTTPContext) *RawHTTP {
	r := &RawHTTP{fastaResolver: newFastaResolver(), ctx: hc}
	r.deleteOnError = true
	r.path = func(addr Address) (string, error) {
		return filepath.Join(hc.CacheDir, CacheFileName(withoutFragment(addr.URI))), nil
	}
	r.record = func(addr Address) (string, error) {
		if addr.URI.Fragment == "" {
			return "", fmt.Errorf("no record id specified in: %s", addr)
		}
		return addr.URI.Fragment, nil
	}
	r.fetch = func(ctx context.Context, addr Address, path string) error {
		u := withoutFragment(addr.URI)
		gz := strings.HasSuffix(strings.ToLower(u.Path), ".gz")
		return download(ctx, hc.client(), r.logger, u.String(), path, gz)
	}
	return r
}

// CanResolve claims the http and https schemes.
func (r *RawHTTP) CanResolve(addr Address) bool { return schemeIs(addr, "http", "https") }

// DefaultNucCoreURL is the NCBI endpoint serving nucleotide records as
// FASTA.
const DefaultNucCoreURL = "https://www.ncbi.nlm.nih.gov/sviewer/viewer.fcgi"

// NucCore resolves nuccore://<accession> addresses by downloading the
// record from NCBI.
type NucCore struct {
	*fastaResolver
	// BaseURL overrides DefaultNucCoreURL.
	BaseURL string
}

// NewNucCore returns the nuccore resolver.
func NewNucCore(hc HTTPContext) *NucCore {
	n := &NucCore{fastaResolver: newFastaResolver()}
	n.deleteOnError = true
	n.path = func(addr Address) (string, error) {
		return filepath.Join(hc.CacheDir, "nuccore_"+addr.URI.Host), nil
	}
	n.record = func(addr Address) (string, error) { return addr.URI.Host, nil }
	n.fetch = func(ctx context.Context, addr Address, path string) error {
		return download(ctx, hc.client(), n.logger, n.url(addr.URI.Host), path, false)
	}
	return n
}

// CanResolve claims nuccore addresses that name an accession.
func (n *NucCore) CanResolve(addr Address) bool {
	return schemeIs(addr, "nuccore") && addr.URI.Host != ""
}

func (n *NucCore) url(id string) string {
	base := n.BaseURL
	if base == "" {
		base = DefaultNucCoreURL
	}
	q := url.QueryEscape(id)
	q = strings.ReplaceAll(q, "+", "%20")
	q = strings.ReplaceAll(q, ".", "%2E")
	return base + "?id=" + q + "&db=nuccore&report=fasta&retmode=text"
}
