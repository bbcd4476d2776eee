// Package seqbase resolves sequence addresses such as file://, nuccore:// or
// http:// URLs to lazily loaded, cached sequence providers.
package seqbase

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
)

// Address points at a sequence record. Context is the directory relative
// file addresses are resolved against; it may be empty.
type Address struct {
	Context string
	URI     *url.URL
}

// ParseAddress parses raw as a URI.
func ParseAddress(context, raw string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, fmt.Errorf("parse sequence address %q: %w", raw, err)
	}
	if context != "" {
		context = filepath.Clean(context)
	}
	return Address{Context: context, URI: u}, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(context, raw string) Address {
	a, err := ParseAddress(context, raw)
	if err != nil {
		panic(err)
	}
	return a
}

// Scheme returns the URI scheme.
func (a Address) Scheme() string { return a.URI.Scheme }

// WithURI returns a copy of a pointing at u.
func (a Address) WithURI(u *url.URL) Address { return Address{Context: a.Context, URI: u} }

func (a Address) String() string {
	if a.Context == "" {
		return a.URI.String()
	}
	return a.URI.String() + " (rel. " + a.Context + ")"
}

func (a Address) key() string { return a.Context + "\x00" + a.URI.String() }

// withoutFragment returns u with the record id stripped.
func withoutFragment(u *url.URL) *url.URL {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return &c
}

var nonWord = regexp.MustCompile(`\W+`)

// CacheFileName turns a URL into the name of its file in the cache
// directory.
func CacheFileName(u *url.URL) string {
	return nonWord.ReplaceAllString(u.String(), "_")
}
