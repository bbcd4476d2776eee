package seqbase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/sequence"
)

// RedirectSuffix is appended to the cache file name holding the final
// location of a redirected address.
const RedirectSuffix = ".redirect"

// Redirect resolves addresses of custom schemes by mapping them to an HTTP
// URL, following HTTP redirects from there and handing the final URL back
// to the chain it belongs to. The final location is remembered in the
// cache directory so redirects are followed once per address.
type Redirect struct {
	schemes []string
	target  func(u *url.URL) (*url.URL, error)
	ctx     HTTPContext
	logger  *zap.Logger

	mu     sync.Mutex
	parent Resolver
	cache  map[string]*url.URL
}

// NewRedirect returns a resolver claiming schemes. target maps an address
// URI to the HTTP URL to start from.
func NewRedirect(hc HTTPContext, target func(u *url.URL) (*url.URL, error), schemes ...string) *Redirect {
	return &Redirect{
		schemes: schemes,
		target:  target,
		ctx:     hc,
		logger:  zap.NewNop(),
		cache:   make(map[string]*url.URL),
	}
}

// SetLogger sets the logger.
func (r *Redirect) SetLogger(l *zap.Logger) { r.logger = l }

// CanResolve claims the configured schemes.
func (r *Redirect) CanResolve(addr Address) bool { return schemeIs(addr, r.schemes...) }

func (r *Redirect) registerParent(parent Resolver) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parent != nil {
		return false
	}
	r.parent = parent
	return true
}

// Resolve follows the redirect of addr and resolves the final URL through
// the parent chain.
func (r *Redirect) Resolve(addr Address) (*sequence.CachedProvider, error) {
	return r.resolve(context.Background(), addr, false)
}

func (r *Redirect) open(ctx context.Context, addr Address) error {
	_, err := r.resolve(ctx, addr, true)
	return err
}

func (r *Redirect) resolve(ctx context.Context, addr Address, eager bool) (*sequence.CachedProvider, error) {
	u, err := r.convert(ctx, addr.URI)
	if err != nil {
		return nil, fmt.Errorf("redirect %s: %w", addr, err)
	}
	r.mu.Lock()
	parent := r.parent
	r.mu.Unlock()
	if parent == nil {
		return nil, errors.New("redirect resolver is not part of a resolver chain")
	}
	target := addr.WithURI(u)
	if m, ok := parent.(*Multi); ok && eager {
		return m.ResolveContext(ctx, target)
	}
	return parent.Resolve(target)
}

// convert returns the final location of u, from memory, from the cache
// directory or by following redirects. The fragment of u is kept.
func (r *Redirect) convert(ctx context.Context, u *url.URL) (*url.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := u.String()
	if res, ok := r.cache[key]; ok {
		return res, nil
	}

	start, err := r.target(withoutFragment(u))
	if err != nil {
		return nil, err
	}
	cachePath := filepath.Join(r.ctx.CacheDir, CacheFileName(start)+RedirectSuffix)

	var final *url.URL
	if data, err := os.ReadFile(cachePath); err == nil {
		if final, err = url.Parse(strings.TrimSpace(string(data))); err != nil {
			return nil, fmt.Errorf("read redirect cache %s: %w", cachePath, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if final, err = r.follow(ctx, start); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(r.ctx.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		if err := os.WriteFile(cachePath, []byte(final.String()), 0644); err != nil {
			return nil, fmt.Errorf("write redirect cache: %w", err)
		}
	} else {
		return nil, err
	}

	res := *final
	res.Fragment = u.Fragment
	res.RawFragment = u.RawFragment
	r.cache[key] = &res
	return &res, nil
}

// follow issues a HEAD request for u and returns the URL the client ended
// up at.
func (r *Redirect) follow(ctx context.Context, u *url.URL) (*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := r.ctx.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}
	final := resp.Request.URL
	r.logger.Debug("followed redirect", zap.Stringer("from", u), zap.Stringer("to", final))
	return final, nil
}
