package seqbase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-repseq/internal/sequence"
)

// ErrUnresolvable is returned when no resolver claims an address.
var ErrUnresolvable = errors.New("can't resolve address")

// Resolver returns the provider for an address. Providers are cached: the
// same address always yields the same provider. Backend I/O is deferred
// until the first region is requested.
type Resolver interface {
	Resolve(addr Address) (*sequence.CachedProvider, error)
}

// OptionalResolver is a resolver that handles some address schemes only.
type OptionalResolver interface {
	Resolver
	CanResolve(addr Address) bool
}

// opener is implemented by resolvers whose backend can be opened eagerly.
type opener interface {
	open(ctx context.Context, addr Address) error
}

// parentAware resolvers delegate back to the chain they belong to.
type parentAware interface {
	registerParent(parent Resolver) bool
}

type loggerSetter interface {
	SetLogger(l *zap.Logger)
}

// Multi dispatches each address to the first resolver that claims it.
type Multi struct {
	resolvers []OptionalResolver
}

// NewMulti returns a chain of resolvers tried in order.
func NewMulti(resolvers ...OptionalResolver) *Multi {
	m := &Multi{resolvers: resolvers}
	for _, r := range resolvers {
		if pa, ok := r.(parentAware); ok && !pa.registerParent(m) {
			panic(fmt.Sprintf("seqbase: resolver %T already belongs to another chain", r))
		}
	}
	return m
}

// SetLogger sets the logger of every resolver in the chain that logs.
func (m *Multi) SetLogger(l *zap.Logger) {
	for _, r := range m.resolvers {
		if ls, ok := r.(loggerSetter); ok {
			ls.SetLogger(l)
		}
	}
}

func (m *Multi) find(addr Address) (OptionalResolver, error) {
	for _, r := range m.resolvers {
		if r.CanResolve(addr) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnresolvable, addr)
}

// Resolve returns the provider of the first resolver claiming addr.
func (m *Multi) Resolve(addr Address) (*sequence.CachedProvider, error) {
	r, err := m.find(addr)
	if err != nil {
		return nil, err
	}
	return r.Resolve(addr)
}

// ResolveContext is like Resolve but also opens the backend right away,
// downloading and indexing remote files under ctx. Resolvers without an
// eager backend behave as in Resolve.
func (m *Multi) ResolveContext(ctx context.Context, addr Address) (*sequence.CachedProvider, error) {
	r, err := m.find(addr)
	if err != nil {
		return nil, err
	}
	p, err := r.Resolve(addr)
	if err != nil {
		return nil, err
	}
	if o, ok := r.(opener); ok {
		if err := o.open(ctx, addr); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Close releases the files held by the resolvers of the chain.
func (m *Multi) Close() error {
	var errs []error
	for _, r := range m.resolvers {
		if c, ok := r.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Any claims every address and returns providers without backend. Regions
// can only be served after they were seeded, e.g. from fragments embedded
// in a library; any other request fails when it is made, not when the
// address is resolved.
type Any struct {
	mu        sync.Mutex
	providers map[string]*sequence.CachedProvider
}

// NewAny returns the fallback resolver.
func NewAny() *Any {
	return &Any{providers: make(map[string]*sequence.CachedProvider)}
}

// CanResolve returns true.
func (a *Any) CanResolve(Address) bool { return true }

// Resolve returns the detached provider of addr.
func (a *Any) Resolve(addr Address) (*sequence.CachedProvider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := addr.key()
	p, ok := a.providers[k]
	if !ok {
		p = sequence.NewDetachedProvider(addr.String())
		a.providers[k] = p
	}
	return p, nil
}

// schemeIs reports whether addr has one of the given schemes.
func schemeIs(addr Address, schemes ...string) bool {
	for _, s := range schemes {
		if strings.EqualFold(addr.URI.Scheme, s) {
			return true
		}
	}
	return false
}
