package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FetchFunc performs a network request.
type FetchFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

// MaxConcurrentAdds bounds the number of parallel fetches in AddAll.
const MaxConcurrentAdds = 4

// Storage opens named caches over a shared backend.
type Storage struct {
	backend Backend
	keyer   Keyer
	policy  Policy
	fetch   FetchFunc
}

// Option configures a Storage.
type Option func(*Storage)

// WithKeyer overrides the RequestKeyer.
func WithKeyer(k Keyer) Option {
	return func(s *Storage) {
		s.keyer = k
	}
}

// WithPolicy sets the response policy. The default is LenientPolicy.
func WithPolicy(p Policy) Option {
	return func(s *Storage) {
		s.policy = p
	}
}

// WithFetch sets the function AddAll uses to reach the network.
func WithFetch(fn FetchFunc) Option {
	return func(s *Storage) {
		s.fetch = fn
	}
}

// NewStorage creates a Storage over backend.
func NewStorage(backend Backend, opts ...Option) *Storage {
	s := &Storage{
		backend: backend,
		keyer:   NewRequestKeyer(),
		policy:  LenientPolicy(),
		fetch: func(_ context.Context, req *http.Request) (*http.Response, error) {
			return http.DefaultTransport.RoundTrip(req)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns the cache called name. Opening is cheap; entries live in the
// shared backend and are namespaced by name.
func (s *Storage) Open(_ context.Context, name string) (*Named, error) {
	if s == nil || s.backend == nil {
		return nil, ErrNilCache
	}
	if strings.TrimSpace(name) == "" || strings.Contains(name, ":") {
		return nil, ErrInvalidName
	}
	return &Named{name: name, storage: s}, nil
}

// Named is a single cache obtained from Storage.Open.
type Named struct {
	name    string
	storage *Storage
}

// Name returns the cache name.
func (n *Named) Name() string { return n.name }

// Match returns the stored response for req, if any. Only GET requests match.
func (n *Named) Match(ctx context.Context, req *http.Request) (*http.Response, bool) {
	if req.Method != "" && req.Method != http.MethodGet {
		return nil, false
	}
	key, err := n.storage.keyer.Key(n.name, req)
	if err != nil {
		return nil, false
	}
	data, ok := n.storage.backend.Get(ctx, key)
	if !ok {
		return nil, false
	}
	entry, err := decodeEntry(data)
	if err != nil {
		return nil, false
	}
	return entry.Response(req), true
}

// Put stores entry as the response for req, replacing any earlier entry.
func (n *Named) Put(ctx context.Context, req *http.Request, entry Entry) error {
	if req.Method != "" && req.Method != http.MethodGet {
		return ErrUnsupportedMethod
	}
	if !n.storage.policy.Cacheable(entry.StatusCode) {
		return ErrNotCacheable
	}
	key, err := n.storage.keyer.Key(n.name, req)
	if err != nil {
		return err
	}
	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}
	return n.storage.backend.Set(ctx, key, data)
}

// Delete removes the entry for req. Idempotent.
func (n *Named) Delete(ctx context.Context, req *http.Request) error {
	key, err := n.storage.keyer.Key(n.name, req)
	if err != nil {
		return err
	}
	return n.storage.backend.Delete(ctx, key)
}

// AddAll fetches every path (resolved against base) and stores the
// responses. Each asset is independent: successes are stored even when
// others fail, and the failures are returned joined. Responses with a
// non-2xx status count as failures.
func (n *Named) AddAll(ctx context.Context, base *url.URL, paths []string) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(MaxConcurrentAdds)
	for _, p := range paths {
		g.Go(func() error {
			if err := n.add(ctx, base, p); err != nil {
				record(fmt.Errorf("%s: %w", p, err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (n *Named) add(ctx context.Context, base *url.URL, path string) error {
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	target := ref
	if base != nil {
		target = base.ResolveReference(ref)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}
	resp, err := n.storage.fetch(ctx, req)
	if err != nil {
		return err
	}
	entry, err := Snapshot(resp)
	if err != nil {
		return err
	}
	if entry.StatusCode < 200 || entry.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrBadStatus, entry.StatusCode)
	}
	return n.Put(ctx, req, entry)
}
