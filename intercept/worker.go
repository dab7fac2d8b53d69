package intercept

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/jonwraymond/wxshell/bridge"
	"github.com/jonwraymond/wxshell/cache"
	"github.com/jonwraymond/wxshell/observe"
)

// Fetch strategies reported to telemetry.
const (
	StrategyCacheFirst  = "cache-first"
	StrategyRelay       = "relay"
	StrategyPassthrough = "passthrough"
)

// Outcomes for strategies that do not go through the cache.
const (
	OutcomeRelayed   = "relayed"
	OutcomeUnrelayed = "unrelayed"
	OutcomeForwarded = "forwarded"
	OutcomeUncached  = "uncached"
)

// NavigationPreloader is the optional host capability that lets navigation
// requests start before the worker handles them.
type NavigationPreloader interface {
	EnableNavigationPreload(ctx context.Context) error
}

// ClientSource resolves page contexts by id. *bridge.Registry satisfies it.
type ClientSource interface {
	Get(id string) (bridge.Client, bool)
}

// Worker is the interception layer.
//
// Contract:
// - Concurrency: Fetch is safe for concurrent use; the named cache is the only shared mutable state.
// - Errors: Install and Activate never fail; Fetch returns network errors only.
type Worker struct {
	cfg       Config
	origin    *url.URL
	storage   *cache.Storage
	network   cache.FetchFunc
	clients   ClientSource
	preloader NavigationPreloader
	mw        *observe.Middleware
	logger    observe.Logger
	handle    observe.FetchFunc

	state atomic.Int32

	mu    sync.RWMutex
	named *cache.Named
}

// Option configures a Worker.
type Option func(*Worker)

// WithNetwork sets the function used to reach the network. It should be the
// same function the cache storage uses for precaching.
func WithNetwork(fn cache.FetchFunc) Option {
	return func(w *Worker) {
		if fn != nil {
			w.network = fn
		}
	}
}

// WithClients sets the page contexts dynamic-data responses are relayed to.
func WithClients(c ClientSource) Option {
	return func(w *Worker) {
		w.clients = c
	}
}

// WithPreloader sets the navigation-preload capability.
func WithPreloader(p NavigationPreloader) Option {
	return func(w *Worker) {
		w.preloader = p
	}
}

// WithMiddleware sets the telemetry middleware.
func WithMiddleware(m *observe.Middleware) Option {
	return func(w *Worker) {
		if m != nil {
			w.mw = m
		}
	}
}

// WithLogger sets the lifecycle logger.
func WithLogger(l observe.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a worker in StateInstalling.
func New(cfg Config, storage *cache.Storage, opts ...Option) (*Worker, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	origin, err := url.Parse(cfg.Origin)
	if err != nil || !origin.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, cfg.Origin)
	}
	if cfg.CacheName == "" {
		cfg.CacheName = DefaultCacheName
	}
	if cfg.Manifest == nil {
		cfg.Manifest = DefaultManifest()
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules()
	}

	w := &Worker{
		cfg:     cfg,
		origin:  origin,
		storage: storage,
		network: func(_ context.Context, req *http.Request) (*http.Response, error) {
			return http.DefaultTransport.RoundTrip(req)
		},
		mw:     observe.NopMiddleware(),
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.handle = w.mw.Wrap(w.dispatch)
	return w, nil
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Install opens the shell cache and precaches the manifest. Failed assets
// are logged; the rest stay cached. Safe to call more than once.
func (w *Worker) Install(ctx context.Context) {
	named, err := w.storage.Open(ctx, w.cfg.CacheName)
	if err != nil {
		w.logger.Warn(ctx, "open shell cache failed",
			observe.F("cache", w.cfg.CacheName), observe.F("error", err))
	} else {
		w.mu.Lock()
		w.named = named
		w.mu.Unlock()

		if err := named.AddAll(ctx, w.origin, w.cfg.Manifest); err != nil {
			w.logger.Warn(ctx, "precache incomplete",
				observe.F("cache", w.cfg.CacheName), observe.F("error", err))
		}
	}

	w.state.CompareAndSwap(int32(StateInstalling), int32(StateActivating))
	w.logger.Info(ctx, "worker installed", observe.F("cache", w.cfg.CacheName))
}

// Activate enables navigation preload when available and marks the worker
// active.
func (w *Worker) Activate(ctx context.Context) {
	if w.preloader != nil {
		if err := w.preloader.EnableNavigationPreload(ctx); err != nil {
			w.logger.Warn(ctx, "navigation preload unavailable", observe.F("error", err))
		}
	}
	w.state.Store(int32(StateActive))
	w.logger.Info(ctx, "worker active")
}

// Start runs Install then Activate.
func (w *Worker) Start(ctx context.Context) {
	w.Install(ctx)
	w.Activate(ctx)
}

// Fetch handles one request. The originating page is read from ctx.
func (w *Worker) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	meta := observe.FetchMeta{
		Strategy: StrategyPassthrough,
		Method:   req.Method,
		Host:     req.URL.Hostname(),
	}
	if w.State() == StateActive {
		if kind, ok := Classify(w.cfg.Rules, meta.Host); ok {
			meta.Kind = kind.String()
			if w.cfg.RelayDynamic {
				meta.Strategy = StrategyRelay
			}
		} else {
			meta.Strategy = StrategyCacheFirst
		}
	}
	resp, _, err := w.handle(ctx, meta, req)
	return resp, err
}

func (w *Worker) dispatch(ctx context.Context, meta observe.FetchMeta, req *http.Request) (*http.Response, string, error) {
	switch meta.Strategy {
	case StrategyRelay:
		kind, _ := Classify(w.cfg.Rules, meta.Host)
		return w.relay(ctx, kind, req)
	case StrategyCacheFirst:
		return w.cacheFirst(ctx, req)
	default:
		resp, err := w.network(ctx, req)
		return resp, OutcomeForwarded, err
	}
}

// relay forwards req, posts a copy of the body to the originating page and
// returns the response with its body intact.
func (w *Worker) relay(ctx context.Context, kind bridge.Kind, req *http.Request) (*http.Response, string, error) {
	resp, err := w.network(ctx, req)
	if err != nil {
		return resp, OutcomeUnrelayed, err
	}

	entry, err := cache.Snapshot(resp)
	if err != nil {
		w.logger.Debug(ctx, "read relayed body failed", observe.F("error", err))
		return resp, OutcomeUnrelayed, nil
	}

	id, ok := ClientIDFromContext(ctx)
	if !ok || w.clients == nil {
		return resp, OutcomeUnrelayed, nil
	}
	client, ok := w.clients.Get(id)
	if !ok {
		return resp, OutcomeUnrelayed, nil
	}
	if err := client.PostMessage(ctx, bridge.NewMessage(kind, string(entry.Body))); err != nil {
		w.logger.Debug(ctx, "relay dropped",
			observe.F("client_id", id), observe.F("error", err))
		return resp, OutcomeUnrelayed, nil
	}
	return resp, OutcomeRelayed, nil
}

func (w *Worker) cacheFirst(ctx context.Context, req *http.Request) (*http.Response, string, error) {
	w.mu.RLock()
	named := w.named
	w.mu.RUnlock()

	if named == nil {
		resp, err := w.network(ctx, req)
		return resp, OutcomeUncached, err
	}

	res, err := named.CacheFirst(ctx, req, w.network)
	if res.PutErr != nil {
		w.logger.Debug(ctx, "cache write skipped",
			observe.F("url", cache.RequestURL(req.URL)), observe.F("error", res.PutErr))
	}
	return res.Response, res.Outcome.String(), err
}
