package intercept

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/jonwraymond/wxshell/bridge"
	"github.com/jonwraymond/wxshell/cache"
)

const origin = "https://app.example"

// fakeNetwork serves canned bodies by URL and counts calls.
type fakeNetwork struct {
	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]string
	fail   map[string]bool
	// cut serves the body up to its length, then fails with the error.
	cut map[string]error
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		calls:  make(map[string]int),
		bodies: make(map[string]string),
		fail:   make(map[string]bool),
		cut:    make(map[string]error),
	}
}

func (f *fakeNetwork) serve(url, body string) {
	f.mu.Lock()
	f.bodies[url] = body
	f.mu.Unlock()
}

func (f *fakeNetwork) fetch(_ context.Context, req *http.Request) (*http.Response, error) {
	u := req.URL.String()
	f.mu.Lock()
	f.calls[u]++
	body, fail, cut := f.bodies[u], f.fail[u], f.cut[u]
	f.mu.Unlock()

	if fail {
		return nil, errors.New("network down")
	}
	resp := &http.Response{
		StatusCode:    http.StatusOK,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
	if cut != nil {
		resp.Body = io.NopCloser(io.MultiReader(strings.NewReader(body), &errReader{err: cut}))
		resp.ContentLength = cutContentLength
	}
	return resp, nil
}

// cutContentLength is the length a cut response announces.
const cutContentLength = 4096

type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }

func (f *fakeNetwork) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// fakeClient records posted messages.
type fakeClient struct {
	id  string
	err error

	mu   sync.Mutex
	msgs []bridge.Message
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) PostMessage(_ context.Context, m bridge.Message) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	c.msgs = append(c.msgs, m)
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) received() []bridge.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bridge.Message(nil), c.msgs...)
}

// fakePreloader counts calls and optionally fails.
type fakePreloader struct {
	calls int
	err   error
}

func (p *fakePreloader) EnableNavigationPreload(context.Context) error {
	p.calls++
	return p.err
}

type fixture struct {
	net     *fakeNetwork
	backend *cache.MemoryBackend
	reg     *bridge.Registry
	worker  *Worker
}

func newFixture(t *testing.T, cfg Config, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		net:     newFakeNetwork(),
		backend: cache.NewMemoryBackend(),
		reg:     bridge.NewRegistry(),
	}
	for _, p := range DefaultManifest() {
		f.net.serve(origin+p, "shell "+p)
	}
	storage := cache.NewStorage(f.backend, cache.WithFetch(f.net.fetch))
	opts = append([]Option{WithNetwork(f.net.fetch), WithClients(f.reg)}, opts...)
	w, err := New(cfg, storage, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.worker = w
	return f
}

func mustRequest(t *testing.T, method, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	return req
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(b)
}
