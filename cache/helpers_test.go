package cache

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

// fakeNetwork serves canned bodies by URL and counts calls.
type fakeNetwork struct {
	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]string
	status map[string]int
	fail   map[string]bool
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		calls:  make(map[string]int),
		bodies: make(map[string]string),
		status: make(map[string]int),
		fail:   make(map[string]bool),
	}
}

func (f *fakeNetwork) fetch(_ context.Context, req *http.Request) (*http.Response, error) {
	u := req.URL.String()
	f.mu.Lock()
	f.calls[u]++
	body, status, fail := f.bodies[u], f.status[u], f.fail[u]
	f.mu.Unlock()

	if fail {
		return nil, errors.New("network down")
	}
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (f *fakeNetwork) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func readAll(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func mustRequest(method, url string) *http.Request {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		panic(err)
	}
	return req
}
