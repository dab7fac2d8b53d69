package cache

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestCacheFirst_HitSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	net := newFakeNetwork()
	net.bodies["https://app.example/app.js"] = "app()"
	c, _ := NewStorage(NewMemoryBackend()).Open(ctx, "shell")

	// First call - network, stored
	res, err := c.CacheFirst(ctx, mustRequest(http.MethodGet, "https://app.example/app.js"), net.fetch)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if res.Outcome != OutcomeStored {
		t.Errorf("outcome = %v, want stored", res.Outcome)
	}
	if got := readAll(res.Response); got != "app()" {
		t.Errorf("live body = %q", got)
	}

	// Second call - cache, network NOT called
	res, err = c.CacheFirst(ctx, mustRequest(http.MethodGet, "https://app.example/app.js"), net.fetch)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if res.Outcome != OutcomeHit {
		t.Errorf("outcome = %v, want hit", res.Outcome)
	}
	if net.total() != 1 {
		t.Errorf("expected 1 network call, got %d", net.total())
	}
	if got := readAll(res.Response); got != "app()" {
		t.Errorf("cached body = %q", got)
	}
}

func TestCacheFirst_FetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	net := newFakeNetwork()
	net.fail["https://app.example/app.js"] = true
	backend := NewMemoryBackend()
	c, _ := NewStorage(backend).Open(ctx, "shell")

	_, err := c.CacheFirst(ctx, mustRequest(http.MethodGet, "https://app.example/app.js"), net.fetch)
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if backend.Len() != 0 {
		t.Error("errors must not be cached")
	}
}

func TestCacheFirst_PutFailureDoesNotAffectResponse(t *testing.T) {
	ctx := context.Background()
	net := newFakeNetwork()
	net.bodies["https://app.example/submit"] = "ok"
	c, _ := NewStorage(NewMemoryBackend()).Open(ctx, "shell")

	res, err := c.CacheFirst(ctx, mustRequest(http.MethodPost, "https://app.example/submit"), net.fetch)
	if err != nil {
		t.Fatalf("CacheFirst failed: %v", err)
	}
	if res.Outcome != OutcomeUnstored || !errors.Is(res.PutErr, ErrUnsupportedMethod) {
		t.Errorf("outcome = %v putErr = %v", res.Outcome, res.PutErr)
	}
	if got := readAll(res.Response); got != "ok" {
		t.Errorf("body = %q, want ok", got)
	}
}

func TestOutcome_String(t *testing.T) {
	tests := map[Outcome]string{
		OutcomeHit:      "hit",
		OutcomeStored:   "stored",
		OutcomeUnstored: "unstored",
		Outcome(42):     "unknown",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", o, got, want)
		}
	}
}
