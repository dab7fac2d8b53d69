package cache

import (
	"context"
	"net/http"
)

// Outcome describes how CacheFirst produced its response.
type Outcome int

const (
	// OutcomeHit means the response came from the cache.
	OutcomeHit Outcome = iota
	// OutcomeStored means the network response was stored.
	OutcomeStored
	// OutcomeUnstored means the network response was returned but not stored.
	OutcomeUnstored
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeStored:
		return "stored"
	case OutcomeUnstored:
		return "unstored"
	default:
		return "unknown"
	}
}

// Result is the outcome of a CacheFirst lookup.
type Result struct {
	Response *http.Response
	Outcome  Outcome
	// PutErr is set when the network response could not be stored. It never
	// affects Response.
	PutErr error
}

// CacheFirst serves req from the cache when present, without calling fetch.
// On a miss it calls fetch, returns the live response and stores a copy.
// Fetch errors are returned and nothing is cached.
func (n *Named) CacheFirst(ctx context.Context, req *http.Request, fetch FetchFunc) (Result, error) {
	if cached, ok := n.Match(ctx, req); ok {
		return Result{Response: cached, Outcome: OutcomeHit}, nil
	}

	resp, err := fetch(ctx, req)
	if err != nil {
		return Result{Response: resp, Outcome: OutcomeUnstored}, err
	}

	entry, err := Snapshot(resp)
	if err != nil {
		return Result{Response: resp, Outcome: OutcomeUnstored, PutErr: err}, nil
	}
	if err := n.Put(ctx, req, entry); err != nil {
		return Result{Response: resp, Outcome: OutcomeUnstored, PutErr: err}, nil
	}
	return Result{Response: resp, Outcome: OutcomeStored}, nil
}
