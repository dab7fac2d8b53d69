package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
)

// Keyer derives backend keys from request identity.
//
// Contract:
// - Determinism: the same cache name and request identity must produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(cacheName string, req *http.Request) (string, error)
}

// RequestKeyer keys entries by method and URL, ignoring the fragment.
type RequestKeyer struct{}

// NewRequestKeyer creates a new request keyer.
func NewRequestKeyer() *RequestKeyer {
	return &RequestKeyer{}
}

// Key generates a deterministic cache key.
// Format: cache:<name>:<hash>
// where hash is the first 16 characters of SHA-256("<METHOD> <url>").
func (k *RequestKeyer) Key(cacheName string, req *http.Request) (string, error) {
	if req == nil || req.URL == nil {
		return "", ErrInvalidKey
	}
	id := req.Method
	if id == "" {
		id = http.MethodGet
	}
	id += " " + RequestURL(req.URL)

	hash := sha256.Sum256([]byte(id))
	return fmt.Sprintf("cache:%s:%s", cacheName, hex.EncodeToString(hash[:8])), nil
}

// RequestURL returns the identity string of u: the absolute URL without
// its fragment.
func RequestURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}

// Ensure RequestKeyer implements Keyer
var _ Keyer = (*RequestKeyer)(nil)
