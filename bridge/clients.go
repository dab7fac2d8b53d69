package bridge

import (
	"context"
	"sync"
)

// Client is a page context the interception layer can post to.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: PostMessage must not block; it returns an error instead.
type Client interface {
	ID() string
	PostMessage(ctx context.Context, m Message) error
}

// Registry tracks the page contexts that are currently alive.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds or replaces c.
func (r *Registry) Register(c Client) error {
	if c == nil || c.ID() == "" {
		return ErrInvalidClientID
	}
	r.mu.Lock()
	r.clients[c.ID()] = c
	r.mu.Unlock()
	return nil
}

// Unregister removes the client with id. Idempotent.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.clients, id)
	r.mu.Unlock()
}

// Get returns the client with id.
func (r *Registry) Get(id string) (Client, bool) {
	r.mu.RLock()
	c, ok := r.clients[id]
	r.mu.RUnlock()
	return c, ok
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Page returns the registered client with id when it is a *Page.
func (r *Registry) Page(id string) (*Page, bool) {
	c, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	p, ok := c.(*Page)
	return p, ok
}
