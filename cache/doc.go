// Package cache provides named response caches for offline-first shells.
//
// A Storage opens caches by name; each Named cache maps request identity
// (method and URL) to an immutable Entry holding status, headers and body.
// Backends are pluggable: MemoryBackend for a single process and
// StoreBackend for persistence through any store.Store.
package cache
