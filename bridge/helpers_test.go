package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/wxshell/store"
)

var errStoreDown = errors.New("store down")

// failingStore rejects every write.
type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Set(context.Context, string, string) error { return errStoreDown }
func (failingStore) Delete(context.Context, string) error      { return errStoreDown }

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func slot(t *testing.T, s store.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", key, err)
	}
	return v, ok
}

func str(s string) *string { return &s }
