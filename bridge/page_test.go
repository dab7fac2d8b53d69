package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/wxshell/store"
)

func TestPage_RunPersistsAndFansOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.NewMemoryStore()
	page, err := NewPage("c1", NewPersister(s))
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	msgs, detach := page.Watch(4)
	defer detach()

	done := make(chan error, 1)
	go func() { done <- page.Run(ctx) }()

	if err := page.PostMessage(ctx, NewMessage(KindWeather, "body")); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}

	m := <-msgs
	if m.Type != TypeWeather || m.Data == nil || *m.Data != "body" {
		t.Errorf("watched message = %+v", m)
	}
	if v, ok := slot(t, s, store.KeyWeather); !ok || v != "body" {
		t.Errorf("WEATHER_DATA = %q, %v", v, ok)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestPage_FullMailboxDrops(t *testing.T) {
	ctx := context.Background()
	page, err := NewPage("c1", nil, WithMailboxSize(1))
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}

	if err := page.PostMessage(ctx, NewMessage(KindWeather, "1")); err != nil {
		t.Fatalf("first PostMessage() error = %v", err)
	}
	if err := page.PostMessage(ctx, NewMessage(KindWeather, "2")); !errors.Is(err, ErrMailboxFull) {
		t.Errorf("second PostMessage() error = %v, want ErrMailboxFull", err)
	}
}

func TestPage_Close(t *testing.T) {
	ctx := context.Background()
	page, err := NewPage("c1", nil)
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	msgs, detach := page.Watch(1)

	done := make(chan error, 1)
	go func() { done <- page.Run(ctx) }()

	page.Close()
	page.Close()

	if err := <-done; err != nil {
		t.Errorf("Run() after Close = %v, want nil", err)
	}
	if _, ok := <-msgs; ok {
		t.Error("watcher channel should be closed")
	}
	detach()

	if err := page.PostMessage(ctx, NewMessage(KindWeather, "x")); !errors.Is(err, ErrPageClosed) {
		t.Errorf("PostMessage() after Close = %v, want ErrPageClosed", err)
	}
	late, _ := page.Watch(1)
	if _, ok := <-late; ok {
		t.Error("watch after close should return a closed channel")
	}
}

func TestPage_SlowWatcherDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	page, err := NewPage("c1", nil)
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	slow, _ := page.Watch(1)
	go func() { _ = page.Run(ctx) }()

	_ = page.PostMessage(ctx, NewMessage(KindWeather, "1"))
	_ = page.PostMessage(ctx, NewMessage(KindWeather, "2"))

	waitFor(t, func() bool { return page.Watchers() == 0 })

	if m, ok := <-slow; !ok || *m.Data != "1" {
		t.Errorf("first message = %+v, %v", m, ok)
	}
	if _, ok := <-slow; ok {
		t.Error("slow watcher should be closed after overflow")
	}
}

func TestPage_PersistFailureStillFansOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	page, err := NewPage("c1", NewPersister(failingStore{store.NewMemoryStore()}))
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	msgs, _ := page.Watch(1)
	go func() { _ = page.Run(ctx) }()

	_ = page.PostMessage(ctx, NewMessage(KindAddress, "a"))
	if m := <-msgs; *m.Data != "a" {
		t.Errorf("message = %+v", m)
	}
}

func TestNewPage_RequiresID(t *testing.T) {
	if _, err := NewPage("", nil); !errors.Is(err, ErrInvalidClientID) {
		t.Errorf("NewPage(\"\") error = %v", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	page, _ := NewPage("c1", nil)

	if err := reg.Register(page); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if c, ok := reg.Get("c1"); !ok || c.ID() != "c1" {
		t.Errorf("Get(c1) = %v, %v", c, ok)
	}
	if p, ok := reg.Page("c1"); !ok || p != page {
		t.Errorf("Page(c1) = %v, %v", p, ok)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	reg.Unregister("c1")
	reg.Unregister("c1")
	if _, ok := reg.Get("c1"); ok {
		t.Error("Get after Unregister should miss")
	}
	if err := reg.Register(nil); !errors.Is(err, ErrInvalidClientID) {
		t.Errorf("Register(nil) error = %v", err)
	}
}
