package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// exerciseStore runs the shared contract against any Store implementation.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, KeyWeather); err != nil || ok {
		t.Fatalf("Get on empty store = ok:%v err:%v, want miss", ok, err)
	}

	if err := s.Set(ctx, KeyWeather, `{"temp":20}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := s.Get(ctx, KeyWeather)
	if err != nil || !ok {
		t.Fatalf("Get after Set = ok:%v err:%v", ok, err)
	}
	if got != `{"temp":20}` {
		t.Errorf("Get = %q, want %q", got, `{"temp":20}`)
	}

	// Overwrite is wholesale
	if err := s.Set(ctx, KeyWeather, `{"temp":21}`); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	got, _, _ = s.Get(ctx, KeyWeather)
	if got != `{"temp":21}` {
		t.Errorf("Get after overwrite = %q", got)
	}

	if err := s.Delete(ctx, KeyWeather); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyWeather); ok {
		t.Error("Get after Delete should miss")
	}
	if err := s.Delete(ctx, KeyWeather); err != nil {
		t.Errorf("Delete should be idempotent, got: %v", err)
	}

	if err := s.Set(ctx, "", "x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Set with empty key = %v, want ErrInvalidKey", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestMemoryStore_Contract(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore_Contract(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "wx.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wx.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := s.Set(ctx, KeyTheme, `[[1,2,3],[4,5,6]]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	got, ok, err := s.Get(ctx, KeyTheme)
	if err != nil || !ok || got != `[[1,2,3],[4,5,6]]` {
		t.Errorf("Get after reopen = %q ok:%v err:%v", got, ok, err)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRedisStore_Contract(t *testing.T) {
	url := os.Getenv("WXSHELL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("WXSHELL_TEST_REDIS_URL not set")
	}
	s, err := OpenRedis(context.Background(), url)
	if err != nil {
		t.Fatalf("OpenRedis failed: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want error
	}{
		{"canonical", KeyAddress, nil},
		{"empty", "", ErrInvalidKey},
		{"whitespace", "   ", ErrInvalidKey},
		{"newline", "a\nb", ErrInvalidKey},
		{"too long", strings.Repeat("k", MaxKeyLength+1), ErrKeyTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateKey(tt.key); !errors.Is(err, tt.want) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.want)
			}
		})
	}
}

func TestLookup_LegacyFallback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "weatherData", `{"legacy":true}`)

	got, ok, err := Lookup(ctx, s, KeyWeather)
	if err != nil || !ok || got != `{"legacy":true}` {
		t.Fatalf("Lookup legacy = %q ok:%v err:%v", got, ok, err)
	}

	_ = s.Set(ctx, KeyWeather, `{"legacy":false}`)
	got, _, _ = Lookup(ctx, s, KeyWeather)
	if got != `{"legacy":false}` {
		t.Errorf("canonical slot should win, got %q", got)
	}

	if _, ok, _ := Lookup(ctx, s, KeyTheme); ok {
		t.Error("THEME has no legacy spelling and should miss")
	}
}

func TestRemove_ClearsLegacySpelling(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, KeyAddress, `{"address":{"country":"ES"}}`)
	_ = s.Set(ctx, "address", `{"address":{"country":"PT"}}`)

	if err := Remove(ctx, s, KeyAddress); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if v, ok, _ := Lookup(ctx, s, KeyAddress); ok {
		t.Errorf("Lookup after Remove = %q, want miss", v)
	}

	_ = s.Set(ctx, KeyTheme, `[[1,2,3],[4,5,6]]`)
	if err := Remove(ctx, s, KeyTheme); err != nil {
		t.Fatalf("Remove(THEME) error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyTheme); ok {
		t.Error("THEME still present")
	}
	if err := Remove(ctx, nil, KeyTheme); !errors.Is(err, ErrNilStore) {
		t.Errorf("Remove(nil) = %v, want ErrNilStore", err)
	}
}

func TestLookup_NilStore(t *testing.T) {
	if _, _, err := Lookup(context.Background(), nil, KeyWeather); !errors.Is(err, ErrNilStore) {
		t.Errorf("Lookup(nil) = %v, want ErrNilStore", err)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				switch j % 3 {
				case 0:
					_ = s.Set(ctx, KeyAddress, "v")
				case 1:
					_, _, _ = s.Get(ctx, KeyAddress)
				case 2:
					_ = s.Delete(ctx, KeyAddress)
				}
			}
		}(i)
	}
	wg.Wait()
}
