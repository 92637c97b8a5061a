package cache_test

import (
	"path/filepath"
	"testing"

	"github.com/phillarmonic/mockscript/internal/cache"
	"github.com/phillarmonic/mockscript/internal/value"
)

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "test.solo"))
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetAndGet(t *testing.T) {
	s := openStore(t)
	if err := s.Set("greeting", value.String("hi"), 0); err != nil {
		t.Fatal(err)
	}
	got, found, err := s.Get("greeting")
	if err != nil || !found {
		t.Fatalf("expected a hit, found=%v err=%v", found, err)
	}
	if got != value.String("hi") {
		t.Fatalf("expected \"hi\", got %v", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := openStore(t)
	_, found, err := s.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected no hit for a missing key")
	}
}

func TestSetWithTTLExpires(t *testing.T) {
	s := openStore(t)
	if err := s.Set("short-lived", value.Number(1), -1); err != nil {
		t.Fatal(err)
	}
	_, found, err := s.Get("short-lived")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected a key set with a negative TTL to already be expired")
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	s := openStore(t)
	if err := s.Set("k", value.Bool(true), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	_, found, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected key to be gone after delete")
	}
}

func TestClearRemovesEveryTrackedKey(t *testing.T) {
	s := openStore(t)
	if err := s.Set("a", value.Number(1), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("b", value.Number(2), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := s.Get("a"); found {
		t.Fatal("expected a to be cleared")
	}
	if _, found, _ := s.Get("b"); found {
		t.Fatal("expected b to be cleared")
	}
}
