// Package cache implements the runtime.Cache interface backing the
// cacheGet/cacheSet/cacheDel/cacheClear builtins on top of SoloDB, the
// same embedded key/blob store the teacher project uses for its own
// remote-include cache.
package cache

import (
	"bytes"
	"io"
	"sync"
	"time"

	solodb "github.com/phillarmonic/SoloDB"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/value"
)

// Store is a SoloDB-backed runtime.Cache. Keys set without a TTL (a TTL
// of 0) are given a far-future expiry rather than none, since SoloDB's
// blob API is always expiry-based; a negative TTL yields an expiry that
// has already passed.
type Store struct {
	db *solodb.DB

	mu   sync.Mutex
	keys map[string]bool
}

const noTTLHorizon = 100 * 365 * 24 * time.Hour

// Open creates or reopens a cache database at path.
func Open(path string) (*Store, error) {
	db, err := solodb.Open(solodb.Options{Path: path, Durability: solodb.SyncBatch})
	if err != nil {
		return nil, err
	}
	return &Store{db: db, keys: map[string]bool{}}, nil
}

func (s *Store) Get(key string) (value.Value, bool, error) {
	rc, _, _, err := s.db.GetBlob(key)
	if err == solodb.ErrNotFound || err == solodb.ErrExpired {
		return value.Undefined{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	v, err := value.ParseJSON(raw, ast.UNKNOWN)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Store) Set(key string, v value.Value, ttlSeconds float64) error {
	raw, err := value.MarshalJSON(v)
	if err != nil {
		return err
	}
	expiry := time.Now().Add(noTTLHorizon)
	if ttlSeconds != 0 {
		expiry = time.Now().Add(time.Duration(ttlSeconds * float64(time.Second)))
	}
	if err := s.db.SetBlob(key, bytes.NewReader(raw), int64(len(raw)), expiry); err != nil {
		return err
	}
	s.mu.Lock()
	s.keys[key] = true
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
	return s.db.Delete(key)
}

// Clear removes every key this process has set. SoloDB exposes no
// enumerate-all primitive, so the key set is tracked in memory; a cache
// populated by a prior server process and never touched this run will
// not be swept by Clear.
func (s *Store) Clear() error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	s.keys = map[string]bool{}
	s.mu.Unlock()
	for _, k := range keys {
		if err := s.db.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
