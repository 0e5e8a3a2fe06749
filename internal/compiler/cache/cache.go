// Package cache implements the content-addressable artifact store (spec §6
// "Persistence"): each stage's serialized output is hashed and written to
// `<cache_root>/<stage>/<hash[0..2]>/<hash>.bin`, keyed by that hash so
// identical input always resolves to the same blob. Grounded on
// termfx-morfx's ASTCache (sha256 hex digest as key, atomic hit/miss/
// eviction counters) generalized from an in-memory sync.Map to a disk-backed
// store, since compiled artifacts are meant to survive process restarts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Store is a sharded, SHA-256-keyed blob store rooted at a directory.
type Store struct {
	root      string
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func New(root string) *Store {
	return &Store{root: root}
}

// Hash computes the cache key for a blob: the hex SHA-256 digest of its
// bytes, identical in shape to ASTCache.hash.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(stage, hash string) string {
	if len(hash) < 2 {
		hash = hash + "00"
	}
	return filepath.Join(s.root, stage, hash[:2], hash+".bin")
}

// Get loads a previously stored blob by stage and content hash.
func (s *Store) Get(stage, hash string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(stage, hash))
	if err != nil {
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return data, true
}

// Put stores data under its own content hash and returns that hash, so
// callers can round-trip Put -> hash -> Get without recomputing it.
func (s *Store) Put(stage string, data []byte) (string, error) {
	hash := Hash(data)
	p := s.path(stage, hash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("cache: creating shard directory: %w", err)
	}
	if _, err := os.Stat(p); err == nil {
		return hash, nil // already present, content-addressed so it's identical
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("cache: writing blob: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return "", fmt.Errorf("cache: finalizing blob: %w", err)
	}
	return hash, nil
}

// Evict removes one cached blob, e.g. under an LRU policy the driver
// enforces externally (the store itself never evicts automatically).
func (s *Store) Evict(stage, hash string) error {
	if err := os.Remove(s.path(stage, hash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: evicting blob: %w", err)
	}
	s.evictions.Add(1)
	return nil
}

// Stats mirrors ASTCache.Stats: hit/miss/eviction counters for the
// telemetry layer to surface per compile session.
func (s *Store) Stats() map[string]int64 {
	hits := s.hits.Load()
	misses := s.misses.Load()
	return map[string]int64{
		"hits":      hits,
		"misses":    misses,
		"evictions": s.evictions.Load(),
		"hit_rate":  hits * 100 / (hits + misses + 1),
	}
}
