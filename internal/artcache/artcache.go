// Package artcache caches embedded album art on disk,
// backing the "albumart"/"readpicture" commands. Adapted from the
// teacher's internal/cache.DiskCache: same sha256-keyed content-addressed
// file layout and atomic tmp-then-rename write, but the in-memory LRU
// index is now github.com/hashicorp/golang-lru/v2 instead of a hand-rolled
// container/list, and entries are raw image bytes plus a MIME type rather
// than audio PCM with a format header.
package artcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// indexEntry is what the in-memory LRU tracks per key; the actual bytes
// always live on disk so an eviction only drops the index pointer, not the
// file (EnsureDecoded-style content dedup, not a byte cache).
type indexEntry struct {
	path string
	mime string
}

// Cache is a disk-backed, LRU-indexed artwork store.
type Cache struct {
	dir   string
	index *lru.Cache[string, indexEntry]
}

// New returns a Cache rooted at dir, with capacity entries tracked in the
// in-memory LRU index (capacity must be > 0).
func New(dir string, capacity int) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artcache: create dir: %w", err)
	}
	idx, err := lru.New[string, indexEntry](capacity)
	if err != nil {
		return nil, fmt.Errorf("artcache: new lru: %w", err)
	}
	return &Cache{dir: dir, index: idx}, nil
}

func (c *Cache) keyPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}

// Get returns cached artwork bytes for key, and whether it was found. A
// hit in the LRU index is trusted without re-reading the file's existence
// beyond the actual read.
func (c *Cache) Get(key string) (data []byte, mime string, ok bool) {
	entry, found := c.index.Get(key)
	if !found {
		return nil, "", false
	}
	b, err := os.ReadFile(entry.path)
	if err != nil {
		c.index.Remove(key)
		return nil, "", false
	}
	return b, entry.mime, true
}

// Put stores artwork bytes for key, evicting the least recently used entry
// from the index if capacity is exceeded (the underlying file for an
// evicted key is left on disk; GC of orphaned files is out of scope, as is
// true for the teacher's analogous DiskCache size-bound eviction).
func (c *Cache) Put(key string, data []byte, mime string) error {
	path := c.keyPath(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("artcache: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("artcache: finalize file: %w", err)
	}

	c.index.Add(key, indexEntry{path: path, mime: mime})
	return nil
}

// Invalidate drops key from the index and removes its backing file.
func (c *Cache) Invalidate(key string) error {
	entry, found := c.index.Get(key)
	c.index.Remove(key)
	if !found {
		return nil
	}
	if err := os.Remove(entry.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("artcache: remove file: %w", err)
	}
	return nil
}

// Len returns the number of entries currently tracked in the index.
func (c *Cache) Len() int {
	return c.index.Len()
}
