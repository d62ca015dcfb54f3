// Package cache persists the result of the last release check so repeated
// version commands do not hit the GitHub API on every run.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/the-recircle-app/veconnect/internal/fileutil"
)

// DefaultTTL is how long a cached release check stays fresh.
const DefaultTTL = 24 * time.Hour

const cacheFilePermissions = 0o600

// Entry is a cached release check result.
type Entry struct {
	TagName   string    `json:"tag_name"`
	CheckedAt time.Time `json:"checked_at"`
}

// ReleaseCache is a file-backed single-entry cache.
type ReleaseCache struct {
	path string
	ttl  time.Duration
}

// NewReleaseCache creates a cache at the given file path. A non-positive
// ttl falls back to DefaultTTL.
func NewReleaseCache(path string, ttl time.Duration) *ReleaseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReleaseCache{path: path, ttl: ttl}
}

// Get returns the cached entry if it exists and is still fresh.
// A missing, stale, or malformed cache file reads as a miss.
func (c *ReleaseCache) Get() (Entry, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}
	if entry.TagName == "" || time.Since(entry.CheckedAt) > c.ttl {
		return Entry{}, false
	}
	return entry, true
}

// Put stores the entry, stamping CheckedAt if unset.
func (c *ReleaseCache) Put(entry Entry) error {
	if entry.CheckedAt.IsZero() {
		entry.CheckedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling release cache: %w", err)
	}

	if err := fileutil.WriteAtomic(c.path, data, cacheFilePermissions); err != nil {
		return fmt.Errorf("writing release cache: %w", err)
	}
	return nil
}

// Clear removes the cache file. Clearing a missing cache is a no-op.
func (c *ReleaseCache) Clear() error {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing release cache: %w", err)
	}
	return nil
}
