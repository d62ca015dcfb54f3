package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T, ttl time.Duration) *ReleaseCache {
	t.Helper()
	return NewReleaseCache(filepath.Join(t.TempDir(), "release-check.json"), ttl)
}

func TestGetMissingFile(t *testing.T) {
	c := testCache(t, DefaultTTL)

	_, ok := c.Get()
	assert.False(t, ok)
}

func TestPutAndGet(t *testing.T) {
	c := testCache(t, DefaultTTL)

	require.NoError(t, c.Put(Entry{TagName: "v1.2.0"}))

	entry, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, "v1.2.0", entry.TagName)
	assert.WithinDuration(t, time.Now().UTC(), entry.CheckedAt, time.Minute)
}

func TestGetStaleEntry(t *testing.T) {
	c := testCache(t, time.Hour)

	require.NoError(t, c.Put(Entry{
		TagName:   "v1.2.0",
		CheckedAt: time.Now().UTC().Add(-2 * time.Hour),
	}))

	_, ok := c.Get()
	assert.False(t, ok)
}

func TestGetMalformedFile(t *testing.T) {
	c := testCache(t, DefaultTTL)
	require.NoError(t, os.WriteFile(c.path, []byte("{not json"), 0o600))

	_, ok := c.Get()
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	c := testCache(t, DefaultTTL)

	require.NoError(t, c.Put(Entry{TagName: "v1.2.0"}))
	require.NoError(t, c.Clear())
	require.NoError(t, c.Clear())

	_, ok := c.Get()
	assert.False(t, ok)
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	c := testCache(t, 0)
	assert.Equal(t, DefaultTTL, c.ttl)
}
