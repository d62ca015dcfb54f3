package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v1   string
		v2   string
		want int
	}{
		{"equal", "1.2.3", "1.2.3", 0},
		{"equal with prefix", "v1.2.3", "1.2.3", 0},
		{"patch newer", "1.2.4", "1.2.3", 1},
		{"minor older", "1.1.9", "1.2.0", -1},
		{"major newer", "2.0.0", "1.9.9", 1},
		{"suffix ignored", "1.2.3-rc1", "1.2.3", 0},
		{"dev older than release", "dev", "0.0.1", -1},
		{"release newer than dev", "0.0.1", "dev", 1},
		{"both dev", "dev", "", 0},
		{"commit hash is dev", "abc1234", "1.0.0", -1},
		{"dirty hash is dev", "abc1234-dirty", "1.0.0", -1},
		{"numeric string is not a hash", "1234567", "1.0.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Compare(tt.v1, tt.v2))
		})
	}
}

func TestIsNewer(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNewer("1.0.0", "1.0.1"))
	assert.True(t, IsNewer("dev", "0.1.0"))
	assert.False(t, IsNewer("1.0.1", "1.0.0"))
	assert.False(t, IsNewer("1.0.0", "1.0.0"))
}

func TestIsCommitHash(t *testing.T) {
	t.Parallel()

	assert.True(t, isCommitHash("abc1234"))
	assert.True(t, isCommitHash("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
	assert.False(t, isCommitHash("1234567"), "needs at least one letter")
	assert.False(t, isCommitHash("abc12"), "too short")
	assert.False(t, isCommitHash("xyz1234"), "not hex")
}

func TestLatestRelease(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/the-recircle-app/veconnect/releases/latest", r.URL.Path)
		assert.Contains(t, r.Header.Get("Accept"), "application/vnd.github.v3+json")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v1.4.0","name":"v1.4.0"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	release, err := client.LatestRelease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.4.0", release.TagName)
}

func TestLatestReleaseAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.LatestRelease(context.Background())
	require.ErrorIs(t, err, ErrReleaseAPIFailed)
}
