package rootpak

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerCacheReuse(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contents")
	require.NoError(t, os.MkdirAll(dir, 0755))

	puller := &fakePuller{}
	cache := NewLayerCache(dir, "ubuntu", "latest", puller)

	path, err := cache.Acquire(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, dir, path)
	assert.Zero(t, puller.calls)
}

func TestLayerCacheRefresh(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contents")
	stale := filepath.Join(dir, "stale")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	puller := &fakePuller{}
	cache := NewLayerCache(dir, "ubuntu", "latest", puller)

	path, err := cache.Acquire(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, dir, path)
	assert.Equal(t, 1, puller.calls)
	assert.True(t, puller.sawDirGone, "cache must be removed before pulling")
	assert.NotEqual(t, dir, puller.lastDest)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(dir, "etc", "os-release"))
}

func TestLayerCacheMiss(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contents")
	puller := &fakePuller{}
	cache := NewLayerCache(dir, "ubuntu", "latest", puller)
	assert.False(t, cache.Exists())

	path, err := cache.Acquire(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, dir, path)
	assert.Equal(t, 1, puller.calls)
	assert.True(t, cache.Exists())

	content, err := os.ReadFile(filepath.Join(dir, "etc", "os-release"))
	require.NoError(t, err)
	assert.Equal(t, "ID=ubuntu\nTAG=latest\n", string(content))

	// a second acquire is a hit
	_, err = cache.Acquire(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, puller.calls)
}

func TestLayerCacheNeedsRoot(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		needsRoot bool
	}{
		{"path error", &fs.PathError{Op: "unpack", Path: "/x", Err: syscall.EPERM}, true},
		{"syscall error", os.NewSyscallError("mknod", syscall.EPERM), true},
		{"link error", &os.LinkError{Op: "link", Old: "a", New: "b", Err: syscall.EPERM}, true},
		{"permission", fs.ErrPermission, true},
		{"network", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, false},
		{"registry", errors.New("MANIFEST_UNKNOWN"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "contents")
			cache := NewLayerCache(dir, "ubuntu", "latest", &fakePuller{err: tt.err})

			_, err := cache.Acquire(context.Background(), true)
			require.Error(t, err)
			assert.Equal(t, tt.needsRoot, errors.Is(err, ErrNeedsRoot))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLayerCacheFailedPullIsNotAHit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contents")
	puller := &fakePuller{
		err:     &fs.PathError{Op: "mknod", Path: "dev/null", Err: syscall.EPERM},
		partial: true,
	}
	cache := NewLayerCache(dir, "ubuntu", "latest", puller)

	_, err := cache.Acquire(context.Background(), true)
	require.ErrorIs(t, err, ErrNeedsRoot)
	assert.NotEqual(t, dir, puller.lastDest, "pull must not write into the cache directly")
	assert.FileExists(t, filepath.Join(puller.lastDest, "etc", "os-release"), "partial pull is left on disk")
	assert.False(t, cache.Exists())

	// re-run with enough privileges
	puller.err = nil
	path, err := cache.Acquire(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, dir, path)
	assert.Equal(t, 2, puller.calls)
	assert.FileExists(t, filepath.Join(dir, "etc", "os-release"))
}

func TestLayerCachePurge(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contents")
	cache := NewLayerCache(dir, "ubuntu", "latest", &fakePuller{})

	_, err := cache.Acquire(context.Background(), true)
	require.NoError(t, err)

	require.NoError(t, cache.Purge())
	assert.False(t, cache.Exists())
}

func TestLayerCacheReference(t *testing.T) {
	assert.Equal(t, "ubuntu:latest", NewLayerCache("", "ubuntu", "latest", nil).Reference())
	assert.Equal(t, "ubuntu", NewLayerCache("", "ubuntu", "", nil).Reference())
}
