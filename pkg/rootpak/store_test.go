package rootpak

import (
	"path/filepath"
	"testing"

	"github.com/mirkobrombin/rootpak/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "rootpak.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRecordBuilt(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordBuilt(types.Container{
		RootPath:  "/roots/ltsp",
		BaseImage: "ubuntu:latest",
		Status:    types.StatusBuilt,
	}))

	containers, err := s.GetContainers()
	require.NoError(t, err)
	require.Len(t, containers, 1)
	first := containers[0]
	assert.NotEmpty(t, first.Id)
	assert.Equal(t, "ubuntu:latest", first.BaseImage)

	// rebuilding the same root replaces the record
	require.NoError(t, s.RecordBuilt(types.Container{
		RootPath:  "/roots/ltsp",
		BaseImage: "ubuntu:latest",
		AptProxy:  "http://127.0.0.1:3142",
		Status:    types.StatusBuilt,
	}))

	containers, err = s.GetContainers()
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, first.Id, containers[0].Id)
	assert.Equal(t, "http://127.0.0.1:3142", containers[0].AptProxy)
}

func TestStoreRecordStatus(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RecordBuilt(types.Container{RootPath: "/roots/ltsp", Status: types.StatusBuilt}))

	require.NoError(t, s.RecordStatus("ltsp", "/roots/ltsp", types.StatusRunning, 4242))
	c, err := s.GetContainerByName("ltsp")
	require.NoError(t, err)
	assert.Equal(t, types.StatusRunning, c.Status)
	assert.Equal(t, 4242, c.Pid)
	assert.Equal(t, "/roots/ltsp", c.RootPath)

	// stop only knows the name
	require.NoError(t, s.RecordStatus("ltsp", "", types.StatusStopped, 0))
	c, err = s.GetContainerByName("ltsp")
	require.NoError(t, err)
	assert.Equal(t, types.StatusStopped, c.Status)
	assert.Zero(t, c.Pid)
}

func TestStoreRecordStatusUnknownRoot(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordStatus("c1", "/roots/other", types.StatusRunning, 1))
	c, err := s.GetContainerByName("c1")
	require.NoError(t, err)
	assert.Equal(t, "/roots/other", c.RootPath)
	assert.NotEmpty(t, c.Id)
}

func TestStoreForget(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RecordBuilt(types.Container{RootPath: "/roots/a"}))
	require.NoError(t, s.RecordBuilt(types.Container{RootPath: "/roots/b"}))

	require.NoError(t, s.Forget("/roots/a"))

	containers, err := s.GetContainers()
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, "/roots/b", containers[0].RootPath)
}

func TestStoreContainerNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetContainerByName("ghost")
	assert.ErrorIs(t, err, ErrContainerNotFound)
}
