package l2

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type failingWritesFS struct {
	billy.Filesystem
}

func (f failingWritesFS) TempFile(dir, prefix string) (billy.File, error) {
	return nil, errors.New("disk full")
}

func TestFSStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(memfs.New(), zaptest.NewLogger(t))
	require.NoError(t, err)

	value := []byte(`[{"id":"m1","title":"Week 1 slides"}]`)
	require.NoError(t, store.Set(ctx, "materials:c1", value))

	entry, found := store.Get(ctx, "materials:c1")
	assert.True(t, found)
	require.NotNil(t, entry)
	assert.Equal(t, value, entry.Data)
	assert.Zero(t, entry.ExpiresAt, "durable entries never expire")
	assert.False(t, entry.IsExpired())
}

func TestFSStore_Get_Missing(t *testing.T) {
	store, err := NewFSStore(memfs.New(), zaptest.NewLogger(t))
	require.NoError(t, err)

	entry, found := store.Get(context.Background(), "topics:c1")
	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestFSStore_Get_MalformedReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	fsys := memfs.New()
	store, err := NewFSStore(fsys, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, util.WriteFile(fsys, FileName("topics:c1"), []byte("{truncated"), 0o600))

	entry, found := store.Get(ctx, "topics:c1")
	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestFSStore_Set_WriteFailureIsReported(t *testing.T) {
	store, err := NewFSStore(failingWritesFS{memfs.New()}, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = store.Set(context.Background(), "materials:c1", []byte("v"))
	assert.Error(t, err)

	_, found := store.Get(context.Background(), "materials:c1")
	assert.False(t, found)
}

func TestFSStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(memfs.New(), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "materials:c1", []byte("first")))
	require.NoError(t, store.Set(ctx, "materials:c1", []byte("second")))

	entry, found := store.Get(ctx, "materials:c1")
	assert.True(t, found)
	assert.Equal(t, []byte("second"), entry.Data)
}

func TestFSStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(memfs.New(), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "materials:c1", []byte("v")))
	store.Delete(ctx, "materials:c1")
	store.Delete(ctx, "materials:never-written")

	_, found := store.Get(ctx, "materials:c1")
	assert.False(t, found)
}

func TestFSStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFSStore(osfs.New(dir), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "file_content:abc", []byte(`{"name":"notes.txt"}`)))

	second, err := NewFSStore(osfs.New(dir), zaptest.NewLogger(t))
	require.NoError(t, err)

	entry, found := second.Get(ctx, "file_content:abc")
	assert.True(t, found)
	assert.Equal(t, []byte(`{"name":"notes.txt"}`), entry.Data)

	files, err := osfs.New(dir).ReadDir(".")
	require.NoError(t, err)
	require.Len(t, files, 1, "temp files must not be left behind")
	assert.Equal(t, FileName("file_content:abc"), files[0].Name())
}

func TestFileName_IsFilesystemSafe(t *testing.T) {
	for _, key := range []string{"courses", "materials:c1", "submissions:c1:cw1", "file_content:a%2Fb"} {
		name := FileName(key)
		assert.True(t, strings.HasSuffix(name, ".json"))
		assert.NotContains(t, name, "/")
		assert.NotContains(t, name, ":")
	}
	assert.NotEqual(t, FileName("materials:c1"), FileName("topics:c1"))
}
