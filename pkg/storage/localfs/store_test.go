package localfs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/raybest4u/statemon/pkg/storage"
	"github.com/raybest4u/statemon/pkg/storage/status"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() storage.Store {
	return New(afero.NewMemMapFs())
}

func put(t *testing.T, store storage.Store, key, body string) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), key, strings.NewReader(body), storage.OverWrite))
}

func get(t *testing.T, store storage.Store, key string) string {
	t.Helper()
	rdr, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	body, err := io.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	return string(body)
}

func TestPutGetHas(t *testing.T) {
	ctx := context.Background()
	store := testStore()

	has, err := store.Has(ctx, "versions/00000001/version.yaml")
	require.NoError(t, err)
	assert.False(t, has)

	put(t, store, "versions/00000001/version.yaml", "id: x")

	has, err = store.Has(ctx, "versions/00000001/version.yaml")
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, "id: x", get(t, store, "versions/00000001/version.yaml"))
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	store := testStore()

	_, err := store.Get(ctx, "nope")
	require.Error(t, err)
	require.ErrorIs(t, err, status.ErrNotExists)
}

func TestPutExclusive(t *testing.T) {
	ctx := context.Background()
	store := testStore()

	require.NoError(t, store.Put(ctx, "key", strings.NewReader("one"), storage.NoOverWrite))

	err := store.Put(ctx, "key", strings.NewReader("two"), storage.NoOverWrite)
	require.Error(t, err)
	require.ErrorIs(t, err, status.ErrExists)
	assert.Equal(t, "one", get(t, store, "key"))

	// non-exclusive writes replace
	require.NoError(t, store.Put(ctx, "key", strings.NewReader("three"), storage.OverWrite))
	assert.Equal(t, "three", get(t, store, "key"))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := testStore()

	put(t, store, "doomed", "x")
	require.NoError(t, store.Delete(ctx, "doomed"))

	has, err := store.Has(ctx, "doomed")
	require.NoError(t, err)
	assert.False(t, has)

	err = store.Delete(ctx, "doomed")
	require.Error(t, err)
	require.ErrorIs(t, err, status.ErrNotExists)
}

func TestKeys(t *testing.T) {
	ctx := context.Background()
	store := testStore()

	put(t, store, "b/two", "2")
	put(t, store, "a/one", "1")
	put(t, store, "c", "3")

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "b/two", "c"}, keys)
}

func TestKeysPrefix(t *testing.T) {
	ctx := context.Background()
	store := testStore()

	put(t, store, "versions/001/version.yaml", "a")
	put(t, store, "versions/002/version.yaml", "b")
	put(t, store, "versions/003/version.yaml", "c")
	put(t, store, "branches/main/branch.yaml", "d")

	t.Run("filters by prefix", func(t *testing.T) {
		keys, next, err := store.KeysPrefix(ctx, "", "versions/", "", 0)
		require.NoError(t, err)
		assert.Empty(t, next)
		assert.Equal(t, []string{
			"versions/001/version.yaml",
			"versions/002/version.yaml",
			"versions/003/version.yaml",
		}, keys)
	})

	t.Run("paginates", func(t *testing.T) {
		keys, next, err := store.KeysPrefix(ctx, "", "versions/", "", 2)
		require.NoError(t, err)
		require.Len(t, keys, 2)
		require.NotEmpty(t, next)

		rest, last, err := store.KeysPrefix(ctx, next, "versions/", "", 2)
		require.NoError(t, err)
		assert.Empty(t, last)
		assert.Equal(t, []string{"versions/003/version.yaml"}, rest)
	})

	t.Run("groups on delimiter", func(t *testing.T) {
		keys, _, err := store.KeysPrefix(ctx, "", "versions/", "/", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"versions/001/",
			"versions/002/",
			"versions/003/",
		}, keys)
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := testStore()

	put(t, store, "a", "1")
	put(t, store, "b/c", "2")
	require.NoError(t, store.Clear(ctx))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStoreWriter(t *testing.T) {
	store := testStore()
	put(t, store, "key", "stream me")

	rdr, err := store.Get(context.Background(), "key")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = io.Copy(&buf, rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "stream me", buf.String())
}

func TestString(t *testing.T) {
	assert.Contains(t, testStore().String(), "localfs")
}
