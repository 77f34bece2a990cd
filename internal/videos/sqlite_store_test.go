package videos

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tubely.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Now().UTC().Truncate(time.Second)
	_, err = store.Create(ctx, newVideo("v1", "u1", now))
	require.NoError(t, err)
	_, err = store.Create(ctx, newVideo("v1", "u1", now))
	assert.Error(t, err)

	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Nil(t, got.ThumbnailURL)
	assert.True(t, now.Equal(got.CreatedAt))

	thumb := "http://localhost:8091/assets/x.png"
	got.ThumbnailURL = &thumb
	got.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.Update(ctx, got))

	got, err = store.Get(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, got.ThumbnailURL)
	assert.Equal(t, thumb, *got.ThumbnailURL)
	assert.Nil(t, got.VideoURL)

	list, err := store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, "v1"))
	_, err = store.Get(ctx, "v1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, got), ErrNotFound)
}
