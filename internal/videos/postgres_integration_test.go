package videos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubely/internal/testutil"
)

func TestPostgresStoreAgainstDatabase(t *testing.T) {
	pool := testutil.NewPostgresTestPool(t)
	ctx := context.Background()

	store, err := NewPostgresStore(pool)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))

	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err = store.Create(ctx, newVideo("v1", "u1", now))
	require.NoError(t, err)
	_, err = store.Create(ctx, newVideo("v2", "u1", now.Add(time.Second)))
	require.NoError(t, err)

	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, got.VideoURL)

	url := "http://localhost:9000/videos/clip.mp4"
	got.VideoURL = &url
	got.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.Update(ctx, got))

	got, err = store.Get(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, got.VideoURL)
	assert.Equal(t, url, *got.VideoURL)

	list, err := store.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "v2", list[0].ID)

	require.NoError(t, store.Delete(ctx, "v1"))
	_, err = store.Get(ctx, "v1")
	assert.ErrorIs(t, err, ErrNotFound)
}
