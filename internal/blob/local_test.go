package blob

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "Xq3T9bY-_abcdefghijklmnopqrstuvwxyz0123456789.png"

func TestLocalSinkPutAndOpen(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewLocalSink(dir, "http://localhost:8091/")
	require.NoError(t, err)

	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	url, err := sink.Put(context.Background(), testKey, "image/png", bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8091/assets/"+testKey, url)

	_, statErr := os.Stat(filepath.Join(dir, testKey))
	require.NoError(t, statErr)

	key, ok := sink.KeyForURL(url)
	require.True(t, ok)
	assert.Equal(t, testKey, key)

	obj, err := sink.Open(context.Background(), key)
	require.NoError(t, err)
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/png", obj.MediaType)
	assert.Equal(t, int64(len(payload)), obj.Size)
}

func TestLocalSinkLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewLocalSink(dir, "http://localhost:8091")
	require.NoError(t, err)

	_, err = sink.Put(context.Background(), "clip.mp4", "video/mp4", bytes.NewReader([]byte("mp4")), 3)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "clip.mp4", entries[0].Name())
}

func TestLocalSinkRejectsUnsafeKeys(t *testing.T) {
	sink, err := NewLocalSink(t.TempDir(), "http://localhost:8091")
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "a/b.png", "x.PNG", "x.png.tmp-123"} {
		_, err := sink.Put(context.Background(), key, "image/png", bytes.NewReader(nil), 0)
		assert.Error(t, err, "key %q", key)
		_, err = sink.Open(context.Background(), key)
		assert.ErrorIs(t, err, ErrObjectNotFound, "key %q", key)
	}
}

func TestLocalSinkOpenMissing(t *testing.T) {
	sink, err := NewLocalSink(t.TempDir(), "http://localhost:8091")
	require.NoError(t, err)

	_, err = sink.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalSinkKeyForForeignURL(t *testing.T) {
	sink, err := NewLocalSink(t.TempDir(), "http://localhost:8091")
	require.NoError(t, err)

	_, ok := sink.KeyForURL("https://bucket.s3.us-east-1.amazonaws.com/a.png")
	assert.False(t, ok)
	_, ok = sink.KeyForURL("http://localhost:8091/assets/../secret")
	assert.False(t, ok)
}

func TestMemorySinkPreservesMediaType(t *testing.T) {
	sink := NewMemorySink("http://localhost:8091")
	url, err := sink.Put(context.Background(), "thumb.jpg", "image/jpeg", bytes.NewReader([]byte("jpeg")), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, sink.Len())

	key, ok := sink.KeyForURL(url)
	require.True(t, ok)
	obj, err := sink.Open(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.MediaType)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	_, err = sink.Open(context.Background(), "other.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
