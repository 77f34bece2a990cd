package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinio struct {
	buckets map[string]bool
	puts    map[string]minio.PutObjectOptions
	data    map[string]string
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{buckets: map[string]bool{}, puts: map[string]minio.PutObjectOptions{}, data: map[string]string{}}
}

func (f *fakeMinio) PutObject(_ context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if !f.buckets[bucket] {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchBucket"}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.puts[object] = opts
	f.data[object] = string(body)
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: int64(len(body))}, nil
}

func (f *fakeMinio) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("not supported by fake")
}

func (f *fakeMinio) StatObject(_ context.Context, _, object string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if _, ok := f.data[object]; !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return minio.ObjectInfo{Key: object, Size: int64(len(f.data[object]))}, nil
}

func (f *fakeMinio) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeMinio) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.buckets[bucket] = true
	return nil
}

func TestMinioSinkEnsureBucketAndPut(t *testing.T) {
	fake := newFakeMinio()
	sink := newMinioSink(fake, MinioConfig{Endpoint: "localhost:9000", Bucket: "videos"})

	_, err := sink.Put(context.Background(), "a.mp4", "video/mp4", strings.NewReader("mp4"), 3)
	require.Error(t, err)

	require.NoError(t, sink.EnsureBucket(context.Background()))
	assert.True(t, fake.buckets["videos"])

	url, err := sink.Put(context.Background(), "a.mp4", "video/mp4", strings.NewReader("mp4"), 3)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/videos/a.mp4", url)
	assert.Equal(t, "video/mp4", fake.puts["a.mp4"].ContentType)
	assert.Equal(t, "mp4", fake.data["a.mp4"])

	key, ok := sink.KeyForURL(url)
	require.True(t, ok)
	assert.Equal(t, "a.mp4", key)
}

func TestMinioSinkPublicBaseURL(t *testing.T) {
	sink := newMinioSink(newFakeMinio(), MinioConfig{Endpoint: "minio:9000", Bucket: "thumbs", UseSSL: true, PublicBaseURL: "https://media.example.com/"})
	_, ok := sink.KeyForURL("https://media.example.com/thumbs/t.png")
	assert.True(t, ok)
	_, ok = sink.KeyForURL("https://minio:9000/thumbs/t.png")
	assert.False(t, ok)
}

func TestMinioSinkOpenMissing(t *testing.T) {
	sink := newMinioSink(newFakeMinio(), MinioConfig{Endpoint: "localhost:9000", Bucket: "videos"})
	_, err := sink.Open(context.Background(), "gone.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
