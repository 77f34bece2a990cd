package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// AssetsRoute is the path prefix under which local and memory sinks serve blobs.
const AssetsRoute = "/assets/"

// LocalSink persists blobs as files in a directory and serves them via
// <publicBaseURL>/assets/<key>.
type LocalSink struct {
	dir     string
	baseURL string
}

var _ Sink = (*LocalSink)(nil)

// NewLocalSink creates the directory when missing.
func NewLocalSink(dir, publicBaseURL string) (*LocalSink, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, fmt.Errorf("local sink dir is required")
	}
	if strings.HasPrefix(trimmed, "~/") {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~/"))
		}
	}
	trimmed = filepath.Clean(trimmed)
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create local sink dir: %w", err)
	}
	return &LocalSink{dir: trimmed, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Dir returns the directory blobs are written to.
func (s *LocalSink) Dir() string {
	return s.dir
}

func (s *LocalSink) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	tmpPath := tmp.Name()
	writeErr := func() error {
		if _, err := io.Copy(tmp, body); err != nil {
			tmp.Close()
			return err
		}
		return tmp.Close()
	}()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write blob: %w", writeErr)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, key)); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("finalize blob: %w", err)
	}
	return s.baseURL + AssetsRoute + key, nil
}

func (s *LocalSink) Open(_ context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, ErrObjectNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat blob: %w", err)
	}
	return &Object{Body: f, MediaType: mediaTypeForKey(key), Size: info.Size()}, nil
}

func (s *LocalSink) KeyForURL(rawURL string) (string, bool) {
	return keyFromPrefixedURL(rawURL, s.baseURL+AssetsRoute)
}

// mediaTypeForKey derives the stored media type from the key extension; local
// files carry no metadata of their own.
func mediaTypeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".mp4":
		return "video/mp4"
	}
	if mt := mime.TypeByExtension(filepath.Ext(key)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
