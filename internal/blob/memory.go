package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type memoryObject struct {
	data      []byte
	mediaType string
}

// MemorySink keeps blobs in a process-local sync.Map. Nothing is evicted.
type MemorySink struct {
	baseURL string
	objects sync.Map // key -> memoryObject
}

var _ Sink = (*MemorySink)(nil)

// NewMemorySink returns an empty sink whose URLs use the local assets route.
func NewMemorySink(publicBaseURL string) *MemorySink {
	return &MemorySink{baseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *MemorySink) Put(ctx context.Context, key, mediaType string, body io.Reader, _ int64) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read blob: %w", err)
	}
	s.objects.Store(key, memoryObject{data: data, mediaType: mediaType})
	return s.baseURL + AssetsRoute + key, nil
}

func (s *MemorySink) Open(_ context.Context, key string) (*Object, error) {
	value, ok := s.objects.Load(key)
	if !ok {
		return nil, ErrObjectNotFound
	}
	obj := value.(memoryObject)
	return &Object{
		Body:      io.NopCloser(bytes.NewReader(obj.data)),
		MediaType: obj.mediaType,
		Size:      int64(len(obj.data)),
	}, nil
}

func (s *MemorySink) KeyForURL(rawURL string) (string, bool) {
	return keyFromPrefixedURL(rawURL, s.baseURL+AssetsRoute)
}

// Len reports how many blobs are stored.
func (s *MemorySink) Len() int {
	n := 0
	s.objects.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
