package blob

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
)

// ErrObjectNotFound is returned by Open when no blob exists under the key.
var ErrObjectNotFound = errors.New("blob not found")

// keyPattern restricts keys to flat, URL-safe names with an optional extension.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}(\.[a-z0-9]{1,10})?$`)

// Sink persists named blobs and reports the URL they can be fetched from.
type Sink interface {
	// Put stores body under key. size is the exact byte length, or -1 when unknown.
	Put(ctx context.Context, key, mediaType string, body io.Reader, size int64) (string, error)
	// Open returns the blob stored under key.
	Open(ctx context.Context, key string) (*Object, error)
	// KeyForURL inverts the URL scheme used by Put.
	KeyForURL(rawURL string) (string, bool)
}

// Object is an opened blob. Callers must close Body.
type Object struct {
	Body      io.ReadCloser
	MediaType string
	Size      int64
}

// ValidKey reports whether key is a flat, URL-safe blob name.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

func validateKey(key string) error {
	if !ValidKey(key) {
		return errors.New("invalid blob key")
	}
	return nil
}

// keyFromPrefixedURL returns the remainder of rawURL after prefix when it is a valid key.
func keyFromPrefixedURL(rawURL, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	if !ValidKey(key) {
		return "", false
	}
	return key, true
}
