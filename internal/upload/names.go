package upload

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// NameEntropyBytes is the number of random bytes behind every generated name.
const NameEntropyBytes = 32

// NameGenerator produces a fresh storage name on every call.
type NameGenerator interface {
	NewName() (string, error)
}

// NameFunc adapts a function to NameGenerator.
type NameFunc func() (string, error)

func (f NameFunc) NewName() (string, error) { return f() }

// RandomNames draws NameEntropyBytes from Source (crypto/rand when nil) and
// encodes them with unpadded URL-safe base64.
type RandomNames struct {
	Source io.Reader
}

func (g RandomNames) NewName() (string, error) {
	source := g.Source
	if source == nil {
		source = rand.Reader
	}
	buf := make([]byte, NameEntropyBytes)
	if _, err := io.ReadFull(source, buf); err != nil {
		return "", fmt.Errorf("generate storage name: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
