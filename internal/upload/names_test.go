package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubely/internal/blob"
)

func TestRandomNamesAreURLSafeAndUnique(t *testing.T) {
	gen := RandomNames{}
	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		name, err := gen.NewName()
		require.NoError(t, err)
		assert.Len(t, name, base64.RawURLEncoding.EncodedLen(NameEntropyBytes))
		assert.False(t, strings.ContainsAny(name, "+/="), name)
		assert.True(t, blob.ValidKey(name+".mp4"), name)

		_, dup := seen[name]
		require.False(t, dup, "duplicate name %s", name)
		seen[name] = struct{}{}
	}
}

func TestRandomNamesDeterministicSource(t *testing.T) {
	gen := RandomNames{Source: bytes.NewReader(bytes.Repeat([]byte{0xff}, NameEntropyBytes))}
	name, err := gen.NewName()
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("_", 42)+"8", name)
}

func TestRandomNamesShortSource(t *testing.T) {
	gen := RandomNames{Source: bytes.NewReader([]byte{1, 2, 3})}
	_, err := gen.NewName()
	require.Error(t, err)
}

func TestNameFunc(t *testing.T) {
	boom := errors.New("entropy exhausted")
	_, err := NameFunc(func() (string, error) { return "", boom }).NewName()
	assert.ErrorIs(t, err, boom)
}

func TestPoliciesApplyLimits(t *testing.T) {
	defaults := Policies(Limits{})
	assert.Equal(t, DefaultMaxThumbnailBytes, defaults[KindThumbnail].MaxBytes)
	assert.Equal(t, DefaultMaxVideoBytes, defaults[KindVideo].MaxBytes)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, defaults[KindThumbnail].MediaTypes())
	assert.True(t, defaults[KindVideo].Spool)
	assert.False(t, defaults[KindThumbnail].Spool)

	custom := Policies(Limits{MaxThumbnailBytes: 1024, MaxVideoBytes: 4096})
	assert.Equal(t, int64(1024), custom[KindThumbnail].MaxBytes)
	assert.Equal(t, int64(4096), custom[KindVideo].MaxBytes)
}
