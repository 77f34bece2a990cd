package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubely/internal/auth"
)

const testConfigYAML = `auth:
  jwt_secret: cli-secret
store:
  provider: memory
blob:
  provider: memory
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tubely.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommandMintsVerifiableToken(t *testing.T) {
	path := writeConfig(t)
	out, err := run(t, "token", "--config", path, "--user", "user-42", "--raw")
	require.NoError(t, err)

	subject, err := auth.NewTokenManager("cli-secret", "").Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-42", subject)
}

func TestTokenCommandRequiresUser(t *testing.T) {
	_, err := run(t, "token", "--config", writeConfig(t))
	require.Error(t, err)
}

func TestConfigCommandMasksSecrets(t *testing.T) {
	out, err := run(t, "config", "--config", writeConfig(t), "--validate")
	require.NoError(t, err)
	assert.NotContains(t, out, "cli-secret")
	assert.Contains(t, out, "********")
	assert.Contains(t, out, "configuration is valid")
}

func TestConfigCommandMissingFile(t *testing.T) {
	_, err := run(t, "config", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestTokenCommandPrintsRawTokenWhenPiped(t *testing.T) {
	out, err := run(t, "token", "--config", writeConfig(t), "--user", "user-9")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	assert.NotContains(t, token, "\n")

	subject, err := auth.NewTokenManager("cli-secret", "").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", subject)
}
