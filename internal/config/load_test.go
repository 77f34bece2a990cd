package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8091, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8091", cfg.Server.PublicBaseURL)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, StoreSQLite, cfg.Store.Provider)
	assert.Equal(t, BlobLocal, cfg.Blob.Provider)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxThumbnailBytes)
	assert.Equal(t, int64(1<<30), cfg.Upload.MaxVideoBytes)
	assert.Equal(t, "tubely-access", cfg.Auth.Issuer)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Empty(t, cfg.Source)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret is required")
}

func TestLoadFileThenEnvThenOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tubely.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  public_base_url: https://media.example.com/
auth:
  jwt_secret: from-file
store:
  provider: postgres
  postgres_dsn: postgres://tubely@localhost/tubely
blob:
  provider: s3
  s3:
    bucket: tubely-media
    region: us-east-2
upload:
  max_thumbnail_bytes: 2048
`), 0o600))

	t.Setenv("TUBELY_AUTH_JWT_SECRET", "from-env")
	t.Setenv("TUBELY_BLOB_S3_KEY_PREFIX", "uploads")
	t.Setenv("TUBELY_LOGGING_FORMAT", "JSON")

	cfg, err := Load(WithConfigPath(path), WithOverrides(map[string]any{"server.port": 9100}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "https://media.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, StorePostgres, cfg.Store.Provider)
	assert.Equal(t, "tubely-media", cfg.Blob.S3.Bucket)
	assert.Equal(t, "uploads", cfg.Blob.S3.KeyPrefix)
	assert.Equal(t, int64(2048), cfg.Upload.MaxThumbnailBytes)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9100", cfg.Addr())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(WithConfigPath(filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
}

func TestValidateProviderRequirements(t *testing.T) {
	t.Chdir(t.TempDir())
	loaded, err := Load(WithOverrides(map[string]any{"auth.jwt_secret": "s"}))
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "memory everything", mutate: func(c *Config) { c.Store.Provider = StoreMemory; c.Blob.Provider = BlobMemory }},
		{name: "postgres needs dsn", mutate: func(c *Config) { c.Store.Provider = StorePostgres }, wantErr: "store.postgres_dsn"},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Provider = "mongo" }, wantErr: `unsupported store.provider "mongo"`},
		{name: "s3 needs bucket", mutate: func(c *Config) { c.Blob.Provider = BlobS3 }, wantErr: "blob.s3.bucket"},
		{name: "minio needs endpoint and bucket", mutate: func(c *Config) { c.Blob.Provider = BlobMinio }, wantErr: "blob.minio.endpoint"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loaded
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestYAMLMasksSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(WithOverrides(map[string]any{
		"auth.jwt_secret":              "super-secret",
		"blob.s3.secret_access_key":    "aws-secret",
		"blob.minio.secret_access_key": "",
	}))
	require.NoError(t, err)

	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret")
	assert.NotContains(t, string(data), "aws-secret")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	auth := decoded["auth"].(map[string]any)
	assert.Equal(t, maskedValue, auth["jwt_secret"])
	server := decoded["server"].(map[string]any)
	assert.Equal(t, "10s", server["read_header_timeout"])

	assert.Equal(t, "super-secret", cfg.Auth.JWTSecret, "masking must not mutate the original")
}
