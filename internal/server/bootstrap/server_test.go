package bootstrap

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubely/internal/blob"
	"tubely/internal/config"
	"tubely/internal/logging"
	"tubely/internal/videos"
)

func testConfig(t *testing.T, overrides map[string]any) config.Config {
	t.Helper()
	base := map[string]any{
		"auth.jwt_secret":  "test-secret",
		"store.provider":   config.StoreMemory,
		"blob.provider":    config.BlobMemory,
		"blob.scratch_dir": t.TempDir(),
		"metrics.enabled":  false,
		"server.port":      8091,
	}
	for k, v := range overrides {
		base[k] = v
	}
	cfg, err := config.Load(config.WithOverrides(base))
	require.NoError(t, err)
	return cfg
}

func TestBuildVideoStoreProviders(t *testing.T) {
	ctx := context.Background()

	store, cleanup, err := BuildVideoStore(ctx, config.StoreConfig{Provider: config.StoreMemory}, logging.Nop())
	require.NoError(t, err)
	cleanup()
	assert.IsType(t, &videos.MemoryStore{}, store)

	path := filepath.Join(t.TempDir(), "tubely.db")
	store, cleanup, err = BuildVideoStore(ctx, config.StoreConfig{Provider: config.StoreSQLite, SQLitePath: path}, logging.Nop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &videos.SQLiteStore{}, store)

	_, cleanup, err = BuildVideoStore(ctx, config.StoreConfig{Provider: "mongo"}, logging.Nop())
	require.Error(t, err)
	require.NotNil(t, cleanup)
}

func TestBuildSinkProviders(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t, map[string]any{"blob.provider": config.BlobLocal, "blob.local_dir": t.TempDir()})
	sink, serves, err := BuildSink(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	assert.True(t, serves)
	assert.IsType(t, &blob.LocalSink{}, sink)

	cfg = testConfig(t, nil)
	sink, serves, err = BuildSink(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	assert.True(t, serves)
	assert.IsType(t, &blob.MemorySink{}, sink)

	cfg.Blob.Provider = "ftp"
	_, _, err = BuildSink(ctx, cfg, logging.Nop())
	require.Error(t, err)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.Auth.JWTSecret = ""
	_, err := Build(context.Background(), cfg, logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func TestBuildWiresRouter(t *testing.T) {
	srv, err := Build(context.Background(), testConfig(t, nil), logging.Nop())
	require.NoError(t, err)
	defer srv.Close()
	require.NotNil(t, srv.Pipeline())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	srv, err := Build(context.Background(), testConfig(t, map[string]any{"metrics.enabled": true}), logging.Nop())
	require.NoError(t, err)
	defer srv.Close()

	apiLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	metricsLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, apiLn, metricsLn) }()

	resp, err := http.Get("http://" + apiLn.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + metricsLn.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "tubely_http_requests")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
