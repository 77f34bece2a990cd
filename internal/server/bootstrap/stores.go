package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tubely/internal/config"
	"tubely/internal/logging"
	"tubely/internal/videos"
)

// BuildVideoStore opens the configured record store. The returned cleanup
// releases connections and is never nil.
func BuildVideoStore(ctx context.Context, cfg config.StoreConfig, logger logging.Logger) (videos.Store, func(), error) {
	logger = logging.OrNop(logger)
	noop := func() {}

	switch cfg.Provider {
	case config.StoreMemory:
		logger.Warn("Video records are kept in memory and will be lost on restart")
		return videos.NewMemoryStore(), noop, nil

	case config.StoreSQLite:
		store, err := videos.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite store %s: %w", cfg.SQLitePath, err)
		}
		logger.Info("Video records backed by SQLite at %s", cfg.SQLitePath)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close sqlite store: %v", err)
			}
		}, nil

	case config.StorePostgres:
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		pool, err := pgxpool.New(ctx, strings.TrimSpace(cfg.PostgresDSN))
		if err != nil {
			return nil, noop, fmt.Errorf("create video db pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ping video db: %w", err)
		}
		store, err := videos.NewPostgresStore(pool)
		if err == nil {
			err = store.EnsureSchema(ctx)
		}
		if err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("prepare postgres store: %w", err)
		}
		logger.Info("Video records backed by Postgres")
		return store, pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported store provider %q", cfg.Provider)
	}
}
