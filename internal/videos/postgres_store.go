package videos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pool abstracts the subset of pgxpool.Pool used by the store for easier testing.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists records in the videos table.
type PostgresStore struct {
	pool pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore builds a store backed by the provided connection pool.
func NewPostgresStore(pool pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("postgres store requires pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the videos table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS videos (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    thumbnail_url TEXT,
    video_url TEXT
)`)
	if err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, video Video) (Video, error) {
	_, err := s.pool.Exec(ctx, `
INSERT INTO videos (id, user_id, title, description, created_at, updated_at, thumbnail_url, video_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		video.ID,
		video.UserID,
		video.Title,
		video.Description,
		video.CreatedAt,
		video.UpdatedAt,
		optionalString(video.ThumbnailURL),
		optionalString(video.VideoURL),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Video{}, errors.New("video id already exists")
		}
		return Video{}, err
	}
	return video, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Video, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, user_id, title, description, created_at, updated_at, thumbnail_url, video_url
FROM videos WHERE id = $1`, id)
	video, err := scanVideo(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return Video{}, ErrNotFound
	}
	return video, err
}

func (s *PostgresStore) Update(ctx context.Context, video Video) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE videos
SET user_id = $2, title = $3, description = $4, updated_at = $5, thumbnail_url = $6, video_url = $7
WHERE id = $1`,
		video.ID,
		video.UserID,
		video.Title,
		video.Description,
		video.UpdatedAt,
		optionalString(video.ThumbnailURL),
		optionalString(video.VideoURL),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]Video, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, title, description, created_at, updated_at, thumbnail_url, video_url
FROM videos WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Video
	for rows.Next() {
		video, err := scanVideo(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, video)
	}
	return result, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
