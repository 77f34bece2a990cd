package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore persists records in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			thumbnail_url TEXT,
			video_url TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create videos table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, video Video) (Video, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (id, user_id, title, description, created_at, updated_at, thumbnail_url, video_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID, video.UserID, video.Title, video.Description,
		video.CreatedAt.UTC(), video.UpdatedAt.UTC(),
		optionalString(video.ThumbnailURL), optionalString(video.VideoURL),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return Video{}, errors.New("video id already exists")
		}
		return Video{}, err
	}
	return video, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, created_at, updated_at, thumbnail_url, video_url
		 FROM videos WHERE id = ?`, id)
	video, err := scanVideo(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Video{}, ErrNotFound
	}
	return video, err
}

func (s *SQLiteStore) Update(ctx context.Context, video Video) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE videos SET user_id = ?, title = ?, description = ?, updated_at = ?, thumbnail_url = ?, video_url = ?
		 WHERE id = ?`,
		video.UserID, video.Title, video.Description, video.UpdatedAt.UTC(),
		optionalString(video.ThumbnailURL), optionalString(video.VideoURL), video.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *SQLiteStore) List(ctx context.Context, userID string) ([]Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, created_at, updated_at, thumbnail_url, video_url
		 FROM videos WHERE user_id = ? ORDER BY created_at DESC`, userID)
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

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanVideo(scan func(dest ...any) error) (Video, error) {
	var (
		video     Video
		thumbnail sql.NullString
		videoURL  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)
	if err := scan(&video.ID, &video.UserID, &video.Title, &video.Description, &createdAt, &updatedAt, &thumbnail, &videoURL); err != nil {
		return Video{}, err
	}
	video.CreatedAt = createdAt.UTC()
	video.UpdatedAt = updatedAt.UTC()
	if thumbnail.Valid {
		video.ThumbnailURL = &thumbnail.String
	}
	if videoURL.Valid {
		video.VideoURL = &videoURL.String
	}
	return video, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
