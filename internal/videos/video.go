package videos

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by every Store backend when the id is unknown.
var ErrNotFound = errors.New("video not found")

// Video is the metadata record describing one uploaded video.
type Video struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	VideoURL     *string   `json:"video_url"`
}

// Store persists video records keyed by id. Update replaces the whole record
// and the last writer wins.
type Store interface {
	Create(ctx context.Context, video Video) (Video, error)
	Get(ctx context.Context, id string) (Video, error)
	Update(ctx context.Context, video Video) error
	List(ctx context.Context, userID string) ([]Video, error)
	Delete(ctx context.Context, id string) error
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
