package videos

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps records in a sync.Map. Operations are atomic per key only.
type MemoryStore struct {
	records sync.Map // id -> Video
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, video Video) (Video, error) {
	if strings.TrimSpace(video.ID) == "" {
		return Video{}, errors.New("video id is required")
	}
	if _, loaded := s.records.LoadOrStore(video.ID, clone(video)); loaded {
		return Video{}, errors.New("video id already exists")
	}
	return video, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Video, error) {
	value, ok := s.records.Load(id)
	if !ok {
		return Video{}, ErrNotFound
	}
	return clone(value.(Video)), nil
}

func (s *MemoryStore) Update(_ context.Context, video Video) error {
	if _, ok := s.records.Load(video.ID); !ok {
		return ErrNotFound
	}
	s.records.Store(video.ID, clone(video))
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]Video, error) {
	var result []Video
	s.records.Range(func(_, value any) bool {
		video := value.(Video)
		if userID == "" || video.UserID == userID {
			result = append(result, clone(video))
		}
		return true
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if _, loaded := s.records.LoadAndDelete(id); !loaded {
		return ErrNotFound
	}
	return nil
}

// clone copies the URL pointers so callers never share mutable state with the map.
func clone(video Video) Video {
	if video.ThumbnailURL != nil {
		u := *video.ThumbnailURL
		video.ThumbnailURL = &u
	}
	if video.VideoURL != nil {
		u := *video.VideoURL
		video.VideoURL = &u
	}
	return video
}
