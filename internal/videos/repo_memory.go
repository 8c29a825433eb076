package videos

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of VideosRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Video // userId -> videos
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Video),
	}
}

// Create stores a video for a user.
func (r *MemoryRepo) Create(ctx context.Context, v Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[v.UserID] = append(r.data[v.UserID], v)
	return nil
}

// GetByID returns a video by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, videoID string) (Video, error) {
	if err := ctx.Err(); err != nil {
		return Video{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	vids := r.data[userId]
	for i := range vids {
		if vids[i].ID == videoID {
			return vids[i], nil
		}
	}
	return Video{}, ErrNotFound
}

// ListByUser returns videos for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userVids := r.data[userId]
	r.mu.RUnlock()

	if len(userVids) == 0 || offset >= len(userVids) {
		return []Video{}, nil
	}

	vids := make([]Video, len(userVids))
	copy(vids, userVids)
	sort.Slice(vids, func(i, j int) bool {
		return vids[i].CreatedAt.After(vids[j].CreatedAt)
	})

	end := len(vids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return vids[offset:end], nil
}

var _ VideosRepo = (*MemoryRepo)(nil)
