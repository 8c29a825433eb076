package feedback

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores feedback records in memory and is safe for concurrent use.
// It enforces the same (user, video, type) uniqueness as the Postgres schema.
type MemoryRepo struct {
	mu    sync.RWMutex
	byKey map[string]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byKey: make(map[string]Record)}
}

func recordKey(userID, videoID string, analysisType AnalysisType) string {
	return userID + "|" + videoID + "|" + string(analysisType)
}

// FindCached returns the record for an exact (user, video, type) key.
func (r *MemoryRepo) FindCached(ctx context.Context, userID, videoID string, analysisType AnalysisType) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byKey[recordKey(userID, videoID, analysisType)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// FindRawPayload returns any stored payload for this video.
func (r *MemoryRepo) FindRawPayload(ctx context.Context, userID, videoID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []Record
	for _, rec := range r.byKey {
		if rec.UserID == userID && rec.VideoID == videoID && len(rec.RawPayload) > 0 {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return candidates[0].RawPayload, nil
}

// Insert stores a new record, enforcing key uniqueness.
func (r *MemoryRepo) Insert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey(rec.UserID, rec.VideoID, rec.AnalysisType)
	if _, exists := r.byKey[key]; exists {
		return ErrDuplicate
	}
	r.byKey[key] = rec
	return nil
}

// ListByVideo returns all records for a video, newest first.
func (r *MemoryRepo) ListByVideo(ctx context.Context, userID, videoID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, rec := range r.byKey {
		if rec.UserID == userID && rec.VideoID == videoID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
