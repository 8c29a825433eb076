package feedback

import "context"

// Repo defines persistence operations for feedback records.
type Repo interface {
	// FindCached returns the record for an exact (user, video, type) key.
	FindCached(ctx context.Context, userID, videoID string, analysisType AnalysisType) (Record, error)
	// FindRawPayload returns the motion analysis payload from any existing
	// record for this video, regardless of analysis type.
	FindRawPayload(ctx context.Context, userID, videoID string) (map[string]any, error)
	// Insert stores a new record. Returns ErrDuplicate when the uniqueness
	// constraint over (user, video, type) is violated.
	Insert(ctx context.Context, rec Record) error
	// ListByVideo returns all records for a video, newest first.
	ListByVideo(ctx context.Context, userID, videoID string) ([]Record, error)
}
