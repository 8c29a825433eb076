package videos

import "context"

// VideosRepo defines persistence operations for videos.
type VideosRepo interface {
	Create(ctx context.Context, v Video) error
	GetByID(ctx context.Context, userId, videoID string) (Video, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Video, error)
}
