package videos

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements VideosRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new video.
func (r *PGRepo) Create(ctx context.Context, v Video) error {
	const query = `
INSERT INTO videos (
    id,
    user_id,
    file_name,
    mime_type,
    size_bytes,
    storage_provider,
    storage_key,
    duration_seconds,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	storageProvider := v.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}
	var duration sql.NullFloat64
	if v.DurationSeconds > 0 {
		duration = sql.NullFloat64{Float64: v.DurationSeconds, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		v.ID,
		v.UserID,
		v.FileName,
		v.MimeType,
		v.SizeBytes,
		storageProvider,
		v.StorageKey,
		duration,
		v.CreatedAt,
	)
	return err
}

// GetByID fetches a video by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userId, videoID string) (Video, error) {
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key, duration_seconds, created_at
FROM videos
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userId, videoID))
}

// ListByUser lists videos ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Video, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key, duration_seconds, created_at
FROM videos
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Video
	for rows.Next() {
		v, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Video, error) {
	var v Video
	var storageProvider sql.NullString
	var duration sql.NullFloat64
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.FileName,
		&v.MimeType,
		&v.SizeBytes,
		&storageProvider,
		&v.StorageKey,
		&duration,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Video{}, ErrNotFound
		}
		return Video{}, err
	}
	if storageProvider.Valid {
		v.StorageProvider = storageProvider.String
	}
	if duration.Valid {
		v.DurationSeconds = duration.Float64
	}
	return v, nil
}

var _ VideosRepo = (*PGRepo)(nil)
