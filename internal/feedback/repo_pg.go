package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const pgUniqueViolation = "23505"

// FindCached returns the record for an exact (user, video, type) key.
func (r *PGRepo) FindCached(ctx context.Context, userID, videoID string, analysisType AnalysisType) (Record, error) {
	const query = `
SELECT id, user_id, video_id, analysis_type, feedback, raw_payload, source, provider, model, created_at
FROM feedback_records
WHERE user_id = $1 AND video_id = $2 AND analysis_type = $3
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, videoID, string(analysisType))
	return scanRecord(row)
}

// FindRawPayload returns the payload of the oldest record for this video that
// carries one, regardless of analysis type.
func (r *PGRepo) FindRawPayload(ctx context.Context, userID, videoID string) (map[string]any, error) {
	const query = `
SELECT raw_payload
FROM feedback_records
WHERE user_id = $1 AND video_id = $2 AND raw_payload IS NOT NULL
ORDER BY created_at ASC
LIMIT 1`
	var raw sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID, videoID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !raw.Valid {
		return nil, ErrNotFound
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw.String), &payload); err != nil {
		return nil, ErrNotFound
	}
	if len(payload) == 0 {
		return nil, ErrNotFound
	}
	return payload, nil
}

// Insert stores a new record, translating unique violations into ErrDuplicate.
func (r *PGRepo) Insert(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO feedback_records (id, user_id, video_id, analysis_type, feedback, raw_payload, source, provider, model, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var rawPayload any
	if rec.RawPayload != nil {
		data, err := json.Marshal(rec.RawPayload)
		if err != nil {
			return err
		}
		rawPayload = data
	}

	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.VideoID,
		string(rec.AnalysisType),
		rec.Feedback,
		rawPayload,
		string(rec.Source),
		rec.Provider,
		rec.Model,
		rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListByVideo returns all records for a video, newest first.
func (r *PGRepo) ListByVideo(ctx context.Context, userID, videoID string) ([]Record, error) {
	const query = `
SELECT id, user_id, video_id, analysis_type, feedback, raw_payload, source, provider, model, created_at
FROM feedback_records
WHERE user_id = $1 AND video_id = $2
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var analysisType string
	var source string
	var rawPayload sql.NullString
	var provider sql.NullString
	var model sql.NullString
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.VideoID,
		&analysisType,
		&rec.Feedback,
		&rawPayload,
		&source,
		&provider,
		&model,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.AnalysisType = AnalysisType(analysisType)
	rec.Source = Source(source)
	if rawPayload.Valid {
		if err := json.Unmarshal([]byte(rawPayload.String), &rec.RawPayload); err != nil {
			// keep nil, the stored feedback text is still usable
			rec.RawPayload = nil
		}
	}
	if provider.Valid {
		rec.Provider = provider.String
	}
	if model.Valid {
		rec.Model = model.String
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
