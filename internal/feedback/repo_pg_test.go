package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	rec := Record{
		ID:           "rec-1",
		UserID:       "u1",
		VideoID:      "v1",
		AnalysisType: TypeExecutiveSummary,
		Feedback:     "text",
		RawPayload:   map[string]any{"poseScore": 72.5},
		Source:       SourceHybrid,
		Provider:     "motion-api",
		Model:        "gemini-2.0-flash",
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO feedback_records").
		WithArgs(
			rec.ID,
			rec.UserID,
			rec.VideoID,
			string(rec.AnalysisType),
			rec.Feedback,
			sqlmock.AnyArg(), // raw_payload
			string(rec.Source),
			rec.Provider,
			rec.Model,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertUniqueViolationReturnsErrDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO feedback_records").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "feedback_records_user_video_type_key"})

	err := repo.Insert(context.Background(), Record{
		ID:           "rec-2",
		UserID:       "u1",
		VideoID:      "v1",
		AnalysisType: TypeActionFixes,
		Feedback:     "text",
		Source:       SourceModelDirect,
		CreatedAt:    time.Now().UTC(),
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertOtherPGErrorPassesThrough(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO feedback_records").
		WillReturnError(&pgconn.PgError{Code: "23502", Message: "null value"})

	err := repo.Insert(context.Background(), Record{
		ID:           "rec-3",
		UserID:       "u1",
		VideoID:      "v1",
		AnalysisType: TypeActionFixes,
		CreatedAt:    time.Now().UTC(),
	})
	if err == nil || errors.Is(err, ErrDuplicate) {
		t.Fatalf("non-unique violation must not map to ErrDuplicate, got %v", err)
	}
}

func TestPGRepoFindCached(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	cols := []string{"id", "user_id", "video_id", "analysis_type", "feedback", "raw_payload", "source", "provider", "model", "created_at"}
	mock.ExpectQuery("SELECT id, user_id, video_id, analysis_type, feedback, raw_payload, source, provider, model, created_at FROM feedback_records").
		WithArgs("u1", "v1", string(TypeExecutiveSummary)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("rec-1", "u1", "v1", string(TypeExecutiveSummary), "text", `{"poseScore":72.5}`, string(SourceHybrid), "motion-api", "gemini-2.0-flash", now))

	rec, err := repo.FindCached(context.Background(), "u1", "v1", TypeExecutiveSummary)
	if err != nil {
		t.Fatalf("FindCached: %v", err)
	}
	if rec.ID != "rec-1" || rec.AnalysisType != TypeExecutiveSummary {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.RawPayload["poseScore"] != 72.5 {
		t.Fatalf("payload not decoded: %+v", rec.RawPayload)
	}
}

func TestPGRepoFindCachedMiss(t *testing.T) {
	repo, mock := newMockRepo(t)

	cols := []string{"id", "user_id", "video_id", "analysis_type", "feedback", "raw_payload", "source", "provider", "model", "created_at"}
	mock.ExpectQuery("SELECT id, user_id, video_id, analysis_type, feedback, raw_payload, source, provider, model, created_at FROM feedback_records").
		WithArgs("u1", "v1", string(TypeActionFixes)).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err := repo.FindCached(context.Background(), "u1", "v1", TypeActionFixes)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoFindRawPayload(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT raw_payload FROM feedback_records").
		WithArgs("u1", "v1").
		WillReturnRows(sqlmock.NewRows([]string{"raw_payload"}).AddRow(`{"frames":[]}`))

	payload, err := repo.FindRawPayload(context.Background(), "u1", "v1")
	if err != nil {
		t.Fatalf("FindRawPayload: %v", err)
	}
	if _, ok := payload["frames"]; !ok {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestPGRepoFindRawPayloadMiss(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT raw_payload FROM feedback_records").
		WithArgs("u1", "v1").
		WillReturnRows(sqlmock.NewRows([]string{"raw_payload"}))

	_, err := repo.FindRawPayload(context.Background(), "u1", "v1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
