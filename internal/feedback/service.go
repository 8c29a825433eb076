package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"videocoach-backend/internal/llm"
	"videocoach-backend/internal/shared/metrics"
	"videocoach-backend/internal/shared/telemetry"
)

// ProviderClient is the specialized motion analysis provider. Implementations
// own their retry policy; the orchestrator calls Analyze at most once per run.
type ProviderClient interface {
	Analyze(ctx context.Context, fileName string, data []byte, mimeType string) (map[string]any, error)
}

// VideoSource resolves stored video content for analysis.
type VideoSource interface {
	ResolveBytes(ctx context.Context, userID, videoID string) (data []byte, fileName, mimeType string, err error)
}

// Service orchestrates feedback generation: cache lookup, payload reuse,
// provider call with fallback, prompt build, model call, persist.
type Service struct {
	Repo            Repo
	Videos          VideoSource
	Provider        ProviderClient
	LLM             llm.Client
	ProviderEnabled bool
	ProviderName    string
	ModelName       string
}

// Analyze runs one synchronous feedback pipeline for (user, video, type).
// The single write happens at the end; a uniqueness conflict on insert means
// a concurrent request won the race, and the stored record is returned as a
// cached success instead of an error.
func (s *Service) Analyze(ctx context.Context, userID, videoID string, analysisType AnalysisType) (Result, error) {
	start := time.Now()
	metrics.IncFeedbackStarted()

	if _, ok := ParseAnalysisType(string(analysisType)); !ok {
		return s.fail(userID, videoID, analysisType, fmt.Errorf("%w: %q", ErrInvalidAnalysisType, analysisType))
	}

	cached, err := s.Repo.FindCached(ctx, userID, videoID, analysisType)
	if err == nil {
		metrics.IncFeedbackCached()
		telemetry.Info("feedback.status", map[string]any{
			"status": "cached", "userId": userID, "videoId": videoID,
			"analysisType": string(analysisType), "recordId": cached.ID,
		})
		return resultFrom(cached, true), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return s.fail(userID, videoID, analysisType, fmt.Errorf("feedback lookup: %w", err))
	}

	payload, err := s.Repo.FindRawPayload(ctx, userID, videoID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return s.fail(userID, videoID, analysisType, fmt.Errorf("payload lookup: %w", err))
	}

	var videoData []byte
	var videoName, videoMime string
	resolveVideo := func() error {
		if videoData != nil {
			return nil
		}
		data, fileName, mimeType, rerr := s.Videos.ResolveBytes(ctx, userID, videoID)
		if rerr != nil {
			return rerr
		}
		videoData, videoName, videoMime = data, fileName, mimeType
		return nil
	}

	if payload == nil && s.ProviderEnabled && s.Provider != nil {
		if rerr := resolveVideo(); rerr != nil {
			return s.fail(userID, videoID, analysisType, rerr)
		}
		got, perr := s.Provider.Analyze(ctx, videoName, videoData, videoMime)
		if perr == nil {
			perr = ValidatePayload(got)
		}
		if perr != nil {
			metrics.IncProviderFallback()
			telemetry.Error("provider.fallback", map[string]any{
				"userId": userID, "videoId": videoID,
				"analysisType": string(analysisType),
				"reason":       sanitizeError(perr),
			})
		} else {
			payload = got
		}
	}

	var feedbackText string
	var source Source
	if payload != nil {
		source = SourceHybrid
		prompt, berr := BuildPrompt(analysisType, payload)
		if berr != nil {
			return s.fail(userID, videoID, analysisType, berr)
		}
		feedbackText, err = s.LLM.Process(ctx, prompt)
		if err != nil {
			return s.fail(userID, videoID, analysisType, err)
		}
		if analysisType == TypeVisualizations {
			if verr := validateVisualizations(feedbackText); verr != nil {
				return s.fail(userID, videoID, analysisType, verr)
			}
		}
	} else {
		source = SourceModelDirect
		if rerr := resolveVideo(); rerr != nil {
			return s.fail(userID, videoID, analysisType, rerr)
		}
		feedbackText, err = s.LLM.ProcessVideo(ctx, videoData, videoMime)
		if err != nil {
			return s.fail(userID, videoID, analysisType, err)
		}
	}

	rec := Record{
		ID:           uuid.NewString(),
		UserID:       userID,
		VideoID:      videoID,
		AnalysisType: analysisType,
		Feedback:     feedbackText,
		RawPayload:   payload,
		Source:       source,
		Provider:     s.ProviderName,
		Model:        s.ModelName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicate) {
			winner, ferr := s.Repo.FindCached(ctx, userID, videoID, analysisType)
			if ferr != nil {
				return s.fail(userID, videoID, analysisType, fmt.Errorf("feedback lookup: %w", ferr))
			}
			metrics.IncFeedbackCached()
			telemetry.Info("feedback.status", map[string]any{
				"status": "conflict_cached", "userId": userID, "videoId": videoID,
				"analysisType": string(analysisType), "recordId": winner.ID,
			})
			return resultFrom(winner, true), nil
		}
		return s.fail(userID, videoID, analysisType, fmt.Errorf("insert feedback: %w", err))
	}

	metrics.IncFeedbackCompleted()
	metrics.ObserveFeedbackDurationMs(float64(time.Since(start).Milliseconds()))
	telemetry.Info("feedback.status", map[string]any{
		"status": "completed", "userId": userID, "videoId": videoID,
		"analysisType": string(analysisType), "recordId": rec.ID,
		"source": string(source), "durationMs": time.Since(start).Milliseconds(),
	})
	return resultFrom(rec, false), nil
}

// List returns all stored feedback for a video, newest first.
func (s *Service) List(ctx context.Context, userID, videoID string) ([]Record, error) {
	recs, err := s.Repo.ListByVideo(ctx, userID, videoID)
	if err != nil {
		return nil, fmt.Errorf("feedback lookup: %w", err)
	}
	return recs, nil
}

func (s *Service) fail(userID, videoID string, analysisType AnalysisType, err error) (Result, error) {
	metrics.IncFeedbackFailed()
	telemetry.Error("feedback.status", map[string]any{
		"status": "failed", "userId": userID, "videoId": videoID,
		"analysisType": string(analysisType),
		"category":     string(Classify(err)),
		"error":        sanitizeError(err),
	})
	return Result{}, err
}

func resultFrom(rec Record, cached bool) Result {
	return Result{
		RecordID:     rec.ID,
		AnalysisType: rec.AnalysisType,
		Feedback:     rec.Feedback,
		Source:       rec.Source,
		Cached:       cached,
	}
}

// visualizationOutput is the chart data contract the visualizations prompt
// demands from the model. Pointers distinguish an absent series from a
// present-but-empty one; the prompt allows empty arrays.
type visualizationOutput struct {
	ScoreTimeline  *[]json.RawMessage `json:"scoreTimeline"`
	SkillRadar     *[]json.RawMessage `json:"skillRadar"`
	IssueFrequency *[]json.RawMessage `json:"issueFrequency"`
	Summary        *string            `json:"summary"`
}

// validateVisualizations rejects model output that is not usable chart data.
// Markdown fences are tolerated, anything else malformed is a hard failure.
// A quiet video may legitimately produce empty series.
func validateVisualizations(raw string) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var out visualizationOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return fmt.Errorf("visualization output parse: %w", err)
	}
	if out.ScoreTimeline == nil || out.SkillRadar == nil || out.IssueFrequency == nil {
		return fmt.Errorf("visualization output parse: missing chart series")
	}
	if out.Summary == nil {
		return fmt.Errorf("visualization output parse: missing summary")
	}
	return nil
}
