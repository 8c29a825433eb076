package feedback

import "time"

// Record is one stored feedback result for a (user, video, analysis type) triple.
// Records are written exactly once per successful pipeline run and never mutated.
type Record struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	VideoID      string         `json:"videoId"`
	AnalysisType AnalysisType   `json:"analysisType"`
	Feedback     string         `json:"feedback"`
	RawPayload   map[string]any `json:"rawPayload,omitempty"`
	Source       Source         `json:"source"`
	Provider     string         `json:"provider,omitempty"`
	Model        string         `json:"model,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Result is what the orchestrator returns to the HTTP layer.
type Result struct {
	RecordID     string
	AnalysisType AnalysisType
	Feedback     string
	Source       Source
	Cached       bool
}
