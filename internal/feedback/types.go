package feedback

// AnalysisType identifies one of the fixed feedback formats a user can request.
type AnalysisType string

const (
	TypeExecutiveSummary  AnalysisType = "executive_summary"
	TypeStrengthsFailures AnalysisType = "strengths_failures"
	TypeTimewiseAnalysis  AnalysisType = "timewise_analysis"
	TypeActionFixes       AnalysisType = "action_fixes"
	TypeVisualizations    AnalysisType = "visualizations"
)

// AllAnalysisTypes lists every supported analysis type.
var AllAnalysisTypes = []AnalysisType{
	TypeExecutiveSummary,
	TypeStrengthsFailures,
	TypeTimewiseAnalysis,
	TypeActionFixes,
	TypeVisualizations,
}

// ParseAnalysisType validates a raw identifier against the closed set.
func ParseAnalysisType(raw string) (AnalysisType, bool) {
	t := AnalysisType(raw)
	for _, known := range AllAnalysisTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Source records how a feedback record was produced.
type Source string

const (
	// SourceProviderOnly means the motion analysis payload was returned as-is,
	// without a model pass. No current pipeline path emits it; it is reserved
	// for responses that serve the provider payload as the feedback itself.
	SourceProviderOnly Source = "provider_only"
	// SourceModelDirect means the model analyzed the raw video without a payload.
	SourceModelDirect Source = "model_direct"
	// SourceHybrid means a motion analysis payload was templated through the model.
	SourceHybrid Source = "hybrid"
)
