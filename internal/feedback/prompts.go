package feedback

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed prompts/executive_summary.txt
	promptExecutiveSummary string
	//go:embed prompts/strengths_failures.txt
	promptStrengthsFailures string
	//go:embed prompts/timewise_analysis.txt
	promptTimewiseAnalysis string
	//go:embed prompts/action_fixes.txt
	promptActionFixes string
	//go:embed prompts/visualizations.txt
	promptVisualizations string
)

// payloadToken is the single injection point in every template.
const payloadToken = "{{ANALYSIS_DATA}}"

var promptTemplates = map[AnalysisType]string{
	TypeExecutiveSummary:  promptExecutiveSummary,
	TypeStrengthsFailures: promptStrengthsFailures,
	TypeTimewiseAnalysis:  promptTimewiseAnalysis,
	TypeActionFixes:       promptActionFixes,
	TypeVisualizations:    promptVisualizations,
}

// BuildPrompt injects the serialized motion analysis payload into the
// template for the requested analysis type. It fails fast on an unknown type
// or a structurally invalid payload; no network calls are made here.
func BuildPrompt(analysisType AnalysisType, payload map[string]any) (string, error) {
	tmpl, ok := promptTemplates[analysisType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAnalysisType, analysisType)
	}
	if err := ValidatePayload(payload); err != nil {
		return "", err
	}
	serialized, err := SerializePayload(payload)
	if err != nil {
		return "", err
	}
	return strings.Replace(tmpl, payloadToken, serialized, 1), nil
}
