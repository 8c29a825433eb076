package feedback

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildPromptPerType(t *testing.T) {
	payload := map[string]any{"poseScore": 72.5}
	for _, analysisType := range AllAnalysisTypes {
		prompt, err := BuildPrompt(analysisType, payload)
		if err != nil {
			t.Fatalf("%s: %v", analysisType, err)
		}
		if strings.Contains(prompt, payloadToken) {
			t.Fatalf("%s: injection token left in prompt", analysisType)
		}
		if !strings.Contains(prompt, "poseScore") {
			t.Fatalf("%s: payload not injected", analysisType)
		}
	}
}

func TestBuildPromptTemplatesDiffer(t *testing.T) {
	payload := map[string]any{"k": "v"}
	seen := make(map[string]AnalysisType)
	for _, analysisType := range AllAnalysisTypes {
		prompt, err := BuildPrompt(analysisType, payload)
		if err != nil {
			t.Fatalf("%s: %v", analysisType, err)
		}
		if other, dup := seen[prompt]; dup {
			t.Fatalf("templates for %s and %s are identical", analysisType, other)
		}
		seen[prompt] = analysisType
	}
}

func TestBuildPromptUnknownType(t *testing.T) {
	_, err := BuildPrompt(AnalysisType("sentiment"), map[string]any{"k": "v"})
	if !errors.Is(err, ErrInvalidAnalysisType) {
		t.Fatalf("expected ErrInvalidAnalysisType, got %v", err)
	}
}

func TestBuildPromptRejectsInvalidPayload(t *testing.T) {
	if _, err := BuildPrompt(TypeExecutiveSummary, nil); err == nil {
		t.Fatal("nil payload must be rejected before templating")
	}
}

func TestParseAnalysisTypeClosedSet(t *testing.T) {
	for _, known := range AllAnalysisTypes {
		if _, ok := ParseAnalysisType(string(known)); !ok {
			t.Fatalf("%s should parse", known)
		}
	}
	for _, raw := range []string{"", "Executive_Summary", "summary", "visualisations"} {
		if _, ok := ParseAnalysisType(raw); ok {
			t.Fatalf("%q should not parse", raw)
		}
	}
}
