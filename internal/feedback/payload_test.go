package feedback

import (
	"math"
	"strings"
	"testing"
)

func TestValidatePayload(t *testing.T) {
	if err := ValidatePayload(nil); err == nil {
		t.Fatal("nil payload must be rejected")
	}
	if err := ValidatePayload(map[string]any{}); err == nil {
		t.Fatal("empty payload must be rejected")
	}
	if err := ValidatePayload(map[string]any{"score": math.Inf(1)}); err == nil {
		t.Fatal("unserializable payload must be rejected")
	}
	if err := ValidatePayload(map[string]any{"score": 71.2}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
}

func TestValidatePayloadErrorsAreValidationClass(t *testing.T) {
	err := ValidatePayload(nil)
	if Classify(err) != CategoryValidation {
		t.Fatalf("expected validation category, got %q", Classify(err))
	}
}

func TestSerializePayloadIsIndentedJSON(t *testing.T) {
	got, err := SerializePayload(map[string]any{"outer": map[string]any{"inner": 1}})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(got, "\n") || !strings.Contains(got, "\"inner\"") {
		t.Fatalf("unexpected serialization: %q", got)
	}
}
