package feedback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyCategories(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryUnknown},
		{"invalid type sentinel", fmt.Errorf("bad request: %w", ErrInvalidAnalysisType), CategoryValidation},
		{"payload validation", errors.New("analysis payload validation: payload is empty"), CategoryValidation},
		{"deadline", context.DeadlineExceeded, CategoryTimeout},
		{"wrapped timeout", errors.New("motion api request timeout: context deadline exceeded"), CategoryTimeout},
		{"missing api key", errors.New("GEMINI_API_KEY is required"), CategoryConfiguration},
		{"video unsupported", errors.New("openai provider is not configured for direct video analysis"), CategoryConfiguration},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5001: connect: connection refused"), CategoryNetwork},
		{"server error", errors.New("motion api http status 502: bad gateway"), CategoryNetwork},
		{"object store", errors.New("object store open: no such key"), CategoryStorage},
		{"insert failure", errors.New("insert feedback: pq something broke"), CategoryDatabase},
		{"model parse", errors.New("gemini response parse: unexpected end of JSON input"), CategoryProcessing},
		{"visualization", errors.New("visualization output parse: missing chart series"), CategoryProcessing},
		{"mystery", errors.New("something odd happened"), CategoryUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestStatusCodesAreFixedPerCategory(t *testing.T) {
	cases := map[Category]int{
		CategoryValidation:    http.StatusBadRequest,
		CategoryConfiguration: http.StatusInternalServerError,
		CategoryNetwork:       http.StatusBadGateway,
		CategoryTimeout:       http.StatusGatewayTimeout,
		CategoryProcessing:    http.StatusBadGateway,
		CategoryStorage:       http.StatusInternalServerError,
		CategoryDatabase:      http.StatusInternalServerError,
		CategoryUnknown:       http.StatusInternalServerError,
	}
	for cat, want := range cases {
		if got := StatusCode(cat); got != want {
			t.Errorf("StatusCode(%q) = %d, want %d", cat, got, want)
		}
	}
	if StatusCode(Category("nonsense")) != http.StatusInternalServerError {
		t.Error("unmapped category should default to 500")
	}
}

func TestUserMessageNeverEchoesInternals(t *testing.T) {
	internal := errors.New("pq: password authentication failed for user admin")
	msg := UserMessage(Classify(internal))
	if msg == "" {
		t.Fatal("every category must map to a message")
	}
	if strings.Contains(msg, "pq:") || strings.Contains(msg, "password") {
		t.Fatalf("user message leaked internals: %q", msg)
	}
}

func TestSanitizeErrorTruncatesAndFlattens(t *testing.T) {
	long := strings.Repeat("x", 600)
	got := sanitizeError(errors.New("line one\nline two: " + long))
	if strings.ContainsAny(got, "\n\r") {
		t.Fatal("sanitized error should be a single line")
	}
	if len(got) > 500 {
		t.Fatalf("sanitized error too long: %d", len(got))
	}
	if sanitizeError(nil) != "" {
		t.Fatal("nil error should sanitize to empty string")
	}
}
