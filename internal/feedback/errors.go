package feedback

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is returned by repositories when no record matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on a storage uniqueness conflict: another
	// request already inserted a record for the same (user, video, type).
	ErrDuplicate = errors.New("duplicate feedback record")
	// ErrInvalidAnalysisType is returned for identifiers outside the closed set.
	ErrInvalidAnalysisType = errors.New("unknown analysis type")
)

// Category is the closed error taxonomy every failure maps into before it
// leaves this package.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryConfiguration Category = "configuration"
	CategoryNetwork       Category = "network"
	CategoryTimeout       Category = "timeout"
	CategoryProcessing    Category = "processing"
	CategoryStorage       Category = "storage"
	CategoryDatabase      Category = "database"
	CategoryUnknown       Category = "unknown"
)

// Classify maps an error into the taxonomy by inspecting sentinels and
// category-indicative message markers. Classification is advisory: the
// original error is never altered.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	if errors.Is(err, ErrInvalidAnalysisType) {
		return CategoryValidation
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return CategoryTimeout
	case strings.Contains(msg, "payload validation") ||
		strings.Contains(msg, "is required") && strings.Contains(msg, "id"):
		return CategoryValidation
	case strings.Contains(msg, "not configured") ||
		strings.Contains(msg, "api_key") || strings.Contains(msg, "api key") ||
		strings.Contains(msg, "llm_model is required") ||
		strings.Contains(msg, "not implemented"):
		return CategoryConfiguration
	case strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "http status 5") ||
		isNetError(err):
		return CategoryNetwork
	case strings.Contains(msg, "object store") ||
		strings.Contains(msg, "video bytes") ||
		strings.Contains(msg, "s3 ") || strings.Contains(msg, "minio "):
		return CategoryStorage
	case strings.Contains(msg, "feedback lookup") ||
		strings.Contains(msg, "insert feedback") ||
		strings.Contains(msg, "payload lookup") ||
		strings.Contains(msg, "database") || strings.Contains(msg, "sql"):
		return CategoryDatabase
	case strings.Contains(msg, "parse") || strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "empty content") ||
		strings.Contains(msg, "motion api") ||
		strings.Contains(msg, "gemini") || strings.Contains(msg, "openai") ||
		strings.Contains(msg, "visualization") ||
		strings.Contains(msg, "llm"):
		return CategoryProcessing
	default:
		return CategoryUnknown
	}
}

var userMessages = map[Category]string{
	CategoryValidation:    "The request was invalid. Check the video and analysis type and try again.",
	CategoryConfiguration: "The analysis service is not configured correctly. Contact support.",
	CategoryNetwork:       "A downstream service could not be reached. Try again shortly.",
	CategoryTimeout:       "The analysis took too long and was aborted. Try again shortly.",
	CategoryProcessing:    "The analysis could not be completed for this video. Try again shortly.",
	CategoryStorage:       "The video could not be read from storage. Try again shortly.",
	CategoryDatabase:      "The result could not be saved. Try again shortly.",
	CategoryUnknown:       "Something went wrong. Try again shortly.",
}

var statusCodes = map[Category]int{
	CategoryValidation:    http.StatusBadRequest,
	CategoryConfiguration: http.StatusInternalServerError,
	CategoryNetwork:       http.StatusBadGateway,
	CategoryTimeout:       http.StatusGatewayTimeout,
	CategoryProcessing:    http.StatusBadGateway,
	CategoryStorage:       http.StatusInternalServerError,
	CategoryDatabase:      http.StatusInternalServerError,
	CategoryUnknown:       http.StatusInternalServerError,
}

// UserMessage returns the fixed user-safe sentence for a category. Internal
// error detail is logged, never returned to the caller.
func UserMessage(cat Category) string {
	if msg, ok := userMessages[cat]; ok {
		return msg
	}
	return userMessages[CategoryUnknown]
}

// StatusCode returns the fixed HTTP status for a category.
func StatusCode(cat Category) int {
	if code, ok := statusCodes[cat]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func isNetError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
