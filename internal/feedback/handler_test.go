package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"videocoach-backend/internal/shared/server/middleware"
)

func setupFeedbackRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth("dev"))
	api := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func postAnalyze(t *testing.T, router *gin.Engine, videoID, analysisType string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"analysisType": analysisType})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+videoID+"/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeAnalyze(t *testing.T, resp *httptest.ResponseRecorder) analyzeResponse {
	t.Helper()
	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	llmClient := &fakeLLM{processResp: "coach feedback"}
	providerClient := &fakeProvider{payload: testPayload()}
	svc, _ := setupService(t, llmClient, providerClient)
	router := setupFeedbackRouter(t, svc)

	resp := postAnalyze(t, router, "v1", "executive_summary")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	out := decodeAnalyze(t, resp)
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.Feedback != "coach feedback" || out.RecordID == "" {
		t.Fatalf("unexpected body %+v", out)
	}
	if out.AnalysisType != "executive_summary" || out.Cached {
		t.Fatalf("unexpected body %+v", out)
	}
}

func TestAnalyzeEndpointCachedOnRepeat(t *testing.T) {
	llmClient := &fakeLLM{processResp: "coach feedback"}
	providerClient := &fakeProvider{payload: testPayload()}
	svc, _ := setupService(t, llmClient, providerClient)
	router := setupFeedbackRouter(t, svc)

	first := decodeAnalyze(t, postAnalyze(t, router, "v1", "action_fixes"))
	second := decodeAnalyze(t, postAnalyze(t, router, "v1", "action_fixes"))
	if !second.Cached {
		t.Fatal("repeat request should report cached=true")
	}
	if second.RecordID != first.RecordID {
		t.Fatal("repeat request should return the stored record")
	}
}

func TestAnalyzeEndpointUnknownType(t *testing.T) {
	llmClient := &fakeLLM{}
	providerClient := &fakeProvider{payload: testPayload()}
	svc, repo := setupService(t, llmClient, providerClient)
	router := setupFeedbackRouter(t, svc)

	resp := postAnalyze(t, router, "v1", "sentiment")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	out := decodeAnalyze(t, resp)
	if out.Success || out.Error == "" {
		t.Fatalf("expected error body, got %+v", out)
	}
	if recs, _ := repo.ListByVideo(context.Background(), "guest:test-guest", "v1"); len(recs) != 0 {
		t.Fatal("unknown type must not persist records")
	}
}

func TestAnalyzeEndpointMissingBody(t *testing.T) {
	llmClient := &fakeLLM{}
	providerClient := &fakeProvider{payload: testPayload()}
	svc, _ := setupService(t, llmClient, providerClient)
	router := setupFeedbackRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/v1/feedback", nil)
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestAnalyzeEndpointMapsFailureCategory(t *testing.T) {
	llmClient := &fakeLLM{processErr: contextDeadline{}}
	providerClient := &fakeProvider{payload: testPayload()}
	svc, _ := setupService(t, llmClient, providerClient)
	router := setupFeedbackRouter(t, svc)

	resp := postAnalyze(t, router, "v1", "executive_summary")
	if resp.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", resp.Code)
	}
	out := decodeAnalyze(t, resp)
	if out.Success || out.Error != UserMessage(CategoryTimeout) {
		t.Fatalf("expected fixed timeout message, got %+v", out)
	}
}

type contextDeadline struct{}

func (contextDeadline) Error() string { return "model call: context deadline exceeded" }

func TestAnalyzeEndpointRequiresIdentity(t *testing.T) {
	llmClient := &fakeLLM{}
	providerClient := &fakeProvider{payload: testPayload()}
	svc, _ := setupService(t, llmClient, providerClient)
	router := setupFeedbackRouter(t, svc)

	body, _ := json.Marshal(map[string]string{"analysisType": "executive_summary"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/v1/feedback", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", resp.Code)
	}
}

func TestListFeedbackEndpoint(t *testing.T) {
	llmClient := &fakeLLM{processResp: "coach feedback"}
	providerClient := &fakeProvider{payload: testPayload()}
	svc, _ := setupService(t, llmClient, providerClient)
	router := setupFeedbackRouter(t, svc)

	postAnalyze(t, router, "v1", "executive_summary")
	postAnalyze(t, router, "v1", "action_fixes")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/v1/feedback", nil)
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out struct {
		Feedback []Record `json:"feedback"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Feedback) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out.Feedback))
	}
}
