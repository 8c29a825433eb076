package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func requestIDRouter(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		*capture = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	var fromCtx string
	router := requestIDRouter(&fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	header := resp.Header().Get("X-Request-Id")
	if header == "" {
		t.Fatal("expected generated request ID header")
	}
	if fromCtx != header {
		t.Fatalf("context ID %q does not match header %q", fromCtx, header)
	}
}

func TestRequestIDHonorsInboundHeader(t *testing.T) {
	var fromCtx string
	router := requestIDRouter(&fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "upstream-id-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if fromCtx != "upstream-id-42" {
		t.Fatalf("expected upstream ID to pass through, got %q", fromCtx)
	}
	if got := resp.Header().Get("X-Request-Id"); got != "upstream-id-42" {
		t.Fatalf("expected header echoed back, got %q", got)
	}
}

func TestRequestIDReplacesOversizedHeader(t *testing.T) {
	var fromCtx string
	router := requestIDRouter(&fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("x", 300))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if fromCtx == "" || len(fromCtx) > maxRequestIDLen {
		t.Fatalf("expected generated replacement ID, got %q", fromCtx)
	}
}
