package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"videocoach-backend/internal/feedback"
	"videocoach-backend/internal/shared/retry"
)

// Client calls the specialized motion analysis API. Transient failures are
// retried with exponential backoff; non-retryable failures surface at once.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient constructs a Client for the given motion API base URL.
func NewClient(baseURL string, timeout time.Duration, maxAttempts int) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		baseDelay:   time.Second,
	}
}

// Analyze uploads the video and returns the provider's analysis payload.
func (c *Client) Analyze(ctx context.Context, fileName string, data []byte, mimeType string) (map[string]any, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("motion api is not configured")
	}
	return retry.Do(ctx, c.maxAttempts, c.baseDelay, func(ctx context.Context) (map[string]any, error) {
		return c.analyzeOnce(ctx, fileName, data, mimeType)
	})
}

func (c *Client) analyzeOnce(ctx context.Context, fileName string, data []byte, mimeType string) (map[string]any, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename="%s"`, fileName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("motion api request build: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("motion api request build: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("motion api request build: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("motion api request build: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("motion api request timeout: %w", ctx.Err())
		}
		return nil, fmt.Errorf("motion api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("motion api http status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("motion api response parse: %w", err)
	}
	if err := feedback.ValidatePayload(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// HealthCheck probes the provider's health endpoint with a short deadline.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("motion api is not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("motion api request build: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("motion api request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("motion api http status %d", resp.StatusCode)
	}
	return nil
}

var _ feedback.ProviderClient = (*Client)(nil)
