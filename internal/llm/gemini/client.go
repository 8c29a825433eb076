package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"videocoach-backend/internal/llm"
	"videocoach-backend/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"

	fileStateActive     = "ACTIVE"
	fileStateFailed     = "FAILED"
	fileStateProcessing = "PROCESSING"
)

// Client implements llm.Client using the Gemini REST API.
type Client struct {
	apiKey       string
	model        string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxPollWait  time.Duration
}

// NewClient constructs a new Gemini client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	timeout := 180 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:       apiKey,
		model:        model,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: timeout},
		pollInterval: 2 * time.Second,
		maxPollWait:  2 * time.Minute,
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type fileInfo struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	State string `json:"state"`
}

type uploadResponse struct {
	File fileInfo `json:"file"`
}

// Process sends a text prompt and returns the generated text.
func (c *Client) Process(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("gemini prompt is empty")
	}
	return c.generate(ctx, []part{{Text: prompt}})
}

// ProcessVideo uploads the video to the Gemini files endpoint, waits for the
// remote file to become ACTIVE, generates feedback against it with the fixed
// direct-video prompt, and deletes the remote file again on every path.
func (c *Client) ProcessVideo(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("gemini video upload: no data")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "video/mp4"
	}

	file, err := c.uploadFile(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	defer c.deleteFile(file.Name)

	active, err := c.waitForActive(ctx, file)
	if err != nil {
		return "", err
	}

	return c.generate(ctx, []part{
		{FileData: &fileData{MimeType: mimeType, FileURI: active.URI}},
		{Text: llm.DirectVideoPrompt},
	})
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("gemini request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil {
		if resp.StatusCode >= 500 {
			return "", fmt.Errorf("gemini http status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("gemini error: %s (%s)", parsed.Error.Message, parsed.Error.Status)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("gemini response missing candidates")
	}

	var b strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return text, nil
}

func (c *Client) uploadFile(ctx context.Context, data []byte, mimeType string) (fileInfo, error) {
	url := fmt.Sprintf("%s/upload/v1beta/files?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fileInfo{}, err
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return fileInfo{}, fmt.Errorf("gemini upload timeout: %w", err)
		}
		return fileInfo{}, fmt.Errorf("gemini upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fileInfo{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fileInfo{}, fmt.Errorf("gemini upload http status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fileInfo{}, fmt.Errorf("gemini upload response parse: %w", err)
	}
	if parsed.File.Name == "" {
		return fileInfo{}, fmt.Errorf("gemini upload response missing file name")
	}
	return parsed.File, nil
}

func (c *Client) waitForActive(ctx context.Context, file fileInfo) (fileInfo, error) {
	deadline := time.Now().Add(c.maxPollWait)
	current := file
	for {
		switch current.State {
		case fileStateActive:
			return current, nil
		case fileStateFailed:
			return fileInfo{}, fmt.Errorf("gemini file processing failed: %s", current.Name)
		}

		if time.Now().After(deadline) {
			return fileInfo{}, fmt.Errorf("gemini file processing timeout: %s still %s", current.Name, current.State)
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return fileInfo{}, ctx.Err()
		}

		refreshed, err := c.getFile(ctx, current.Name)
		if err != nil {
			return fileInfo{}, err
		}
		current = refreshed
	}
}

func (c *Client) getFile(ctx context.Context, name string) (fileInfo, error) {
	url := fmt.Sprintf("%s/v1beta/%s?key=%s", c.baseURL, name, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fileInfo{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fileInfo{}, fmt.Errorf("gemini file status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fileInfo{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fileInfo{}, fmt.Errorf("gemini file status http status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed fileInfo
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fileInfo{}, fmt.Errorf("gemini file status parse: %w", err)
	}
	return parsed, nil
}

// deleteFile is best-effort cleanup of the remote upload. It runs off the
// request context so cleanup still happens when the caller's deadline expired.
func (c *Client) deleteFile(name string) {
	if name == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/%s?key=%s", c.baseURL, name, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Error("gemini.file_cleanup", map[string]any{"file": name, "error": err.Error()})
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var _ llm.Client = (*Client)(nil)
