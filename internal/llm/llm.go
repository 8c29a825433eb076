package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for feedback generation.
type Client interface {
	// Process sends a fully built prompt and returns the generated text.
	Process(ctx context.Context, prompt string) (string, error)
	// ProcessVideo sends raw video bytes with a fixed generic-feedback prompt.
	// Providers that cannot ingest video return a configuration error.
	ProcessVideo(ctx context.Context, data []byte, mimeType string) (string, error)
}

// DirectVideoPrompt is the fixed prompt used when no motion analysis payload
// is available and the model has to work from the raw video alone.
const DirectVideoPrompt = `You are an experienced movement and performance coach reviewing a training video.
Watch the video and give direct, practical feedback:
1. Overall impression and an approximate score out of 100.
2. The three strongest aspects of the performance.
3. The three most important problems, each with a concrete correction.
4. One habit to focus on before the next session.
Be blunt and specific. Refer to what is visible in the video, not generic advice.`

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation used when no provider is configured.
type PlaceholderClient struct{}

// Process returns ErrNotImplemented.
func (PlaceholderClient) Process(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotImplemented
}

// ProcessVideo returns ErrNotImplemented.
func (PlaceholderClient) ProcessVideo(ctx context.Context, data []byte, mimeType string) (string, error) {
	_ = ctx
	_ = data
	_ = mimeType
	return "", ErrNotImplemented
}
