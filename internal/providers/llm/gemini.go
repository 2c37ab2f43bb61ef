package llm

import (
	"context"
	"errors"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient wraps the official generative-ai SDK.
type GeminiClient struct {
	model *genai.GenerativeModel
	retry RetryConfig
}

// NewGeminiClient builds an SDK-backed client for the given model name.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{model: c.GenerativeModel(model), retry: DefaultRetryConfig()}, nil
}

func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	var text string
	err := WithRetry(ctx, c.retry, func(ctx context.Context) error {
		resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			// The SDK folds transport-level failures into opaque errors;
			// treat them all as transient and let the bounded retry decide.
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		text = firstText(resp)
		if text == "" {
			return errors.New("no candidates")
		}
		return nil
	})
	return text, err
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
