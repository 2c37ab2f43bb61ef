package llm

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// NewFromEnv returns a Client based on environment variables.
// Supported providers:
// - LLM_PROVIDER=gemini (SDK) | gemini-http (lightweight REST)
// - GOOGLE_API_KEY, optional LLM_MODEL
// If nothing is configured, returns a MockClient so the pipeline's
// deterministic fallbacks carry the request.
func NewFromEnv() Client {
	prov := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	model := getModelWithDefault("LLM_MODEL", "gemini-1.5-flash")

	switch prov {
	case "gemini":
		if key != "" {
			if c, err := NewGeminiClient(context.Background(), key, model); err == nil {
				return c
			} else {
				slog.Warn("gemini sdk client init failed, falling back", "error", err)
			}
		}
	case "gemini-http":
		if key != "" {
			return &GeminiHTTPClient{APIKey: key, Model: model}
		}
	}

	// Auto-detect by API key presence if provider not specified.
	if key != "" {
		if c, err := NewGeminiClient(context.Background(), key, model); err == nil {
			return c
		}
		return &GeminiHTTPClient{APIKey: key, Model: model}
	}

	return &MockClient{}
}

func getModelWithDefault(envKey, def string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	return def
}
