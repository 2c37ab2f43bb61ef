package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// GeminiHTTPClient talks to the generative-language REST endpoint directly.
// Useful when the SDK cannot be initialized or for test overrides via
// GEMINI_API_URL.
type GeminiHTTPClient struct {
	APIKey string
	Model  string
}

func (c *GeminiHTTPClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	var text string
	err := WithRetry(ctx, DefaultRetryConfig(), func(ctx context.Context) error {
		var err error
		text, err = c.generateText(ctx, prompt)
		return err
	})
	return text, err
}

func (c *GeminiHTTPClient) generateText(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		url.PathEscape(c.Model), url.QueryEscape(c.APIKey))
	// allow override via GEMINI_API_URL base
	if base := os.Getenv("GEMINI_API_URL"); base != "" {
		endpoint = fmt.Sprintf("%s/models/%s:generateContent?key=%s",
			strings.TrimRight(base, "/"), url.PathEscape(c.Model), url.QueryEscape(c.APIKey))
	}

	body := map[string]any{
		"contents": []map[string]any{{
			"role":  "user",
			"parts": []map[string]string{{"text": prompt}},
		}},
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("content-type", "application/json")

	httpClient := &http.Client{Timeout: clientTimeout()}
	res, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var eresp map[string]any
		_ = json.NewDecoder(res.Body).Decode(&eresp)
		return "", statusErr("gemini", res.StatusCode, eresp)
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func clientTimeout() time.Duration {
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 30 * time.Second
}
