package llm

import (
	"context"
)

// MockClient is used when no real provider is configured. It returns empty
// text so every caller exercises its deterministic fallback path.
type MockClient struct{}

func (m *MockClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

// ScriptedClient returns canned responses in order; once exhausted it
// repeats the last one. Test helper.
type ScriptedClient struct {
	Responses []string
	Err       error
	calls     int
}

func (s *ScriptedClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	i := s.calls
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	s.calls++
	return s.Responses[i], nil
}
