package llm

import (
	"context"
)

// Client is the minimal text-generation interface the extractor and the plan
// summarizer consume. Any provider implementation should satisfy this.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
