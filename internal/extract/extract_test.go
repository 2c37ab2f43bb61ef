package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/settlement-planner/internal/models"
	"github.com/example/settlement-planner/internal/providers/llm"
)

func testExtractor(client llm.Client) *Extractor {
	return New(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNormalizeJSONText(t *testing.T) {
	fenced := "```json\n[{\"name\": \"Property Viewing\"}]\n```"
	assert.Equal(t, `[{"name": "Property Viewing"}]`, normalizeJSONText(fenced))

	prose := `Here are the activities: [{"name": "Bank Account Opening"}] hope that helps`
	assert.Equal(t, `[{"name": "Bank Account Opening"}]`, normalizeJSONText(prose))

	assert.Equal(t, "[]", normalizeJSONText("[]"))
	assert.Equal(t, "no array here", normalizeJSONText("no array here"))
}

func TestExtractFromLLMResponse(t *testing.T) {
	client := &llm.ScriptedClient{Responses: []string{
		"```json\n[{\"name\": \"Property Viewing\", \"category\": \"housing\", \"preferred_date\": \"2025-05-09\"}]\n```",
	}}
	e := testExtractor(client)

	got := e.Extract(context.Background(), nil, models.CustomerInfo{ArrivalDate: "2025-05-04"})
	require.Len(t, got, 1)
	assert.Equal(t, "Property Viewing", got[0].Name)
	assert.Equal(t, "2025-05-09", got[0].PreferredDate)
}

func TestExtractFallsBackOnError(t *testing.T) {
	e := testExtractor(&llm.ScriptedClient{Err: errors.New("model down")})
	messages := []Message{
		{Role: "user", Content: "I want to open a bank account on 2025-05-10."},
	}

	got := e.Extract(context.Background(), messages, models.CustomerInfo{})
	require.Len(t, got, 1)
	assert.Equal(t, "Bank Account Opening", got[0].Name)
	assert.Equal(t, "finance", got[0].Category)
	assert.Equal(t, "2025-05-10", got[0].PreferredDate)
}

func TestExtractFallsBackOnUnparseableJSON(t *testing.T) {
	e := testExtractor(&llm.ScriptedClient{Responses: []string{"sure, here's a plan!"}})
	messages := []Message{
		{Role: "user", Content: "Need a sim card and an apartment viewing please"},
	}

	got := e.Extract(context.Background(), messages, models.CustomerInfo{})
	names := map[string]bool{}
	for _, a := range got {
		names[a.Name] = true
	}
	assert.True(t, names["Get Local SIM Card"])
	assert.True(t, names["Property Viewing"])
}

func TestPatternExtractIgnoresAssistantTurns(t *testing.T) {
	got := patternExtract([]Message{
		{Role: "assistant", Content: "Shall I schedule a property viewing?"},
		{Role: "user", Content: "not yet"},
	})
	assert.Empty(t, got)
}

func TestPatternExtractDeduplicates(t *testing.T) {
	got := patternExtract([]Message{
		{Role: "user", Content: "I need a property viewing"},
		{Role: "user", Content: "about that house viewing, any time works"},
	})
	assert.Len(t, got, 1)
}

func TestExtractDropsNamelessActivities(t *testing.T) {
	e := testExtractor(&llm.ScriptedClient{Responses: []string{
		`[{"name": ""}, {"name": "Property Viewing"}]`,
	}})
	got := e.Extract(context.Background(), nil, models.CustomerInfo{})
	require.Len(t, got, 1)
	assert.Equal(t, "Property Viewing", got[0].Name)
}
