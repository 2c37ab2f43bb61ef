// Package extract turns free-form conversation into user-stated candidate
// activities. The LLM path is best-effort; a regex fallback keeps the
// pipeline deterministic when no provider is configured or the call fails.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/example/settlement-planner/internal/models"
	"github.com/example/settlement-planner/internal/providers/llm"
)

// Activity is one user-stated candidate before task materialization.
type Activity struct {
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	PreferredDate string `json:"preferred_date,omitempty"`
}

// Message is one conversation turn as handed down by the outer dialogue layer.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Extractor pulls explicitly mentioned activities out of a conversation.
type Extractor struct {
	Client llm.Client
	Log    *slog.Logger
}

func New(client llm.Client, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{Client: client, Log: log}
}

// Extract returns the activities the user explicitly mentioned, most recent
// ten turns only. An empty slice is a valid answer; the caller's plan must
// survive it.
func (e *Extractor) Extract(ctx context.Context, messages []Message, info models.CustomerInfo) []Activity {
	raw, err := e.Client.GenerateText(ctx, buildExtractPrompt(messages, info))
	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			e.Log.Warn("activity extraction call failed, using pattern fallback", "error", err)
		}
		return patternExtract(messages)
	}

	var activities []Activity
	if err := json.Unmarshal([]byte(normalizeJSONText(raw)), &activities); err != nil {
		e.Log.Warn("activity extraction returned unparseable JSON, using pattern fallback", "error", err)
		return patternExtract(messages)
	}

	out := activities[:0]
	for _, a := range activities {
		if strings.TrimSpace(a.Name) == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func buildExtractPrompt(messages []Message, info models.CustomerInfo) string {
	recent := messages
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	var convo strings.Builder
	for _, m := range recent {
		fmt.Fprintf(&convo, "%s: %s\n", m.Role, m.Content)
	}
	preferred, _ := json.Marshal(info.PreferredDates)

	return fmt.Sprintf(`Analyze this conversation and extract any activities or tasks the user explicitly mentioned.

Conversation:
%s
Customer Info:
- Arrival Date: %s
- Preferred Dates: %s

Extract ONLY activities that the user explicitly mentioned. Return as JSON array:
[
  {
    "name": "Activity name",
    "preferred_date": "YYYY-MM-DD" or null,
    "category": "housing/finance/legal/shopping/culture/social/healthcare/transportation"
  }
]

If no specific activities mentioned, return empty array: []`, convo.String(), orDefault(info.ArrivalDate, "Not specified"), preferred)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// activityPatterns recognizes the handful of explicit activity mentions
// worth catching without a model. Each pattern may carry a trailing date.
var activityPatterns = []struct {
	re       *regexp.Regexp
	name     string
	category string
}{
	{regexp.MustCompile(`(?i)\b(property|home|house|apartment)\s+(viewing|visit|tour)`), "Property Viewing", "housing"},
	{regexp.MustCompile(`(?i)\bopen(ing)?\s+(a\s+)?bank\s+account|\bbank\s+account\s+opening`), "Bank Account Opening", "finance"},
	{regexp.MustCompile(`(?i)\b(resident\s+)?(id|identity)\s+card`), "Apply for Resident ID / Visa Extension", "legal"},
	{regexp.MustCompile(`(?i)\bsim\s+card|\bmobile\s+(plan|contract)`), "Get Local SIM Card", "communication"},
	{regexp.MustCompile(`(?i)\bdriver'?s?\s+licen[cs]e`), "Apply for Driver's License (if needed)", "legal"},
}

var datePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// patternExtract is the deterministic fallback: substring/regex matching
// against a short list of known activity phrasings.
func patternExtract(messages []Message) []Activity {
	seen := map[string]bool{}
	var out []Activity
	for _, m := range messages {
		if !strings.EqualFold(m.Role, "user") {
			continue
		}
		for _, p := range activityPatterns {
			if !p.re.MatchString(m.Content) || seen[p.name] {
				continue
			}
			seen[p.name] = true
			a := Activity{Name: p.name, Category: p.category}
			if d := datePattern.FindString(m.Content); d != "" {
				if _, err := time.Parse("2006-01-02", d); err == nil {
					a.PreferredDate = d
				}
			}
			out = append(out, a)
		}
	}
	if out == nil {
		out = []Activity{}
	}
	return out
}
