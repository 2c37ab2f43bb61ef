package planner

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/settlement-planner/internal/models"
)

var (
	isoDateToken = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	dayToken     = regexp.MustCompile(`\bDay\s+(\d+)\b`)
)

// Summarize produces the customer-facing plan narrative. The LLM is handed
// the exact day/date lines of the plan and told to reuse them verbatim; its
// output is then checked token by token, and any date or day number the plan
// does not contain throws the whole draft away in favor of the deterministic
// template.
func (p *Pipeline) Summarize(ctx context.Context, tasks []*models.Task, info models.CustomerInfo) string {
	text, err := p.LLM.GenerateText(ctx, buildSummaryPrompt(tasks, info))
	if err != nil {
		p.Log.Warn("summary generation failed, using template", "error", err)
		return templateSummary(tasks, info)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return templateSummary(tasks, info)
	}
	if bad := strayDateTokens(text, tasks); len(bad) > 0 {
		p.Log.Warn("summary contained dates not in the plan, using template", "tokens", bad)
		return templateSummary(tasks, info)
	}
	return text
}

func buildSummaryPrompt(tasks []*models.Task, info models.CustomerInfo) string {
	var b strings.Builder
	b.WriteString("Write a short, friendly settlement plan summary for a customer relocating")
	if info.DestinationCity != "" {
		fmt.Fprintf(&b, " to %s", info.DestinationCity)
	}
	b.WriteString(".\n\n")
	b.WriteString("Scheduled tasks, one per line as 'Day N (date): name':\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "%s: %s\n", t.DayRange, t.Name)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Mention days and dates ONLY exactly as they appear above. Never invent or shift a date.\n")
	b.WriteString("- Highlight the key milestones (housing, banking, identity) with their days.\n")
	b.WriteString("- Plain text, at most 6 sentences, no markdown.\n")
	return b.String()
}

// strayDateTokens returns every date or day-number token in text that no
// scheduled task carries.
func strayDateTokens(text string, tasks []*models.Task) []string {
	dates := map[string]bool{}
	days := map[int]bool{}
	for _, t := range tasks {
		if t.Date != "" {
			dates[t.Date] = true
		}
		days[t.Day] = true
	}

	var bad []string
	for _, m := range isoDateToken.FindAllStringSubmatch(text, -1) {
		if !dates[m[1]] {
			bad = append(bad, m[1])
		}
	}
	for _, m := range dayToken.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || !days[n] {
			bad = append(bad, m[0])
		}
	}
	return bad
}

// milestoneLabels maps a canonical task name to its summary phrasing.
var milestoneLabels = []struct {
	canonical string
	label     string
}{
	{"property viewing", "view properties"},
	{"bank account opening", "open your bank account"},
	{"apply for resident id / visa extension", "apply for your resident ID"},
}

// templateSummary is the deterministic fallback. Every day reference is
// copied verbatim from the schedule; milestones the plan lacks are omitted.
func templateSummary(tasks []*models.Task, info models.CustomerInfo) string {
	byName := make(map[string]*models.Task, len(tasks))
	for _, t := range tasks {
		byName[canonicalName(t.Name)] = t
	}

	var b strings.Builder
	name := info.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s! Your settlement plan covers %d tasks over %d days",
		name, len(tasks), models.Summarize(tasks).DaysUsed)
	if info.DestinationCity != "" {
		fmt.Fprintf(&b, " in %s", info.DestinationCity)
	}
	b.WriteString(".")

	for _, m := range milestoneLabels {
		t, ok := byName[m.canonical]
		if !ok || t.Day == 0 {
			continue
		}
		fmt.Fprintf(&b, " You'll %s on %s.", m.label, t.DayRange)
	}
	b.WriteString(" The first days focus on getting oriented, with errands grouped by neighborhood to keep travel short.")
	return b.String()
}
