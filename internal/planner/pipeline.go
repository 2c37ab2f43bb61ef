// Package planner implements the settlement planning pipeline: candidate
// generation, merge, day scheduling, load balancing, dependency validation,
// geographic clustering, and the plan summary.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/settlement-planner/internal/config"
	"github.com/example/settlement-planner/internal/extract"
	"github.com/example/settlement-planner/internal/geo"
	"github.com/example/settlement-planner/internal/models"
	geoprov "github.com/example/settlement-planner/internal/providers/geo"
	"github.com/example/settlement-planner/internal/providers/llm"
)

// Fallback map center when no task resolved a location.
const (
	defaultCenterLat = 22.3193
	defaultCenterLon = 114.1694
	defaultZoom      = 12
)

// Pipeline wires the planning stages to their external collaborators. All
// fields are set at construction and read-only afterwards, so one Pipeline
// serves concurrent requests.
type Pipeline struct {
	Config    config.Config
	LLM       llm.Client
	Resolver  geoprov.Resolver
	Searcher  geoprov.NearbySearcher
	Optimizer geoprov.RouteOptimizer
	Extractor *extract.Extractor
	Log       *slog.Logger

	template *Template
}

// New builds a Pipeline. The essential-task template is parsed once here;
// a broken template is a programming error and fails construction.
func New(cfg config.Config, llmClient llm.Client, resolver geoprov.Resolver, searcher geoprov.NearbySearcher, log *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	tmpl, err := LoadTemplate()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Config:    cfg,
		LLM:       llmClient,
		Resolver:  resolver,
		Searcher:  searcher,
		Extractor: extract.New(llmClient, log),
		Log:       log,
		template:  tmpl,
	}, nil
}

// BuildPlan runs the full pipeline for one customer. Every stage degrades
// rather than fails: an empty candidate stream, a geocode miss, or a
// suggestion-search error narrows the plan instead of aborting it. Only a
// wholly broken run falls back to the bare essentials plan.
func (p *Pipeline) BuildPlan(ctx context.Context, messages []extract.Message, info models.CustomerInfo) *models.Plan {
	plan, err := p.buildFull(ctx, messages, info)
	if err != nil {
		p.Log.Error("planning failed, falling back to essentials-only plan", "error", err)
		return p.essentialsOnly(ctx, info)
	}
	return plan
}

func (p *Pipeline) buildFull(ctx context.Context, messages []extract.Message, info models.CustomerInfo) (*models.Plan, error) {
	start := time.Now()

	activities := p.Extractor.Extract(ctx, messages, info)
	user := p.UserTasks(activities, info)
	essentials := p.template.Essentials(info)
	if len(essentials) == 0 {
		return nil, fmt.Errorf("no essential tasks materialized")
	}

	merged := Merge(essentials, user)
	p.resolveLocations(ctx, merged, info)

	anchors := locatedTasks(merged)
	extended := p.ExtendedTasks(ctx, anchors, info)

	all := DedupFootprint(append(merged, extended...), p.Config.DedupWindowDays)

	Schedule(all, info)
	snapshot := snapshotDays(all)

	balanced := Balance(all, info, p.Config.MaxTasksPerDay)

	final := balanced
	if violations, unresolved := Validate(balanced); len(violations) > 0 {
		for _, v := range violations {
			p.Log.Error("dependency violated after balancing, reverting to pre-balancing schedule", "violation", v.String())
		}
		final = restoreDays(snapshot)
	} else if len(unresolved) > 0 {
		p.Log.Warn("unresolved dependencies ignored", "dependencies", unresolved)
	}

	if p.Config.ClusterByProximity {
		final = Cluster(ctx, final, p.Optimizer)
	}

	summary := p.Summarize(ctx, final, info)
	plan := p.assemble(final, info, summary)

	stats := models.Summarize(final)
	p.Log.Info("plan built",
		"plan_id", plan.ID,
		"tasks", stats.TotalTasks,
		"essential", stats.EssentialTasks,
		"core", stats.CoreTasks,
		"extended", stats.ExtendedTasks,
		"days_used", stats.DaysUsed,
		"located", stats.WithLocation,
		"elapsed", time.Since(start))
	return plan, nil
}

// essentialsOnly is the last rung of the failure ladder: the phase template
// alone, scheduled and summarized deterministically.
func (p *Pipeline) essentialsOnly(ctx context.Context, info models.CustomerInfo) *models.Plan {
	tasks := p.template.Essentials(info)
	p.resolveLocations(ctx, tasks, info)
	Schedule(tasks, info)
	return p.assemble(tasks, info, templateSummary(tasks, info))
}

func (p *Pipeline) assemble(tasks []*models.Task, info models.CustomerInfo, summary string) *models.Plan {
	var coords [][2]float64
	for _, t := range tasks {
		if t.Location != nil {
			coords = append(coords, [2]float64{t.Location.Latitude, t.Location.Longitude})
		}
	}
	lat, lon, ok := geo.Centroid(coords)
	if !ok {
		lat, lon = defaultCenterLat, defaultCenterLon
	}
	return &models.Plan{
		ID:               uuid.NewString(),
		CustomerName:     info.Name,
		CenterLatitude:   lat,
		CenterLongitude:  lon,
		Zoom:             defaultZoom,
		Tasks:            tasks,
		ServiceLocations: models.ServiceLocationsOf(tasks),
		Summary:          summary,
		CreatedAt:        time.Now().UTC(),
	}
}

// resolveLocations geocodes tasks that declare a location hint but carry no
// coordinates yet. Misses and provider errors leave the task unplaced.
func (p *Pipeline) resolveLocations(ctx context.Context, tasks []*models.Task, info models.CustomerInfo) {
	city := info.DestinationCity
	if city == "" {
		city = "Hong Kong"
	}
	for _, t := range tasks {
		if t.Location != nil || t.LocationType == "" {
			continue
		}
		query := strings.ReplaceAll(t.LocationType, "_", " ")
		place, err := p.Resolver.Resolve(ctx, query, city)
		if err != nil {
			p.Log.Warn("geocode miss, task stays unplaced", "task", t.Name, "query", query, "error", err)
			continue
		}
		t.Location = &models.Location{
			ID:        uuid.NewString(),
			Name:      place.DisplayName,
			Address:   place.DisplayName,
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
			Type:      t.LocationType,
		}
	}
}

func locatedTasks(tasks []*models.Task) []*models.Task {
	var out []*models.Task
	for _, t := range tasks {
		if t.Location != nil {
			out = append(out, t)
		}
	}
	return out
}

type daySnapshot struct {
	tasks []*models.Task
	days  []int
	dates []string
	spans []string
}

// snapshotDays captures the schedule before balancing mutates it, so the
// validator can hand back the dependency-honoring assignment.
func snapshotDays(tasks []*models.Task) daySnapshot {
	s := daySnapshot{
		tasks: append([]*models.Task(nil), tasks...),
		days:  make([]int, len(tasks)),
		dates: make([]string, len(tasks)),
		spans: make([]string, len(tasks)),
	}
	for i, t := range tasks {
		s.days[i] = t.Day
		s.dates[i] = t.Date
		s.spans[i] = t.DayRange
	}
	return s
}

func restoreDays(s daySnapshot) []*models.Task {
	for i, t := range s.tasks {
		t.Day = s.days[i]
		t.Date = s.dates[i]
		t.DayRange = s.spans[i]
	}
	return s.tasks
}
