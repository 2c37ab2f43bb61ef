package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/settlement-planner/internal/config"
	"github.com/example/settlement-planner/internal/extract"
	"github.com/example/settlement-planner/internal/models"
	geoprov "github.com/example/settlement-planner/internal/providers/geo"
	"github.com/example/settlement-planner/internal/providers/llm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResolver() *geoprov.MockResolver {
	return &geoprov.MockResolver{Places: map[string]geoprov.Place{
		"bank":              {Latitude: 22.2810, Longitude: 114.1590, DisplayName: "HSBC Main Building, Central"},
		"supermarket":       {Latitude: 22.2818, Longitude: 114.1575, DisplayName: "Wellcome, Central"},
		"mobile phone shop": {Latitude: 22.2815, Longitude: 114.1570, DisplayName: "csl Shop, Central"},
		"transit station":   {Latitude: 22.2813, Longitude: 114.1580, DisplayName: "Central MTR Station, Central"},
		"government office": {Latitude: 22.2801, Longitude: 114.1652, DisplayName: "Immigration Tower, Wan Chai"},
	}}
}

func testSearcher() *geoprov.MockSearcher {
	return &geoprov.MockSearcher{Services: []geoprov.Service{
		{ID: "s1", Name: "ParknShop", Category: "supermarket", Address: "Queen's Road, Central", Latitude: 22.2820, Longitude: 114.1600, Rating: 4.2},
		{ID: "s2", Name: "Watsons", Category: "pharmacy", Address: "Des Voeux Road, Central", Latitude: 22.2825, Longitude: 114.1595, Rating: 4.0},
	}}
}

func newTestPipeline(t *testing.T, client llm.Client, resolver geoprov.Resolver, searcher geoprov.NearbySearcher) *Pipeline {
	t.Helper()
	if client == nil {
		client = &llm.MockClient{}
	}
	if resolver == nil {
		resolver = testResolver()
	}
	if searcher == nil {
		searcher = testSearcher()
	}
	p, err := New(config.Default(), client, resolver, searcher, quietLogger())
	require.NoError(t, err)
	return p
}

func TestBuildPlanEndToEnd(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)
	messages := []extract.Message{
		{Role: "assistant", Content: "When would you like to view apartments?"},
		{Role: "user", Content: "I'd like a property viewing on 2025-05-09, and I need to open a bank account."},
	}

	plan := p.BuildPlan(context.Background(), messages, testInfo())
	require.NotNil(t, plan)
	require.NotEmpty(t, plan.ID)
	require.NotEmpty(t, plan.Tasks)

	viewing := findByName(t, plan.Tasks, "Property Viewing")
	assert.Equal(t, 6, viewing.Day)
	assert.Equal(t, "2025-05-09", viewing.Date)
	assert.Equal(t, models.ClassCore, viewing.Class)
	assert.Equal(t, models.ClassCore, findByName(t, plan.Tasks, "Bank Account Opening").Class)

	horizon := testInfo().Horizon()
	for _, task := range plan.Tasks {
		assert.GreaterOrEqual(t, task.Day, 1, task.Name)
		assert.LessOrEqual(t, task.Day, horizon, task.Name)
		assert.NotEmpty(t, task.DayRange, task.Name)
		assert.Equal(t, models.StatusPending, task.Status, task.Name)
	}

	violations, _ := Validate(plan.Tasks)
	assert.Empty(t, violations)

	counts := countByDay(plan.Tasks)
	for day, byClass := range counts {
		fixed := byClass[models.ClassEssential] + byClass[models.ClassCore]
		if fixed >= p.Config.MaxTasksPerDay {
			assert.Zero(t, byClass[models.ClassExtended], "day %d", day)
		}
	}

	assert.NotEmpty(t, plan.Summary)
	assert.Empty(t, strayDateTokens(plan.Summary, plan.Tasks))
	assert.NotEmpty(t, plan.ServiceLocations)
	assert.NotZero(t, plan.CenterLatitude)
	assert.Equal(t, defaultZoom, plan.Zoom)
}

func TestBuildPlanSurvivesProviderFailures(t *testing.T) {
	p := newTestPipeline(t,
		&llm.ScriptedClient{Err: errors.New("model down")},
		&geoprov.MockResolver{Err: errors.New("geocoder down")},
		&geoprov.MockSearcher{Err: errors.New("search down")},
	)

	plan := p.BuildPlan(context.Background(), nil, testInfo())
	require.NotNil(t, plan)
	require.NotEmpty(t, plan.Tasks)

	// No provider means no locations and no extended suggestions, but the
	// essential schedule still comes out whole.
	for _, task := range plan.Tasks {
		assert.NotEqual(t, models.ClassExtended, task.Class)
		assert.Nil(t, task.Location)
		assert.GreaterOrEqual(t, task.Day, 1)
	}
	assert.NotEmpty(t, plan.Summary)
	assert.Equal(t, defaultCenterLat, plan.CenterLatitude)
	assert.Equal(t, defaultCenterLon, plan.CenterLongitude)
}

func TestEssentialsOnlyFallbackPlan(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	plan := p.essentialsOnly(context.Background(), testInfo())
	require.NotEmpty(t, plan.Tasks)
	for _, task := range plan.Tasks {
		assert.Equal(t, models.ClassEssential, task.Class)
		assert.GreaterOrEqual(t, task.Day, 1)
	}
	assert.NotEmpty(t, plan.Summary)
	assert.Empty(t, strayDateTokens(plan.Summary, plan.Tasks))
}

func TestBuildPlanDeterministic(t *testing.T) {
	messages := []extract.Message{
		{Role: "user", Content: "I need a sim card and want to open a bank account."},
	}

	p1 := newTestPipeline(t, nil, nil, nil)
	p2 := newTestPipeline(t, nil, nil, nil)
	a := p1.BuildPlan(context.Background(), messages, testInfo())
	b := p2.BuildPlan(context.Background(), messages, testInfo())

	assert.Equal(t, assignments(a.Tasks), assignments(b.Tasks))
}

func assignments(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, fmt.Sprintf("%s@%d", t.Name, t.Day))
	}
	sort.Strings(out)
	return out
}
