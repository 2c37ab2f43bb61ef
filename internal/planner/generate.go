package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/settlement-planner/internal/extract"
	"github.com/example/settlement-planner/internal/geo"
	"github.com/example/settlement-planner/internal/models"
	geoprov "github.com/example/settlement-planner/internal/providers/geo"
)

// defaultUserOffset places a user-stated activity with no date on day six,
// after the arrival-week essentials have cleared.
const defaultUserOffset = 6

// UserTasks materializes extracted activities into core-class tasks. A
// preferred date that fails to parse demotes the task to the free-floating
// path instead of rejecting it.
func (p *Pipeline) UserTasks(activities []extract.Activity, info models.CustomerInfo) []*models.Task {
	arrival, arrivalOK := parseDate(info.ArrivalDate)

	var tasks []*models.Task
	for _, a := range activities {
		t := &models.Task{
			ID:              uuid.NewString(),
			Name:            a.Name,
			Description:     fmt.Sprintf("Complete %s", a.Name),
			Category:        a.Category,
			Class:           models.ClassCore,
			Priority:        models.PriorityP1,
			DayOffset:       defaultUserOffset,
			Dependencies:    []string{},
			DocumentsNeeded: []string{},
			Status:          models.StatusPending,
			UserMentioned:   true,
		}
		if a.PreferredDate != "" {
			if d, ok := parseDate(a.PreferredDate); ok {
				t.PreferredDate = a.PreferredDate
				if arrivalOK {
					t.DayOffset = int(d.Sub(arrival).Hours()/24) + 1
				}
			} else {
				p.Log.Warn("unparseable preferred date, task demoted to free-floating",
					"task", a.Name, "date", a.PreferredDate)
			}
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// expansionCategories maps an anchor task's category to the service
// categories worth suggesting around it.
var expansionCategories = map[string][]string{
	"housing":        {"supermarket", "convenience_store", "pharmacy", "restaurant"},
	"accommodation":  {"supermarket", "convenience_store", "pharmacy", "restaurant"},
	"finance":        {"atm", "cafe", "restaurant"},
	"work":           {"restaurant", "cafe", "gym"},
	"transportation": {"convenience_store", "cafe"},
	"healthcare":     {"clinic", "pharmacy"},
	"shopping":       {"supermarket", "market", "bakery"},
}

// skipAnchorTypes mark places nobody lingers around; no extensions are
// generated there. Matched as substrings so "transit_station" and
// "mtr_station" both qualify.
var skipAnchorTypes = []string{"airport", "transit", "station"}

func skipAnchor(locationType string) bool {
	for _, s := range skipAnchorTypes {
		if strings.Contains(locationType, s) {
			return true
		}
	}
	return false
}

// ExtendedTasks generates nearby-amenity suggestions around every anchor
// (a task with a resolved location). A failed search empties the stream for
// that anchor only. The arrival day is kept light: two or more core tasks on
// day 1 means no extensions there at all, otherwise at most one.
func (p *Pipeline) ExtendedTasks(ctx context.Context, anchors []*models.Task, info models.CustomerInfo) []*models.Task {
	// Per-day quota from anchor counts.
	anchorsPerDay := map[int]int{}
	for _, a := range anchors {
		anchorsPerDay[expectedDay(a)]++
	}
	quota := map[int]int{}
	for day, n := range anchorsPerDay {
		if day == 1 {
			if n >= 2 {
				quota[day] = 0
			} else {
				quota[day] = 1
			}
		} else {
			quota[day] = n * p.Config.MaxExtendedPerAnchor
		}
	}

	var out []*models.Task
	for _, anchor := range anchors {
		if anchor.Location == nil {
			continue
		}
		if skipAnchor(anchor.Location.Type) {
			continue
		}
		day := expectedDay(anchor)
		if quota[day] <= 0 {
			continue
		}

		categories := expansionCategories[anchor.Category]
		if categories == nil {
			categories = []string{"supermarket", "pharmacy", "convenience_store", "cafe"}
		}

		services, err := p.Searcher.Search(ctx,
			anchor.Location.Latitude, anchor.Location.Longitude,
			p.Config.SearchRadiusKm, categories)
		if err != nil {
			p.Log.Warn("nearby search failed, no extensions for anchor",
				"anchor", anchor.Name, "error", err)
			continue
		}

		scored := p.scoreServices(services, anchor, info)
		added := 0
		for _, sc := range scored {
			if quota[day] <= 0 || added >= p.Config.MaxExtendedPerAnchor {
				break
			}
			out = append(out, p.extendedTask(sc.service, sc.score, anchor, day))
			quota[day]--
			added++
		}
	}
	return out
}

type scoredService struct {
	service geoprov.Service
	score   float64
}

// scoreServices computes relevance = 0.4·distance + 0.3·time-compatibility
// + 0.3·need-match, drops candidates below the threshold, and sorts best
// first. Time compatibility is a constant 1.0 until opening hours land.
func (p *Pipeline) scoreServices(services []geoprov.Service, anchor *models.Task, info models.CustomerInfo) []scoredService {
	var scored []scoredService
	for _, s := range services {
		distKm := geo.DistanceKm(anchor.Location.Latitude, anchor.Location.Longitude, s.Latitude, s.Longitude)
		if distKm > p.Config.SearchRadiusKm {
			continue
		}
		distScore := 1 - distKm/p.Config.SearchRadiusKm
		if distScore < 0 {
			distScore = 0
		}
		score := distScore*0.4 + 1.0*0.3 + needMatch(s.Category, info)*0.3
		if score < p.Config.RelevanceThreshold {
			continue
		}
		scored = append(scored, scoredService{service: s, score: score})
	}
	// Insertion sort keeps it stable for equal scores.
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].score > scored[j-1].score; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
	return scored
}

// needMatch scores profile fit on [0,1].
func needMatch(category string, info models.CustomerInfo) float64 {
	score := 0.5

	if info.HasChildren {
		switch category {
		case "pharmacy", "clinic", "supermarket":
			score += 0.3
		}
	}
	if wantsCar(info) {
		switch category {
		case "car_rental", "parking":
			score += 0.4
		}
	}
	if info.HousingBudget > 0 && info.HousingBudget < 25000 {
		switch category {
		case "market", "convenience_store":
			score += 0.2
		}
	} else {
		switch category {
		case "mall", "gym", "cafe":
			score += 0.2
		}
	}
	switch category {
	case "supermarket", "pharmacy", "atm", "convenience_store":
		score += 0.2
	}

	if score > 1 {
		score = 1
	}
	return score
}

func (p *Pipeline) extendedTask(s geoprov.Service, score float64, anchor *models.Task, day int) *models.Task {
	reason := recommendationReason(s, anchor, score)
	return &models.Task{
		ID:           uuid.NewString(),
		Name:         "Visit " + s.Name,
		Description:  strings.TrimSpace(s.Description + ". " + reason),
		Category:     s.Category,
		Class:        models.ClassExtended,
		Priority:     models.PriorityP4,
		DayOffset:    day,
		Dependencies: []string{},
		Location: &models.Location{
			ID:        s.ID,
			Name:      s.Name,
			Address:   s.Address,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Rating:    s.Rating,
			Type:      s.Category,
		},
		EstimatedDuration: estimateDuration(s.Category),
		DocumentsNeeded:   []string{},
		Status:            models.StatusPending,
		RelevanceScore:    round2(score),
		Reason:            reason,
		AnchorTaskID:      anchor.ID,
	}
}

// recommendationReason phrases why a service made the list.
func recommendationReason(s geoprov.Service, anchor *models.Task, score float64) string {
	distKm := geo.DistanceKm(anchor.Location.Latitude, anchor.Location.Longitude, s.Latitude, s.Longitude)

	var distance string
	switch {
	case distKm < 0.5:
		distance = "just around the corner"
	case distKm < 1.0:
		distance = "within walking distance"
	default:
		distance = fmt.Sprintf("about %.1fkm away", distKm)
	}

	label := titleCase(strings.ReplaceAll(s.Category, "_", " "))
	parts := []string{
		fmt.Sprintf("%s %s from %s", label, distance, anchor.Location.Name),
		"Convenient to visit while you're in the area",
	}
	if score > 0.8 {
		parts = append(parts, "Highly recommended for your needs")
	} else if score > 0.6 {
		parts = append(parts, "Good option to consider")
	}
	return strings.Join(parts, ". ") + "."
}

var durationByCategory = map[string]string{
	"supermarket":       "30-45 minutes",
	"pharmacy":          "15-20 minutes",
	"convenience_store": "10-15 minutes",
	"restaurant":        "1-1.5 hours",
	"cafe":              "30-45 minutes",
	"gym":               "1-2 hours",
	"clinic":            "30-60 minutes",
	"mall":              "1-2 hours",
	"market":            "45-60 minutes",
	"bank":              "30-45 minutes",
	"atm":               "5-10 minutes",
	"bakery":            "15-20 minutes",
}

func estimateDuration(category string) string {
	if d, ok := durationByCategory[category]; ok {
		return d
	}
	return "30 minutes"
}

// expectedDay is the day an unscheduled anchor is headed for: its resolved
// day when present, otherwise its declared target day.
func expectedDay(t *models.Task) int {
	if t.Day > 0 {
		return t.Day
	}
	if t.DayOffset >= 1 {
		return t.DayOffset
	}
	return 1
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
