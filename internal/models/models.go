package models

import (
	"time"
)

// ActivityClass ranks how a task entered the plan. Essential tasks come from
// the phase template, core tasks from the customer's own statements, extended
// tasks from nearby-amenity suggestions. Scheduling priority follows the same
// order: essential > core > extended.
type ActivityClass string

const (
	ClassEssential ActivityClass = "essential"
	ClassCore      ActivityClass = "core"
	ClassExtended  ActivityClass = "extended"
)

// Status is the task lifecycle, driven by user action through the API.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ValidStatuses lists every accepted lifecycle value.
var ValidStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// IsValidStatus reports whether s names a known lifecycle status.
func IsValidStatus(s string) bool {
	for _, st := range ValidStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// Priority is an ordinal label, P0 highest through P4 lowest. It breaks ties
// within an activity class; it never overrides class ordering.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
)

// Rank returns a sortable integer for the priority. Unknown labels sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 1
	case PriorityP2:
		return 2
	case PriorityP3:
		return 3
	case PriorityP4:
		return 4
	}
	return 9
}

// DisplayLevel maps the P-scale onto the coarse high/medium/low labels the
// wire contract uses.
func (p Priority) DisplayLevel() string {
	switch p {
	case PriorityP0, PriorityP1:
		return "high"
	case PriorityP2, PriorityP3:
		return "medium"
	}
	return "low"
}

// Location is a resolved place attached to a task or suggested service.
type Location struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Rating      float64 `json:"rating,omitempty"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Task is the central planning entity. Name is the merge/dedup join key and
// the key other tasks use in Dependencies; Day is assigned by the scheduler
// and is always in [1, horizon] once scheduling completes.
type Task struct {
	ID          string        `json:"id"`
	Name        string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Class       ActivityClass `json:"activity_class"`
	Priority    Priority      `json:"priority"`

	// DayOffset is the declared target day (1 = arrival day), used when no
	// fixed date exists. PreferredDate, when parseable, wins over DayOffset.
	DayOffset     int    `json:"day_offset,omitempty"`
	PreferredDate string `json:"preferred_date,omitempty"`

	// Day is the resolved 1-based day index from arrival; Date and DayRange
	// are derived from it after scheduling.
	Day      int    `json:"day,omitempty"`
	Date     string `json:"date,omitempty"`
	DayRange string `json:"day_range,omitempty"`

	Dependencies []string  `json:"dependencies"`
	Location     *Location `json:"location,omitempty"`

	DurationHours     float64  `json:"duration_hours,omitempty"`
	EstimatedDuration string   `json:"estimated_duration,omitempty"`
	DocumentsNeeded   []string `json:"documents_needed"`

	Status Status `json:"status"`

	// Extended-task fields.
	RelevanceScore float64 `json:"relevance_score,omitempty"`
	Reason         string  `json:"recommendation_reason,omitempty"`
	AnchorTaskID   string  `json:"core_activity_id,omitempty"`

	// LocationType is a search hint ("bank", "pharmacy") consumed by the
	// geocoding stage; tasks without one may legitimately stay unplaced.
	LocationType string `json:"location_type,omitempty"`

	UserMentioned bool   `json:"user_mentioned,omitempty"`
	Phase         string `json:"phase,omitempty"`
}

// Clone returns a deep copy of the task. Empty slices stay empty rather
// than nil so the wire encoding is unchanged.
func (t *Task) Clone() *Task {
	c := *t
	if t.Dependencies != nil {
		c.Dependencies = append([]string{}, t.Dependencies...)
	}
	if t.DocumentsNeeded != nil {
		c.DocumentsNeeded = append([]string{}, t.DocumentsNeeded...)
	}
	if t.Location != nil {
		loc := *t.Location
		c.Location = &loc
	}
	return &c
}

// CustomerInfo is the structured fact record accumulated by the outer
// conversation layer before planning starts.
type CustomerInfo struct {
	Name                       string            `json:"name,omitempty"`
	ArrivalDate                string            `json:"arrival_date,omitempty"`
	DestinationCity            string            `json:"destination_city,omitempty"`
	OfficeAddress              string            `json:"office_address,omitempty"`
	HousingBudget              int               `json:"housing_budget,omitempty"`
	PreferredAreas             []string          `json:"preferred_areas,omitempty"`
	Bedrooms                   int               `json:"bedrooms,omitempty"`
	FamilySize                 int               `json:"family_size,omitempty"`
	HasChildren                bool              `json:"has_children,omitempty"`
	NeedsCar                   bool              `json:"needs_car,omitempty"`
	WorksFromHome              bool              `json:"works_from_home,omitempty"`
	TransportPreference        string            `json:"transportation_preference,omitempty"`
	TemporaryAccommodationDays int               `json:"temporary_accommodation_days,omitempty"`
	PreferredDates             map[string]string `json:"preferred_dates,omitempty"`
}

// Horizon derives the plan horizon in days from the declared temporary
// accommodation length. Legally time-boxed tasks need at least two weeks.
func (c CustomerInfo) Horizon() int {
	days := c.TemporaryAccommodationDays
	if days <= 0 {
		days = 30
	}
	if days < 14 {
		days = 14
	}
	return days
}

// Plan is the finalized itinerary and the wire contract other components
// consume. Immutable once emitted except for task status transitions.
type Plan struct {
	ID               string     `json:"id"`
	CustomerName     string     `json:"customer_name"`
	CenterLatitude   float64    `json:"center_latitude"`
	CenterLongitude  float64    `json:"center_longitude"`
	Zoom             int        `json:"zoom"`
	Tasks            []*Task    `json:"tasks"`
	ServiceLocations []Location `json:"service_locations"`
	Summary          string     `json:"summary,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Clone returns a deep copy of the plan, tasks included.
func (p *Plan) Clone() *Plan {
	c := *p
	c.Tasks = make([]*Task, len(p.Tasks))
	for i, t := range p.Tasks {
		c.Tasks[i] = t.Clone()
	}
	if p.ServiceLocations != nil {
		c.ServiceLocations = append([]Location{}, p.ServiceLocations...)
	}
	return &c
}

// Stats are aggregate counts logged after planning completes.
type Stats struct {
	TotalTasks     int     `json:"total_tasks"`
	EssentialTasks int     `json:"essential_tasks"`
	CoreTasks      int     `json:"core_tasks"`
	ExtendedTasks  int     `json:"extended_tasks"`
	DaysUsed       int     `json:"total_days"`
	TotalHours     float64 `json:"total_duration_hours"`
	WithLocation   int     `json:"tasks_with_location"`
}

// Summarize computes plan statistics over a task set.
func Summarize(tasks []*Task) Stats {
	var s Stats
	days := map[int]struct{}{}
	for _, t := range tasks {
		s.TotalTasks++
		switch t.Class {
		case ClassEssential:
			s.EssentialTasks++
		case ClassCore:
			s.CoreTasks++
		case ClassExtended:
			s.ExtendedTasks++
		}
		days[t.Day] = struct{}{}
		s.TotalHours += t.DurationHours
		if t.Location != nil {
			s.WithLocation++
		}
	}
	s.DaysUsed = len(days)
	return s
}

// ServiceLocationsOf collects the unique resolved locations across a task
// set, preserving first-seen order.
func ServiceLocationsOf(tasks []*Task) []Location {
	seen := map[string]struct{}{}
	out := []Location{}
	for _, t := range tasks {
		if t.Location == nil {
			continue
		}
		if _, ok := seen[t.Location.ID]; ok {
			continue
		}
		seen[t.Location.ID] = struct{}{}
		out = append(out, *t.Location)
	}
	return out
}
