package planner

import (
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/example/settlement-planner/internal/models"
)

//go:embed template.yaml
var templateYAML []byte

// Template is the phase-organized essential-task knowledge base.
type Template struct {
	Phases []Phase `yaml:"phases"`
}

// Phase groups template tasks under a settlement stage.
type Phase struct {
	Key   string         `yaml:"key"`
	Name  string         `yaml:"name"`
	Days  string         `yaml:"days"`
	Tasks []TemplateTask `yaml:"tasks"`
}

// TemplateTask is one essential-task definition.
type TemplateTask struct {
	Name             string   `yaml:"name"`
	Priority         string   `yaml:"priority"`
	DayOffset        int      `yaml:"day_offset"`
	Category         string   `yaml:"category"`
	Dependencies     []string `yaml:"dependencies"`
	Description      string   `yaml:"description"`
	DurationHours    float64  `yaml:"duration_hours"`
	LocationType     string   `yaml:"location_type"`
	DocumentsNeeded  []string `yaml:"documents_needed"`
	UserCustomizable bool     `yaml:"user_customizable"`

	// Conditional names a customer predicate; the task is skipped when the
	// predicate does not hold. Currently: "needs_car".
	Conditional string `yaml:"conditional"`
}

// LoadTemplate parses the embedded phase template.
func LoadTemplate() (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(templateYAML, &t); err != nil {
		return nil, fmt.Errorf("parse essential task template: %w", err)
	}
	if len(t.Phases) == 0 {
		return nil, fmt.Errorf("essential task template has no phases")
	}
	return &t, nil
}

// Essentials materializes the template into essential-class tasks for one
// customer, applying conditional predicates.
func (t *Template) Essentials(info models.CustomerInfo) []*models.Task {
	var tasks []*models.Task
	for _, phase := range t.Phases {
		for _, tt := range phase.Tasks {
			if tt.Conditional == "needs_car" && !wantsCar(info) {
				continue
			}
			docs := tt.DocumentsNeeded
			if docs == nil {
				docs = []string{}
			}
			deps := tt.Dependencies
			if deps == nil {
				deps = []string{}
			}
			tasks = append(tasks, &models.Task{
				ID:              uuid.NewString(),
				Name:            tt.Name,
				Description:     tt.Description,
				Category:        tt.Category,
				Class:           models.ClassEssential,
				Priority:        models.Priority(tt.Priority),
				DayOffset:       tt.DayOffset,
				Dependencies:    deps,
				DurationHours:   tt.DurationHours,
				DocumentsNeeded: docs,
				LocationType:    tt.LocationType,
				Status:          models.StatusPending,
				Phase:           phase.Name,
			})
		}
	}
	return tasks
}

func wantsCar(info models.CustomerInfo) bool {
	return info.NeedsCar || info.TransportPreference == "car"
}
