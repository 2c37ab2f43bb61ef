package planner

import (
	"fmt"

	"github.com/example/settlement-planner/internal/models"
)

// Violation records a dependency the schedule fails to honor.
type Violation struct {
	Task       string
	Dependency string
	TaskDay    int
	DepDay     int
}

func (v Violation) String() string {
	return fmt.Sprintf("%q (day %d) depends on %q (day %d)", v.Task, v.TaskDay, v.Dependency, v.DepDay)
}

// Validate checks that every resolvable dependency lands strictly before the
// task that needs it. A dependency naming a task not in the plan is reported
// separately for diagnostics but is not a violation.
func Validate(tasks []*models.Task) (violations []Violation, unresolved []string) {
	byName := make(map[string]*models.Task, len(tasks))
	for _, t := range tasks {
		byName[canonicalName(t.Name)] = t
	}

	for _, t := range tasks {
		for _, depName := range t.Dependencies {
			dep, ok := byName[canonicalName(depName)]
			if !ok {
				unresolved = append(unresolved, fmt.Sprintf("%q depends on unknown %q", t.Name, depName))
				continue
			}
			if dep.Day >= t.Day {
				violations = append(violations, Violation{
					Task:       t.Name,
					Dependency: dep.Name,
					TaskDay:    t.Day,
					DepDay:     dep.Day,
				})
			}
		}
	}
	return violations, unresolved
}
