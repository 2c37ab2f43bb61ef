package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/settlement-planner/internal/models"
)

func TestLoadTemplate(t *testing.T) {
	tmpl, err := LoadTemplate()
	require.NoError(t, err)
	require.Len(t, tmpl.Phases, 4)

	for _, phase := range tmpl.Phases {
		assert.NotEmpty(t, phase.Name)
		assert.NotEmpty(t, phase.Tasks)
		for _, task := range phase.Tasks {
			assert.NotEmpty(t, task.Name, phase.Key)
			assert.GreaterOrEqual(t, task.DayOffset, 1, task.Name)
			assert.NotEqual(t, 9, models.Priority(task.Priority).Rank(), task.Name)
		}
	}
}

func TestEssentialsSkipConditionalTasks(t *testing.T) {
	tmpl, err := LoadTemplate()
	require.NoError(t, err)

	walker := tmpl.Essentials(testInfo())
	for _, task := range walker {
		assert.NotEqual(t, "Apply for Driver's License (if needed)", task.Name)
	}

	motorist := testInfo()
	motorist.NeedsCar = true
	withCar := tmpl.Essentials(motorist)
	findByName(t, withCar, "Apply for Driver's License (if needed)")
	assert.Len(t, withCar, len(walker)+1)
}

func TestEssentialsMaterialization(t *testing.T) {
	tmpl, err := LoadTemplate()
	require.NoError(t, err)

	tasks := tmpl.Essentials(testInfo())
	seen := map[string]bool{}
	for _, task := range tasks {
		assert.Equal(t, models.ClassEssential, task.Class)
		assert.Equal(t, models.StatusPending, task.Status)
		assert.NotEmpty(t, task.ID)
		assert.NotEmpty(t, task.Phase)
		assert.NotNil(t, task.Dependencies)
		assert.NotNil(t, task.DocumentsNeeded)
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}

	// Every declared dependency names another template task.
	byName := map[string]bool{}
	for _, task := range tasks {
		byName[canonicalName(task.Name)] = true
	}
	for _, task := range tasks {
		for _, dep := range task.Dependencies {
			assert.True(t, byName[canonicalName(dep)], "%s -> %s", task.Name, dep)
		}
	}
}
