package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/settlement-planner/internal/models"
)

// Schedule assigns every task a concrete day on [1, horizon]. Arrival day is
// day 1 and a day offset names its target day directly. User-dated tasks pin
// first; the rest place by offset, pushed past any already-placed dependency. A dependency naming a task outside the plan
// contributes no floor. The assignment is computed from scratch each call, so
// scheduling an already-scheduled plan yields the same days.
func Schedule(tasks []*models.Task, info models.CustomerInfo) {
	horizon := info.Horizon()
	arrival, hasArrival := parseDate(info.ArrivalDate)

	var floating []*models.Task
	for _, t := range tasks {
		if day, ok := pinnedDay(t, arrival, hasArrival, horizon); ok {
			setDay(t, day, arrival, hasArrival)
		} else {
			t.Day = 0
			floating = append(floating, t)
		}
	}

	byName := make(map[string]*models.Task, len(tasks))
	for _, t := range tasks {
		byName[canonicalName(t.Name)] = t
	}

	sort.SliceStable(floating, func(i, j int) bool {
		if floating[i].DayOffset != floating[j].DayOffset {
			return floating[i].DayOffset < floating[j].DayOffset
		}
		return floating[i].Priority.Rank() < floating[j].Priority.Rank()
	})

	for _, t := range floating {
		day := t.DayOffset
		if day < 1 {
			day = 1
		}
		for _, depName := range t.Dependencies {
			dep, ok := byName[canonicalName(depName)]
			if !ok || dep.Day == 0 {
				continue
			}
			if dep.Day+1 > day {
				day = dep.Day + 1
			}
		}
		if day > horizon {
			day = horizon
		}
		setDay(t, day, arrival, hasArrival)
	}
}

// pinnedDay resolves a user-stated preferred date to a plan day. Dates before
// arrival or past the horizon clamp rather than reject.
func pinnedDay(t *models.Task, arrival time.Time, hasArrival bool, horizon int) (int, bool) {
	if t.PreferredDate == "" || !hasArrival {
		return 0, false
	}
	pref, ok := parseDate(t.PreferredDate)
	if !ok {
		return 0, false
	}
	day := int(pref.Sub(arrival).Hours()/24) + 1
	if day < 1 {
		day = 1
	}
	if day > horizon {
		day = horizon
	}
	return day, true
}

func setDay(t *models.Task, day int, arrival time.Time, hasArrival bool) {
	t.Day = day
	if hasArrival {
		t.Date = arrival.AddDate(0, 0, day-1).Format("2006-01-02")
		t.DayRange = fmt.Sprintf("Day %d (%s)", day, t.Date)
	} else {
		t.Date = ""
		t.DayRange = fmt.Sprintf("Day %d", day)
	}
}
