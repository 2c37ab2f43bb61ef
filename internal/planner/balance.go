package planner

import (
	"sort"

	"github.com/example/settlement-planner/internal/models"
)

// Balance enforces the per-day task ceiling. Essential and core tasks are
// never moved or dropped, even on a day they alone overfill. Extended tasks
// compete for the remaining slots by relevance; each loser re-queues onto
// the day after the one it lost, spilling forward until a day has open
// capacity. An extended task that fits nowhere inside the horizon is dropped
// from the plan. A schedule already under the ceiling passes through
// unchanged.
func Balance(tasks []*models.Task, info models.CustomerInfo, ceiling int) []*models.Task {
	horizon := info.Horizon()
	arrival, hasArrival := parseDate(info.ArrivalDate)

	byDay := map[int][]*models.Task{}
	for _, t := range tasks {
		byDay[t.Day] = append(byDay[t.Day], t)
	}

	load := map[int]int{}
	dropped := map[*models.Task]bool{}
	var overflow []*models.Task

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	for _, d := range days {
		var fixed, extended []*models.Task
		for _, t := range byDay[d] {
			if t.Class == models.ClassExtended {
				extended = append(extended, t)
			} else {
				fixed = append(fixed, t)
			}
		}
		load[d] = len(fixed)

		slots := ceiling - len(fixed)
		if slots < 0 {
			slots = 0
		}
		sort.SliceStable(extended, func(i, j int) bool {
			return extended[i].RelevanceScore > extended[j].RelevanceScore
		})
		for i, t := range extended {
			if i < slots {
				load[d]++
				continue
			}
			overflow = append(overflow, t)
		}
	}

	for _, t := range overflow {
		day := firstOpenDay(load, t.Day+1, horizon, ceiling)
		if day == 0 {
			dropped[t] = true
			continue
		}
		load[day]++
		setDay(t, day, arrival, hasArrival)
	}

	out := tasks[:0]
	for _, t := range tasks {
		if !dropped[t] {
			out = append(out, t)
		}
	}
	return out
}

func firstOpenDay(load map[int]int, from, to, ceiling int) int {
	for d := from; d <= to; d++ {
		if load[d] < ceiling {
			return d
		}
	}
	return 0
}
