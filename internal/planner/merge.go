package planner

import (
	"strings"

	"github.com/example/settlement-planner/internal/geo"
	"github.com/example/settlement-planner/internal/models"
)

// nameSynonyms folds common phrasings of the same activity onto one
// canonical key so a user-stated task merges with its template twin.
var nameSynonyms = map[string]string{
	"home viewing":               "property viewing",
	"house viewing":              "property viewing",
	"apartment viewing":          "property viewing",
	"flat viewing":               "property viewing",
	"open bank account":          "bank account opening",
	"opening bank account":       "bank account opening",
	"bank account":               "bank account opening",
	"get sim card":               "get local sim card",
	"buy sim card":               "get local sim card",
	"sim card":                   "get local sim card",
	"resident id":                "apply for resident id / visa extension",
	"id card":                    "apply for resident id / visa extension",
	"apply for resident id":      "apply for resident id / visa extension",
	"visa extension":             "apply for resident id / visa extension",
	"driver's license":           "apply for driver's license (if needed)",
	"driving license":            "apply for driver's license (if needed)",
	"apply for driver's license": "apply for driver's license (if needed)",
}

func canonicalName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := nameSynonyms[key]; ok {
		return canon
	}
	return key
}

// Merge folds user-stated tasks into the template stream. When both carry
// the same canonical name the template task survives with the user's
// specifics laid over it field by field: class upgrades to core, preferred
// date and offset follow the user, the template's dependencies are cleared
// unless the user named their own, and a user-supplied location wins. Tasks
// unique to either stream pass through unchanged.
func Merge(template, user []*models.Task) []*models.Task {
	byName := make(map[string]*models.Task, len(template))
	out := make([]*models.Task, 0, len(template)+len(user))
	for _, t := range template {
		byName[canonicalName(t.Name)] = t
		out = append(out, t)
	}

	for _, u := range user {
		existing, ok := byName[canonicalName(u.Name)]
		if !ok {
			byName[canonicalName(u.Name)] = u
			out = append(out, u)
			continue
		}
		existing.Class = models.ClassCore
		existing.UserMentioned = true
		if u.PreferredDate != "" {
			existing.PreferredDate = u.PreferredDate
			existing.DayOffset = u.DayOffset
		}
		if len(u.Dependencies) > 0 {
			existing.Dependencies = u.Dependencies
		} else {
			existing.Dependencies = []string{}
		}
		if u.Location != nil {
			existing.Location = u.Location
		}
		if u.Priority.Rank() < existing.Priority.Rank() {
			existing.Priority = u.Priority
		}
	}
	return out
}

// footprint identifies an extended suggestion by what it offers and where.
type footprint struct {
	category string
	district string
}

// DedupFootprint drops extended suggestions that repeat another suggestion's
// service category in the same district within windowDays of it. Earlier
// entries win; essential and core tasks are never touched. The window is
// evaluated against each task's declared target day, before balancing runs,
// so a later deferral can move a survivor closer to a kept twin than the
// window allows.
func DedupFootprint(tasks []*models.Task, windowDays int) []*models.Task {
	type seenAt struct {
		fp  footprint
		day int
	}
	var seen []seenAt

	out := tasks[:0]
	for _, t := range tasks {
		if t.Class != models.ClassExtended || t.Location == nil {
			out = append(out, t)
			continue
		}
		fp := footprint{
			category: t.Category,
			district: geo.District(t.Location.Address),
		}
		day := expectedDay(t)

		dup := false
		for _, s := range seen {
			if s.fp == fp && abs(s.day-day) <= windowDays {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, seenAt{fp: fp, day: day})
		out = append(out, t)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
