// Package index merges the resolved rules of every group into a per-day
// list of events for one year.
package index

import (
	"sort"
	"time"

	"calgen/internal/definition"
	"calgen/internal/model"
	"calgen/internal/resolve"
)

// Entry is one event shown on a day.
type Entry struct {
	GroupID definition.GroupID
	Title   string
}

// Occurrence is a single resolved event.
type Occurrence struct {
	Date model.Date
	Entry
	// Group is the title of the owning group.
	Group string
}

// Index maps each day of one year to its events. Entries of a day keep
// insertion order: groups in parse order, then rules in group order, then
// dates chronologically. Duplicates are kept.
type Index struct {
	year  int
	days  map[model.Date][]Entry
	order []Occurrence
}

// Build resolves every rule of groups for year.
func Build(groups []definition.Group, year int) *Index {
	idx := &Index{
		year: year,
		days: make(map[model.Date][]Entry),
	}
	for _, g := range groups {
		for _, r := range g.Rules {
			for _, d := range resolve.Dates(r.Recurrence, year) {
				e := Entry{GroupID: g.ID, Title: r.Title}
				idx.days[d] = append(idx.days[d], e)
				idx.order = append(idx.order, Occurrence{Date: d, Entry: e, Group: g.Title})
			}
		}
	}
	return idx
}

// Year is the year the index was built for.
func (x *Index) Year() int {
	return x.year
}

// On returns the events of d, or nil. The slice is a copy.
func (x *Index) On(d model.Date) []Entry {
	entries := x.days[d]
	if len(entries) == 0 {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// OnDay is On for a day of the index's own year.
func (x *Index) OnDay(m time.Month, day int) []Entry {
	return x.On(model.Date{Year: x.year, Month: m, Day: day})
}

// Len is the number of occurrences.
func (x *Index) Len() int {
	return len(x.order)
}

// Days returns the dates that have at least one event, chronologically.
func (x *Index) Days() []model.Date {
	out := make([]model.Date, 0, len(x.days))
	for d := range x.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Occurrences lists every occurrence sorted by date; same-day occurrences
// keep their per-day order.
func (x *Index) Occurrences() []Occurrence {
	out := make([]Occurrence, len(x.order))
	copy(out, x.order)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
