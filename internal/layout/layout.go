// Package layout arranges the events of an index into the cell sequences of
// the yearly, monthly and diary page styles. It knows weekdays and
// capacities only; names, colors and markup belong to the renderer.
package layout

import (
	"time"

	"calgen/internal/index"
	"calgen/internal/model"
)

// CellKind tags the variant a cell holds.
type CellKind int

const (
	// CellEmpty is padding.
	CellEmpty CellKind = iota
	// CellDay is a calendar day with its events.
	CellDay
	// CellLabel carries the month and year caption of a monthly grid.
	CellLabel
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellDay:
		return "day"
	case CellLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Cell is shared by all layouts. Which fields are meaningful depends on
// Kind: Day and Events for CellDay, Month, Year and Span for CellLabel.
// Weekday is the column (yearly, monthly) or the day's weekday (diary);
// Weekend is derived from it once when the cell is built.
type Cell struct {
	Kind    CellKind
	Weekday model.Weekday
	Weekend bool
	// HasWeekday is false for diary padding, which sits in no column.
	HasWeekday bool

	Day    int
	Events []index.Entry

	Month time.Month
	Year  int
	// Span is the number of grid slots the cell covers; 0 means 1.
	Span int
}

func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }
func (c Cell) IsDay() bool   { return c.Kind == CellDay }
func (c Cell) IsLabel() bool { return c.Kind == CellLabel }

// Slots is Span with the zero value counted as one slot.
func (c Cell) Slots() int {
	if c.Span <= 0 {
		return 1
	}
	return c.Span
}

func emptyCell(w model.Weekday) Cell {
	return Cell{Kind: CellEmpty, Weekday: w, Weekend: w.IsWeekend(), HasWeekday: true}
}

func dayCell(idx *index.Index, m time.Month, day int) Cell {
	w := model.Date{Year: idx.Year(), Month: m, Day: day}.Weekday()
	return Cell{
		Kind:       CellDay,
		Weekday:    w,
		Weekend:    w.IsWeekend(),
		HasWeekday: true,
		Day:        day,
		Events:     idx.OnDay(m, day),
	}
}

// leadingBlanks is the column of day 1 in a Monday-first week.
func leadingBlanks(year int, m time.Month) int {
	return int(model.Date{Year: year, Month: m, Day: 1}.Weekday())
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
