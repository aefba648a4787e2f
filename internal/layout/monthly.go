package layout

import (
	"time"

	"calgen/internal/index"
	"calgen/internal/model"
)

const (
	// LabelSpan is the number of grid slots the month caption covers.
	LabelSpan = 2
	// minLeadForLabel is the leading blank run needed to hold the caption
	// in the first row; shorter runs push it to an extra last row.
	minLeadForLabel = LabelSpan
)

// MonthGrid is a seven-column grid for one month. The caption is a single
// Cell covering LabelSpan slots, so len(Cells) is LabelSpan-1 short of the
// grid size; Slots, not len(Cells), is always a multiple of seven.
type MonthGrid struct {
	Year  int
	Month time.Month
	Cells []Cell
	// LabelInFirstRow reports where the caption went.
	LabelInFirstRow bool
}

// Slots counts grid positions, the caption counting LabelSpan.
func (g MonthGrid) Slots() int {
	n := 0
	for _, c := range g.Cells {
		n += c.Slots()
	}
	return n
}

// Rows is the number of week rows in the grid.
func (g MonthGrid) Rows() int {
	return g.Slots() / model.DaysPerWeek
}

// Monthly builds one grid per month of the index's year.
func Monthly(idx *index.Index) []MonthGrid {
	grids := make([]MonthGrid, 0, 12)
	for _, m := range model.Months() {
		grids = append(grids, Month(idx, m))
	}
	return grids
}

// Month builds the grid for m: leading blanks up to the weekday of day 1,
// the days, then trailing blanks to finish the last week. The caption takes
// the first two leading blanks when the run is long enough; otherwise an
// extra row is added with the caption in its weekend columns.
func Month(idx *index.Index, m time.Month) MonthGrid {
	year := idx.Year()
	lead := leadingBlanks(year, m)
	days := model.DaysInMonth(year, m)
	label := Cell{Kind: CellLabel, Month: m, Year: year, Span: LabelSpan, HasWeekday: true}

	grid := MonthGrid{Year: year, Month: m}
	cells := make([]Cell, 0, 6*model.DaysPerWeek)

	first := 0
	if lead >= minLeadForLabel {
		label.Weekday = model.Monday
		cells = append(cells, label)
		grid.LabelInFirstRow = true
		first = LabelSpan
	}
	for col := first; col < lead; col++ {
		cells = append(cells, emptyCell(model.Weekday(col)))
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, dayCell(idx, m, day))
	}
	if rem := (lead + days) % model.DaysPerWeek; rem != 0 {
		for col := rem; col < model.DaysPerWeek; col++ {
			cells = append(cells, emptyCell(model.Weekday(col)))
		}
	}

	if !grid.LabelInFirstRow {
		for col := 0; col < model.DaysPerWeek-LabelSpan; col++ {
			cells = append(cells, emptyCell(model.Weekday(col)))
		}
		label.Weekday = model.Weekday(model.DaysPerWeek - LabelSpan)
		label.Weekend = true
		cells = append(cells, label)
	}

	grid.Cells = cells
	return grid
}
