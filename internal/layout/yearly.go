package layout

import (
	"time"

	"calgen/internal/index"
	"calgen/internal/model"
)

// MinYearlyRows fits the longest month starting on a Sunday: six leading
// blanks plus 31 days.
const MinYearlyRows = 37

// YearlyOptions sizes the yearly overview. Zero values pick defaults.
type YearlyOptions struct {
	// MonthsPerPage splits the year into pages; 12 is one page, 6 is two
	// half-year pages.
	MonthsPerPage int
	// Rows is the number of weekday rows every month column is padded to.
	Rows int
}

func (o YearlyOptions) normalized() YearlyOptions {
	if o.MonthsPerPage <= 0 || o.MonthsPerPage > 12 {
		o.MonthsPerPage = 12
	}
	if o.Rows < MinYearlyRows {
		o.Rows = MinYearlyRows
	}
	return o
}

// YearlyMonth is one month column of the overview. Cells[i] sits on the
// row of weekday i mod 7.
type YearlyMonth struct {
	Month time.Month
	Cells []Cell
}

// YearlyPage holds consecutive whole months.
type YearlyPage struct {
	Months []YearlyMonth
}

// Yearly builds the overview pages for the index's year.
func Yearly(idx *index.Index, opts YearlyOptions) []YearlyPage {
	opts = opts.normalized()

	months := make([]YearlyMonth, 0, 12)
	for _, m := range model.Months() {
		months = append(months, yearlyMonth(idx, m, opts.Rows))
	}

	var pages []YearlyPage
	for _, part := range chunk(months, opts.MonthsPerPage) {
		pages = append(pages, YearlyPage{Months: part})
	}
	return pages
}

func yearlyMonth(idx *index.Index, m time.Month, rows int) YearlyMonth {
	lead := leadingBlanks(idx.Year(), m)
	days := model.DaysInMonth(idx.Year(), m)

	cells := make([]Cell, 0, rows)
	for i := 0; i < lead; i++ {
		cells = append(cells, emptyCell(model.Weekday(i)))
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, dayCell(idx, m, day))
	}
	for len(cells) < rows {
		cells = append(cells, emptyCell(model.Weekday(len(cells)%model.DaysPerWeek)))
	}
	return YearlyMonth{Month: m, Cells: cells}
}

// WeekdayTitles labels the rows of a yearly page, starting on Monday.
func WeekdayTitles(rows int) []model.Weekday {
	if rows < MinYearlyRows {
		rows = MinYearlyRows
	}
	out := make([]model.Weekday, rows)
	for i := range out {
		out[i] = model.Weekday(i % model.DaysPerWeek)
	}
	return out
}
