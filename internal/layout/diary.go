package layout

import (
	"time"

	"calgen/internal/index"
	"calgen/internal/model"
)

// DiaryOptions sizes diary sections and pages. Zero values pick defaults.
type DiaryOptions struct {
	// CellsPerSection is the number of day lines in one section.
	CellsPerSection int
	// SectionsPerMonth is the minimum number of sections a month gets; more
	// are added when the month does not fit.
	SectionsPerMonth int
	// SectionsPerPage is the capacity of a printed page (2 rows x 4 columns
	// by default).
	SectionsPerPage int
}

const (
	DefaultDiaryCellsPerSection  = 16
	DefaultDiarySectionsPerMonth = 2
	DefaultDiarySectionsPerPage  = 8
)

func (o DiaryOptions) normalized() DiaryOptions {
	if o.CellsPerSection <= 0 {
		o.CellsPerSection = DefaultDiaryCellsPerSection
	}
	if o.SectionsPerMonth <= 0 {
		o.SectionsPerMonth = DefaultDiarySectionsPerMonth
	}
	if o.SectionsPerPage <= 0 {
		o.SectionsPerPage = DefaultDiarySectionsPerPage
	}
	return o
}

// DiaryPage is one labelled section of a month: a run of day lines padded
// with blanks to the section capacity.
type DiaryPage struct {
	Month time.Month
	// Part numbers the sections of a month from 1.
	Part  int
	Cells []Cell
}

// DiarySheet is a printed page: up to SectionsPerPage sections.
type DiarySheet []DiaryPage

// Diary lays the year out as day lines, month by month.
func Diary(idx *index.Index, opts DiaryOptions) []DiarySheet {
	opts = opts.normalized()

	var sections []DiaryPage
	for _, m := range model.Months() {
		sections = append(sections, diaryMonth(idx, m, opts)...)
	}

	var sheets []DiarySheet
	for _, part := range chunk(sections, opts.SectionsPerPage) {
		sheets = append(sheets, DiarySheet(part))
	}
	return sheets
}

func diaryMonth(idx *index.Index, m time.Month, opts DiaryOptions) []DiaryPage {
	days := model.DaysInMonth(idx.Year(), m)
	parts := max(opts.SectionsPerMonth, (days+opts.CellsPerSection-1)/opts.CellsPerSection)

	cells := make([]Cell, 0, parts*opts.CellsPerSection)
	for day := 1; day <= days; day++ {
		cells = append(cells, dayCell(idx, m, day))
	}
	for len(cells) < parts*opts.CellsPerSection {
		cells = append(cells, Cell{Kind: CellEmpty})
	}

	out := make([]DiaryPage, 0, parts)
	for i, part := range chunk(cells, opts.CellsPerSection) {
		out = append(out, DiaryPage{Month: m, Part: i + 1, Cells: part})
	}
	return out
}
