// Package resolve turns year-independent recurrences into the concrete
// dates they fall on in one Gregorian year.
//
// Resolution never fails. Combinations that do not exist in a given year,
// such as 31 April, 29 February outside leap years or a fifth Monday in a
// month with four, are omitted.
//
// Each pass is bounded to its year: an Easter offset that crosses into the
// previous or next year is not emitted for the Easter year, but is emitted
// when the year it lands in is resolved.
package resolve

import (
	"time"

	"calgen/internal/definition"
	"calgen/internal/model"
)

// Dates returns the days rec falls on in year, in chronological order.
func Dates(rec definition.Recurrence, year int) []model.Date {
	switch r := rec.(type) {
	case definition.Fixed:
		return fixed(r, year)
	case definition.NthWeekdayEveryMonth:
		var out []model.Date
		for _, m := range model.Months() {
			if d, ok := NthWeekday(year, m, r.Weekday, r.Index); ok {
				out = append(out, d)
			}
		}
		return out
	case definition.NthWeekdayOfMonth:
		if d, ok := NthWeekday(year, r.Month, r.Weekday, r.Index); ok {
			return []model.Date{d}
		}
		return nil
	case definition.EasterOffset:
		return easterOffset(r.Offset, year)
	default:
		return nil
	}
}

// easterOffset collects every day in year lying offset days from some
// Easter Sunday. Only the Easters between 1 January and 31 December of
// year, each shifted back by offset, can land in year, which is at most two
// source years for any offset.
func easterOffset(offset, year int) []model.Date {
	from := model.Date{Year: year, Month: time.January, Day: 1}.AddDays(-offset).Year
	to := model.Date{Year: year, Month: time.December, Day: 31}.AddDays(-offset).Year
	var out []model.Date
	for src := from; src <= to; src++ {
		d := Easter(src).AddDays(offset)
		if d.Year == year {
			out = append(out, d)
		}
	}
	return out
}

func fixed(r definition.Fixed, year int) []model.Date {
	d := model.Date{Year: year, Month: r.Month, Day: r.Day}
	if !d.Valid() {
		return nil
	}
	return []model.Date{d}
}

// NthWeekday finds the n-th (1-based) weekday w of month m. It reports false
// when the month has fewer than n such weekdays.
func NthWeekday(year int, m time.Month, w model.Weekday, n int) (model.Date, bool) {
	if n < 1 || !w.Valid() || m < time.January || m > time.December {
		return model.Date{}, false
	}
	firstWeekday := model.Date{Year: year, Month: m, Day: 1}.Weekday()
	first := 1 + (int(w)-int(firstWeekday)+model.DaysPerWeek)%model.DaysPerWeek
	day := first + model.DaysPerWeek*(n-1)
	if day > model.DaysInMonth(year, m) {
		return model.Date{}, false
	}
	return model.Date{Year: year, Month: m, Day: day}, true
}
