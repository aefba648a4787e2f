package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"calgen/internal/definition"
	"calgen/internal/model"
)

// ErrUnsupportedRule reports a recurrence with no equivalent on the other
// side: Easter offsets have no RRULE, and most RRULEs have no rule form.
var ErrUnsupportedRule = errors.New("unsupported recurrence")

// rruleDays is indexed by model.Weekday.
var rruleDays = [model.DaysPerWeek]rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// ROption maps a recurrence onto rrule-go options without DTSTART.
func ROption(rec definition.Recurrence) (rrule.ROption, error) {
	switch r := rec.(type) {
	case definition.Fixed:
		return rrule.ROption{
			Freq:       rrule.YEARLY,
			Bymonth:    []int{int(r.Month)},
			Bymonthday: []int{r.Day},
		}, nil
	case definition.NthWeekdayEveryMonth:
		return rrule.ROption{
			Freq:      rrule.MONTHLY,
			Byweekday: []rrule.Weekday{rruleDays[r.Weekday].Nth(r.Index)},
		}, nil
	case definition.NthWeekdayOfMonth:
		return rrule.ROption{
			Freq:      rrule.YEARLY,
			Bymonth:   []int{int(r.Month)},
			Byweekday: []rrule.Weekday{rruleDays[r.Weekday].Nth(r.Index)},
		}, nil
	}
	return rrule.ROption{}, fmt.Errorf("%w: %s", ErrUnsupportedRule, rec)
}

// RRule is the RRULE value of rec, e.g. "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25".
func RRule(rec definition.Recurrence) (string, error) {
	opt, err := ROption(rec)
	if err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}

// Expand lists the dates rec falls on in year using rrule-go.
func Expand(rec definition.Recurrence, year int) ([]model.Date, error) {
	opt, err := ROption(rec)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, err
	}
	until := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	var out []model.Date
	for _, t := range r.Between(opt.Dtstart, until, true) {
		out = append(out, model.DateOf(t))
	}
	return out, nil
}

// FromRRule maps an RRULE value back onto a recurrence. anchor is the
// event's DTSTART, used for the month and day of a plain FREQ=YEARLY and for
// the day of FREQ=YEARLY;BYMONTH=m.
func FromRRule(value string, anchor model.Date) (definition.Recurrence, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return nil, err
	}
	unsupported := fmt.Errorf("%w: %s", ErrUnsupportedRule, value)
	if opt.Interval > 1 || opt.Count > 0 || !opt.Until.IsZero() ||
		len(opt.Bysetpos) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 {
		return nil, unsupported
	}
	if len(opt.Bymonth) > 1 || len(opt.Bymonthday) > 1 || len(opt.Byweekday) > 1 {
		return nil, unsupported
	}

	switch opt.Freq {
	case rrule.YEARLY:
		// BYDAY or BYMONTHDAY without BYMONTH repeat in every month (or, for
		// "+nWD", count through the whole year), so DTSTART fills in the
		// month only when neither is present.
		if len(opt.Bymonth) == 0 && (len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0) {
			return nil, unsupported
		}
		month := anchor.Month
		if len(opt.Bymonth) == 1 {
			month = time.Month(opt.Bymonth[0])
		}
		if len(opt.Byweekday) == 1 {
			if len(opt.Bymonthday) > 0 {
				return nil, unsupported
			}
			w, n, ok := nthWeekday(opt.Byweekday[0])
			if !ok {
				return nil, unsupported
			}
			return definition.NthWeekdayOfMonth{Index: n, Weekday: w, Month: month}, nil
		}
		day := anchor.Day
		if len(opt.Bymonthday) == 1 {
			day = opt.Bymonthday[0]
		}
		if day < 1 {
			return nil, unsupported
		}
		return definition.Fixed{Day: day, Month: month}, nil
	case rrule.MONTHLY:
		if len(opt.Byweekday) != 1 || len(opt.Bymonth) > 0 {
			return nil, unsupported
		}
		w, n, ok := nthWeekday(opt.Byweekday[0])
		if !ok {
			return nil, unsupported
		}
		return definition.NthWeekdayEveryMonth{Index: n, Weekday: w}, nil
	}
	return nil, unsupported
}

func nthWeekday(wd rrule.Weekday) (model.Weekday, int, bool) {
	n := wd.N()
	if n < 1 || n > 5 {
		return 0, 0, false
	}
	return model.Weekday(wd.Day()), n, true
}
