package ics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	ical "github.com/arran4/golang-ical"

	"calgen/internal/definition"
	appLog "calgen/internal/log"
	"calgen/internal/model"
)

// ImportICS converts the VEVENTs of an iCalendar stream into the rules of a
// single group titled title. Single events become fixed dates keyed on
// their start day; events whose RRULE has a rule form keep recurring.
// Anything else is skipped and logged.
func ImportICS(r io.Reader, title string) (definition.Group, error) {
	group := definition.Group{Title: title}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return group, fmt.Errorf("ics: parse: %w", err)
	}

	seen := make(map[definition.Rule]bool)
	for _, ve := range cal.Events() {
		rule, err := importEvent(ve)
		if err != nil {
			appLog.Warn("ics import: skipping event", "uid", propValue(ve, ical.ComponentPropertyUniqueId), "reason", err.Error())
			continue
		}
		if seen[rule] {
			continue
		}
		seen[rule] = true
		group.Rules = append(group.Rules, rule)
	}

	appLog.Info("ics import completed", "group", title, "rules", len(group.Rules))
	return group, nil
}

func importEvent(ve *ical.VEvent) (definition.Rule, error) {
	var rule definition.Rule

	rule.Title = strings.Join(strings.Fields(propValue(ve, ical.ComponentPropertySummary)), " ")
	if rule.Title == "" {
		return rule, errors.New("missing SUMMARY")
	}

	start, err := startDate(ve)
	if err != nil {
		return rule, err
	}

	if raw := propValue(ve, ical.ComponentPropertyRrule); raw != "" {
		rec, err := FromRRule(raw, start)
		if err != nil {
			return rule, err
		}
		rule.Recurrence = rec
		return rule, nil
	}

	rule.Recurrence = definition.Fixed{Day: start.Day, Month: start.Month}
	return rule, nil
}

// startDate is the calendar day of DTSTART, read in the event's own zone.
func startDate(ve *ical.VEvent) (model.Date, error) {
	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil {
		return model.Date{}, errors.New("missing DTSTART")
	}
	allDay := !strings.Contains(prop.Value, "T")
	if vs, ok := prop.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		allDay = true
	}

	if allDay {
		t, err := ve.GetAllDayStartAt()
		if err != nil {
			return model.Date{}, fmt.Errorf("DTSTART: %w", err)
		}
		return model.DateOf(t), nil
	}
	t, err := ve.GetStartAt()
	if err != nil {
		return model.Date{}, fmt.Errorf("DTSTART: %w", err)
	}
	return model.DateOf(t), nil
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}

// ImportTSV converts lines of the form "DD-Month<TAB>Title" into fixed-date
// rules of a group titled title. Leading zeros of the day are dropped and
// lines without a title are skipped.
func ImportTSV(r io.Reader, title string, names model.NameTable) (definition.Group, error) {
	group := definition.Group{Title: title}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		date, rest, ok := strings.Cut(text, "\t")
		eventTitle := strings.TrimSpace(rest)
		if !ok || eventTitle == "" {
			continue
		}

		dayText, monthText, ok := strings.Cut(strings.TrimSpace(date), "-")
		if !ok {
			return group, fmt.Errorf("ics: line %d: date %q is not DD-Month", line, date)
		}
		day, err := strconv.Atoi(strings.TrimLeft(dayText, "0"))
		if err != nil || day < 1 || day > 31 {
			return group, fmt.Errorf("ics: line %d: bad day %q", line, dayText)
		}
		month, ok := names.LookupMonth(strings.TrimSpace(monthText))
		if !ok {
			return group, fmt.Errorf("ics: line %d: unknown month %q", line, monthText)
		}

		group.Rules = append(group.Rules, definition.Rule{
			Title:      eventTitle,
			Recurrence: definition.Fixed{Day: day, Month: month},
			Line:       line,
		})
	}
	if err := sc.Err(); err != nil {
		return group, fmt.Errorf("ics: read: %w", err)
	}
	return group, nil
}
