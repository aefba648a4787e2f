// Package ics converts between definition groups and iCalendar data.
package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"calgen/internal/definition"
	"calgen/internal/index"
	appLog "calgen/internal/log"
	"calgen/internal/model"
	"calgen/internal/resolve"
)

const productID = "-//calgen//calendar export//EN"

// uidSpace namespaces the name-based UIDs of exported events.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("calgen:event"))

// searchYears bounds the lookahead for the first occurrence of a recurring
// rule. Eight years covers 29 February across a skipped century leap year.
const searchYears = 8

// ExportOptions tweak calendar metadata.
type ExportOptions struct {
	// Name is written as X-WR-CALNAME.
	Name string
	// Stamp is the DTSTAMP of every event; zero means now.
	Stamp time.Time
}

func (o ExportOptions) stamp() time.Time {
	if o.Stamp.IsZero() {
		return time.Now().UTC()
	}
	return o.Stamp.UTC()
}

func newCalendar(opts ExportOptions) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	return cal
}

// eventUID derives a stable UID so re-exports update instead of duplicate.
func eventUID(parts ...any) string {
	return uuid.NewSHA1(uidSpace, []byte(fmt.Sprint(parts...))).String() + "@calgen"
}

func addDay(cal *ical.Calendar, uid, group, title string, d model.Date, stamp time.Time) *ical.VEvent {
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(stamp)
	ev.SetAllDayStartAt(d.Time())
	ev.SetAllDayEndAt(d.AddDays(1).Time())
	ev.SetSummary(title)
	if group != "" {
		ev.SetProperty(ical.ComponentPropertyCategories, group)
	}
	return ev
}

// Export writes one all-day VEVENT per occurrence in idx.
func Export(idx *index.Index, opts ExportOptions) ([]byte, error) {
	if idx == nil {
		return nil, errors.New("ics: index is nil")
	}
	cal := newCalendar(opts)
	stamp := opts.stamp()

	// Several rules may put the same title on the same day; the counter
	// keeps their UIDs apart.
	seen := make(map[string]int)
	for _, occ := range idx.Occurrences() {
		key := fmt.Sprint(occ.GroupID, occ.Title, occ.Date)
		n := seen[key]
		seen[key]++
		addDay(cal, eventUID(occ.GroupID, "/", occ.Title, "/", occ.Date, "/", n), occ.Group, occ.Title, occ.Date, stamp)
	}

	appLog.Debug("ics export", "year", idx.Year(), "events", idx.Len())
	return []byte(cal.Serialize()), nil
}

// ExportRecurring writes one VEVENT with an RRULE per rule, anchored at the
// rule's first occurrence in year or later. Easter-relative rules have no
// RRULE form and are written as single events for year.
func ExportRecurring(groups []definition.Group, year int, opts ExportOptions) ([]byte, error) {
	cal := newCalendar(opts)
	stamp := opts.stamp()

	for _, g := range groups {
		for i, r := range g.Rules {
			if off, ok := r.Recurrence.(definition.EasterOffset); ok {
				for _, d := range resolve.Dates(off, year) {
					addDay(cal, eventUID(g.ID, "/", i, "/", d), g.Title, r.Title, d, stamp)
				}
				continue
			}

			rule, err := RRule(r.Recurrence)
			if err != nil {
				return nil, fmt.Errorf("ics: %s line %d: %w", g.Title, r.Line, err)
			}
			first, ok := firstOccurrence(r.Recurrence, year)
			if !ok {
				appLog.Warn("ics export: rule never occurs", "group", g.Title, "title", r.Title, "line", r.Line)
				continue
			}
			ev := addDay(cal, eventUID(g.ID, "/", i, "/", r.Recurrence), g.Title, r.Title, first, stamp)
			ev.AddRrule(rule)
		}
	}
	return []byte(cal.Serialize()), nil
}

func firstOccurrence(rec definition.Recurrence, year int) (model.Date, bool) {
	for y := year; y <= year+searchYears; y++ {
		if dates := resolve.Dates(rec, y); len(dates) > 0 {
			return dates[0], true
		}
	}
	return model.Date{}, false
}
