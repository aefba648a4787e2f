// Package definition parses the event-definition language into groups of
// year-independent recurrence rules.
//
// The language is line oriented:
//
//	[Holidays:color: red]
//	25 December Christmas
//	-2 easter Good Friday
//	2 Wednesday Standup
//	3 Friday/July Summer party
//
// A bracketed line opens a group; text after the first colon is an opaque
// style declaration. Every other non-blank line is a rule of the form
// "<index> <category> <title>".
package definition

import (
	"fmt"
	"time"

	"calgen/internal/model"
)

// Recurrence is one of Fixed, NthWeekdayEveryMonth, NthWeekdayOfMonth or
// EasterOffset.
type Recurrence interface {
	recurrence()
	fmt.Stringer
}

// Fixed recurs on the same day and month each year.
type Fixed struct {
	Day   int
	Month time.Month
}

// NthWeekdayEveryMonth recurs on the Index-th Weekday of every month.
type NthWeekdayEveryMonth struct {
	Index   int
	Weekday model.Weekday
}

// NthWeekdayOfMonth recurs on the Index-th Weekday of one month.
type NthWeekdayOfMonth struct {
	Index   int
	Weekday model.Weekday
	Month   time.Month
}

// EasterOffset recurs Offset days after Easter Sunday; negative offsets
// fall before it.
type EasterOffset struct {
	Offset int
}

func (Fixed) recurrence()                {}
func (NthWeekdayEveryMonth) recurrence() {}
func (NthWeekdayOfMonth) recurrence()    {}
func (EasterOffset) recurrence()         {}

func (r Fixed) String() string {
	return fmt.Sprintf("%d %s", r.Day, r.Month)
}

func (r NthWeekdayEveryMonth) String() string {
	return fmt.Sprintf("%d %s", r.Index, r.Weekday)
}

func (r NthWeekdayOfMonth) String() string {
	return fmt.Sprintf("%d %s/%s", r.Index, r.Weekday, r.Month)
}

func (r EasterOffset) String() string {
	return fmt.Sprintf("%d easter", r.Offset)
}

// Rule is one definition line: a recurrence and the title shown on each
// resolved day.
type Rule struct {
	Title      string
	Recurrence Recurrence
	// Line is the 1-based source line, kept for diagnostics.
	Line int
}

// GroupID is the zero-based position of a group in parse order.
type GroupID int

// CSSClass is the class name renderers key group styles on.
func (id GroupID) CSSClass() string {
	return fmt.Sprintf("eventgroup%d", int(id))
}

// Group is a titled, optionally styled collection of rules.
type Group struct {
	ID    GroupID
	Title string
	// Style is the verbatim text after the first ':' of the header.
	Style    string
	HasStyle bool
	Rules    []Rule
}
