package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

var englishMonths = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var englishWeekdays = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// NameTable holds the month and weekday names used both for matching the
// definition language and for display. Index 0 of Months is January and
// index 0 of Weekdays is Monday.
type NameTable struct {
	Months   [12]string
	Weekdays [7]string
}

// DefaultNames returns the built-in English table.
func DefaultNames() NameTable {
	return NameTable{Months: englishMonths, Weekdays: englishWeekdays}
}

// Month returns the display name of m.
func (n NameTable) Month(m time.Month) string {
	if m < time.January || m > time.December {
		return m.String()
	}
	return n.Months[m-1]
}

// Weekday returns the display name of w.
func (n NameTable) Weekday(w Weekday) string {
	if !w.Valid() {
		return w.String()
	}
	return n.Weekdays[w]
}

// LookupMonth matches a full month name, ignoring case.
func (n NameTable) LookupMonth(s string) (time.Month, bool) {
	key := fold(s)
	for i, name := range n.Months {
		if fold(name) == key {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// LookupWeekday matches a full weekday name, ignoring case.
func (n NameTable) LookupWeekday(s string) (Weekday, bool) {
	key := fold(s)
	for i, name := range n.Weekdays {
		if fold(name) == key {
			return Weekday(i), true
		}
	}
	return 0, false
}

// Validate rejects tables with empty names, names containing whitespace or
// '/', or names that collide after case folding. Any of these would make a
// rule line ambiguous.
func (n NameTable) Validate() error {
	seen := make(map[string]string, len(n.Months)+len(n.Weekdays))
	check := func(kind string, i int, name string) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("names: %s %d is empty", kind, i+1)
		}
		if strings.ContainsAny(name, " \t/") {
			return fmt.Errorf("names: %s %q must be a single word", kind, name)
		}
		key := fold(name)
		if key == "easter" {
			return errors.New("names: \"easter\" is reserved")
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("names: %s %q collides with %s", kind, name, prev)
		}
		seen[key] = kind + " " + name
		return nil
	}
	for i, name := range n.Months {
		if err := check("month", i, name); err != nil {
			return err
		}
	}
	for i, name := range n.Weekdays {
		if err := check("weekday", i, name); err != nil {
			return err
		}
	}
	return nil
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
