package definition

import (
	"fmt"
	"strings"

	"calgen/internal/model"
)

// Format writes groups back in the definition language. Parsing the output
// with the same name table yields equivalent groups.
func Format(groups []Group, names model.NameTable) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[")
		b.WriteString(g.Title)
		if g.HasStyle {
			b.WriteString(":")
			b.WriteString(g.Style)
		}
		b.WriteString("]\n")
		for _, r := range g.Rules {
			b.WriteString(FormatRecurrence(r.Recurrence, names))
			b.WriteString(" ")
			b.WriteString(r.Title)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatRecurrence renders the "<index> <category>" part of a rule line.
func FormatRecurrence(rec Recurrence, names model.NameTable) string {
	switch r := rec.(type) {
	case Fixed:
		return fmt.Sprintf("%d %s", r.Day, names.Month(r.Month))
	case NthWeekdayEveryMonth:
		return fmt.Sprintf("%d %s", r.Index, names.Weekday(r.Weekday))
	case NthWeekdayOfMonth:
		return fmt.Sprintf("%d %s/%s", r.Index, names.Weekday(r.Weekday), names.Month(r.Month))
	case EasterOffset:
		return fmt.Sprintf("%d easter", r.Offset)
	default:
		return rec.String()
	}
}
