package definition

import (
	"bufio"
	"math"
	"strconv"
	"strings"
	"unicode"

	"calgen/internal/model"
)

const (
	maxFixedDay = 31
	maxNthIndex = 5
	// MaxEasterOffset bounds "<n> easter" in either direction, about 89
	// years.
	MaxEasterOffset = math.MaxInt16
)

// Parse reads a whole definition document using the English name table.
func Parse(text string) ([]Group, error) {
	return ParseWithNames(text, model.DefaultNames())
}

// ParseWithNames reads a whole definition document, matching month and
// weekday names against names. It stops at the first malformed line and
// returns a *SyntaxError; no partial result is returned.
func ParseWithNames(text string, names model.NameTable) ([]Group, error) {
	var groups []Group

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "["); ok {
			g, err := parseHeader(rest, lineNum)
			if err != nil {
				return nil, err
			}
			g.ID = GroupID(len(groups))
			groups = append(groups, g)
			continue
		}

		if len(groups) == 0 {
			return nil, syntaxErr(lineNum, ErrRuleOutsideGroup, "")
		}

		rule, err := parseRule(line, lineNum, names)
		if err != nil {
			return nil, err
		}
		cur := &groups[len(groups)-1]
		cur.Rules = append(cur.Rules, rule)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return groups, nil
}

// parseHeader handles the text of a group header after the opening '['.
func parseHeader(rest string, lineNum int) (Group, error) {
	body, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return Group{}, syntaxErr(lineNum, ErrUnterminatedHeader, "")
	}

	title, style, hasStyle := strings.Cut(body, ":")
	return Group{
		Title:    strings.TrimSpace(title),
		Style:    style,
		HasStyle: hasStyle,
	}, nil
}

func parseRule(line string, lineNum int, names model.NameTable) (Rule, error) {
	indexText, rest := nextField(line)
	category, rest := nextField(rest)
	title := strings.TrimSpace(rest)
	if indexText == "" || category == "" || title == "" {
		return Rule{}, syntaxErr(lineNum, ErrFieldCount, line)
	}

	index, err := strconv.Atoi(indexText)
	if err != nil {
		return Rule{}, syntaxErr(lineNum, ErrBadIndex, indexText)
	}

	rec, err := parseCategory(index, category, lineNum, names)
	if err != nil {
		return Rule{}, err
	}

	return Rule{Title: title, Recurrence: rec, Line: lineNum}, nil
}

func parseCategory(index int, category string, lineNum int, names model.NameTable) (Recurrence, error) {
	if strings.EqualFold(category, "easter") {
		if index < -MaxEasterOffset || index > MaxEasterOffset {
			return nil, syntaxErr(lineNum, ErrOutOfRange, "easter offset "+strconv.Itoa(index))
		}
		return EasterOffset{Offset: index}, nil
	}

	if wdText, monthText, ok := strings.Cut(category, "/"); ok {
		weekday, ok := names.LookupWeekday(wdText)
		if !ok {
			return nil, syntaxErr(lineNum, ErrUnknownWeekday, wdText)
		}
		month, ok := names.LookupMonth(monthText)
		if !ok {
			return nil, syntaxErr(lineNum, ErrUnknownMonth, monthText)
		}
		if err := checkNth(index, lineNum); err != nil {
			return nil, err
		}
		return NthWeekdayOfMonth{Index: index, Weekday: weekday, Month: month}, nil
	}

	if month, ok := names.LookupMonth(category); ok {
		if index < 1 || index > maxFixedDay {
			return nil, syntaxErr(lineNum, ErrOutOfRange, "day "+strconv.Itoa(index))
		}
		return Fixed{Day: index, Month: month}, nil
	}

	if weekday, ok := names.LookupWeekday(category); ok {
		if err := checkNth(index, lineNum); err != nil {
			return nil, err
		}
		return NthWeekdayEveryMonth{Index: index, Weekday: weekday}, nil
	}

	return nil, syntaxErr(lineNum, ErrUnknownCategory, category)
}

func checkNth(index, lineNum int) error {
	if index < 1 || index > maxNthIndex {
		return syntaxErr(lineNum, ErrOutOfRange, "occurrence "+strconv.Itoa(index))
	}
	return nil
}

// nextField splits off the first whitespace-delimited token of s.
func nextField(s string) (field, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}
