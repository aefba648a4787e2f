package definition

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgen/internal/model"
)

func TestParseAllRuleKinds(t *testing.T) {
	text := `
[Holidays]
25 December Christmas
1 easter Easter Monday
-2 EASTER Good Friday

[Meetings:background: #eef]
2 Wednesday Standup
3 friday/july   Summer   party
`
	groups, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	hol := groups[0]
	assert.Equal(t, GroupID(0), hol.ID)
	assert.Equal(t, "Holidays", hol.Title)
	assert.False(t, hol.HasStyle)
	require.Len(t, hol.Rules, 3)
	assert.Equal(t, Fixed{Day: 25, Month: time.December}, hol.Rules[0].Recurrence)
	assert.Equal(t, "Christmas", hol.Rules[0].Title)
	assert.Equal(t, 3, hol.Rules[0].Line)
	assert.Equal(t, EasterOffset{Offset: 1}, hol.Rules[1].Recurrence)
	assert.Equal(t, "Easter Monday", hol.Rules[1].Title)
	assert.Equal(t, EasterOffset{Offset: -2}, hol.Rules[2].Recurrence)

	meet := groups[1]
	assert.Equal(t, GroupID(1), meet.ID)
	assert.Equal(t, "Meetings", meet.Title)
	assert.True(t, meet.HasStyle)
	assert.Equal(t, "background: #eef", meet.Style)
	require.Len(t, meet.Rules, 2)
	assert.Equal(t, NthWeekdayEveryMonth{Index: 2, Weekday: model.Wednesday}, meet.Rules[0].Recurrence)
	assert.Equal(t, NthWeekdayOfMonth{Index: 3, Weekday: model.Friday, Month: time.July}, meet.Rules[1].Recurrence)
	assert.Equal(t, "Summer   party", meet.Rules[1].Title)
}

func TestHeaderSplitsOnFirstColon(t *testing.T) {
	groups, err := Parse("[Title:color:red;border:1px solid]\n")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Title", groups[0].Title)
	assert.Equal(t, "color:red;border:1px solid", groups[0].Style)
	assert.Empty(t, groups[0].Rules)
}

func TestHeaderEmptyStyleIsPresent(t *testing.T) {
	groups, err := Parse("[Plain:]\n")
	require.NoError(t, err)
	assert.True(t, groups[0].HasStyle)
	assert.Equal(t, "", groups[0].Style)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		line   int
		reason error
	}{
		{"rule outside group", "3 Friday/July Oops", 1, ErrRuleOutsideGroup},
		{"unterminated header", "[Holidays\n1 January New Year", 1, ErrUnterminatedHeader},
		{"missing title", "[G]\n\n25 December", 3, ErrFieldCount},
		{"bad index", "[G]\nfirst Monday Meeting", 2, ErrBadIndex},
		{"unknown category", "[G]\n1 Smarch Lousy weather", 2, ErrUnknownCategory},
		{"abbreviated month", "[G]\n1 Jan New Year", 2, ErrUnknownCategory},
		{"unknown weekday", "[G]\n1 Fooday/May Thing", 2, ErrUnknownWeekday},
		{"unknown month", "[G]\n1 Monday/Maytember Thing", 2, ErrUnknownMonth},
		{"day zero", "[G]\n0 May Nothing", 2, ErrOutOfRange},
		{"day 32", "[G]\n32 May Nothing", 2, ErrOutOfRange},
		{"sixth weekday", "[G]\n6 Monday Nothing", 2, ErrOutOfRange},
		{"zeroth weekday of month", "[G]\n0 Monday/May Nothing", 2, ErrOutOfRange},
		{"easter offset too late", "[G]\n32768 easter Far away", 2, ErrOutOfRange},
		{"easter offset too early", "[G]\n-32768 easter Far away", 2, ErrOutOfRange},
		{"huge easter offset", "[G]\n100000000000000 easter Far away", 2, ErrOutOfRange},
		{"comment line", "[G]\n# not a rule", 2, ErrBadIndex},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups, err := Parse(tc.text)
			require.Error(t, err)
			assert.Nil(t, groups)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.line, se.Line)
			assert.ErrorIs(t, err, tc.reason)
		})
	}
}

func TestEasterOffsetLimits(t *testing.T) {
	groups, err := Parse("[G]\n32767 easter Late\n-32767 easter Early\n")
	require.NoError(t, err)
	require.Len(t, groups[0].Rules, 2)
	assert.Equal(t, EasterOffset{Offset: MaxEasterOffset}, groups[0].Rules[0].Recurrence)
	assert.Equal(t, EasterOffset{Offset: -MaxEasterOffset}, groups[0].Rules[1].Recurrence)
}

func TestSyntaxErrorMessage(t *testing.T) {
	_, err := Parse("3 Friday/July Oops")
	require.Error(t, err)
	assert.Equal(t, "line 1: rule outside group", err.Error())

	_, err = Parse("[G]\n1 Smarch X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2:")
	assert.Contains(t, err.Error(), "Smarch")
}

func TestParseWithLocalizedNames(t *testing.T) {
	names := model.DefaultNames()
	names.Months[11] = "Dezember"
	names.Weekdays[0] = "Montag"

	groups, err := ParseWithNames("[Feiertage]\n25 dezember Weihnachten\n1 Montag Jour fixe\n", names)
	require.NoError(t, err)
	require.Len(t, groups[0].Rules, 2)
	assert.Equal(t, Fixed{Day: 25, Month: time.December}, groups[0].Rules[0].Recurrence)
	assert.Equal(t, NthWeekdayEveryMonth{Index: 1, Weekday: model.Monday}, groups[0].Rules[1].Recurrence)

	_, err = ParseWithNames("[G]\n25 December Christmas\n", names)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestFormatRoundTrip(t *testing.T) {
	text := "[Holidays:color:red]\n25 December Christmas\n-2 easter Good Friday\n\n[Meetings]\n2 Wednesday Standup\n3 Friday/July Summer party\n"
	groups, err := Parse(text)
	require.NoError(t, err)

	out := Format(groups, model.DefaultNames())
	assert.Equal(t, text, out)

	again, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, again, len(groups))
	for i := range groups {
		assert.Equal(t, groups[i].Title, again[i].Title)
		assert.Equal(t, groups[i].Style, again[i].Style)
		require.Len(t, again[i].Rules, len(groups[i].Rules))
		for j := range groups[i].Rules {
			assert.Equal(t, groups[i].Rules[j].Recurrence, again[i].Rules[j].Recurrence)
			assert.Equal(t, groups[i].Rules[j].Title, again[i].Rules[j].Title)
		}
	}
}

func TestCSSClass(t *testing.T) {
	assert.Equal(t, "eventgroup0", GroupID(0).CSSClass())
	assert.Equal(t, "eventgroup12", GroupID(12).CSSClass())
}
